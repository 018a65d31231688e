// internal/app/system/notifycache/notifycache.go
package notifycache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	countPrefix = "voyager:notif:count:"
	genPrefix   = "voyager:notif:gen:"
)

// DefaultTTL bounds how stale a cached count can be if an invalidation is lost.
const DefaultTTL = 30 * time.Second

type cmdable interface {
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Incr(context.Context, string) *redis.IntCmd
}

// Cache stores per-user notification counts in Redis. A nil *Cache is a
// valid, disabled cache: every Get misses and writes are dropped.
//
// Counts are keyed by a per-user generation. Invalidate bumps the
// generation, so a count computed before a mutation and written after it
// lands under a generation no reader will ask for again.
type Cache struct {
	store cmdable
	ttl   time.Duration
	log   *zap.Logger
}

// New wraps client. It returns nil when client is nil so callers can pass
// the result around unconditionally.
func New(client *redis.Client, ttl time.Duration, log *zap.Logger) *Cache {
	if client == nil {
		return nil
	}
	return newCache(client, ttl, log)
}

func newCache(store cmdable, ttl time.Duration, log *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{store: store, ttl: ttl, log: log}
}

// Key returns the Redis key holding username's count at generation gen.
func Key(username string, gen int64) string {
	return countPrefix + username + ":" + strconv.FormatInt(gen, 10)
}

// GenKey returns the Redis key holding username's generation counter.
// It has no TTL.
func GenKey(username string) string {
	return genPrefix + username
}

// Get returns the cached count, the generation it was looked up under and
// whether it was present. Read the generation before computing a fresh
// count and hand it to Set. A negative generation means the generation
// could not be read and nothing should be stored. Redis errors are logged
// and reported as a miss.
func (c *Cache) Get(ctx context.Context, username string) (n, gen int64, ok bool) {
	if c == nil {
		return 0, -1, false
	}
	gen, err := c.generation(ctx, username)
	if err != nil {
		c.log.Warn("notification count generation read failed", zap.String("username", username), zap.Error(err))
		return 0, -1, false
	}
	v, err := c.store.Get(ctx, Key(username, gen)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("notification count cache read failed", zap.String("username", username), zap.Error(err))
		}
		return 0, gen, false
	}
	n, err = strconv.ParseInt(v, 10, 64)
	if err != nil {
		c.log.Warn("notification count cache holds non-integer", zap.String("username", username), zap.String("value", v))
		return 0, gen, false
	}
	return n, gen, true
}

func (c *Cache) generation(ctx context.Context, username string) (int64, error) {
	v, err := c.store.Get(ctx, GenKey(username)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

// Set stores username's count under gen with the cache TTL. gen must come
// from a Get made before the count was computed.
func (c *Cache) Set(ctx context.Context, username string, gen, n int64) {
	if c == nil || gen < 0 {
		return
	}
	if err := c.store.Set(ctx, Key(username, gen), n, c.ttl).Err(); err != nil {
		c.log.Warn("notification count cache write failed", zap.String("username", username), zap.Error(err))
	}
}

// Invalidate bumps the generation for usernames, orphaning any count cached
// or about to be cached under the previous one.
func (c *Cache) Invalidate(ctx context.Context, usernames ...string) {
	if c == nil {
		return
	}
	for _, u := range usernames {
		if u == "" {
			continue
		}
		if err := c.store.Incr(ctx, GenKey(u)).Err(); err != nil {
			c.log.Warn("notification count cache invalidation failed", zap.String("username", u), zap.Error(err))
		}
	}
}
