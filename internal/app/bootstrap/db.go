// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/voyager/internal/app/system/indexes"
	"github.com/dalemusser/voyager/internal/app/system/ratelimit"
	"github.com/dalemusser/voyager/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and, when configured, Redis, and creates the
// per-user rate limiter. Shutdown releases all three.
//
// Both stores are pinged so a bad address fails startup instead of the first
// request. A Redis failure is fatal too: if the cache is configured it is
// expected to be there.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	clientOpts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize).
		SetAppName("voyager")

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		logger.Error("mongo connect failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("mongo ping failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize),
		zap.Uint64("min_pool", appCfg.MongoMinPoolSize))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}

	if appCfg.RedisAddr == "" {
		logger.Info("notification-count cache disabled (no redis_addr)")
	} else {
		rdb, err := connectRedis(ctx, appCfg, logger)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return DBDeps{}, err
		}
		deps.Redis = rdb
	}

	deps.Limiter = ratelimit.New(appCfg.RateLimitRequests, appCfg.RateLimitWindow)
	return deps, nil
}

func connectRedis(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (*redis.Client, error) {
	opts, err := redisOptions(appCfg)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		logger.Error("redis ping failed", zap.String("addr", opts.Addr), zap.Error(err))
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("connected to Redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return rdb, nil
}

// redisOptions accepts either a redis:// URL or a bare host:port.
func redisOptions(appCfg AppConfig) (*redis.Options, error) {
	if strings.HasPrefix(appCfg.RedisAddr, "redis://") || strings.HasPrefix(appCfg.RedisAddr, "rediss://") {
		opts, err := redis.ParseURL(appCfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		if opts.Password == "" {
			opts.Password = appCfg.RedisPassword
		}
		if opts.DB == 0 {
			opts.DB = appCfg.RedisDB
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     appCfg.RedisAddr,
		Password: appCfg.RedisPassword,
		DB:       appCfg.RedisDB,
	}, nil
}

// EnsureSchema applies collection validators and creates indexes. Both are
// idempotent; the partial unique index on pending join requests is what
// makes duplicate pending requests impossible.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure validators failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	logger.Info("schema ensured", zap.String("database", deps.MongoDatabase.Name()))
	return nil
}
