// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/voyager/internal/app/system/ratelimit"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Redis is nil when the notification-count cache is disabled.
	Redis *redis.Client

	// Limiter guards join-request and chat-message writes. Its janitor
	// goroutine runs until Shutdown closes it. A nil Limiter allows
	// everything.
	Limiter *ratelimit.Limiter
}
