// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP ports,
// TLS, logging level and format, CORS and request body limits.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Notification-count cache. Blank RedisAddr disables it.
	RedisAddr     string // host:port or redis:// URL
	RedisPassword string
	RedisDB       int
	NotifCountTTL time.Duration

	// Audit logging: "all", "db", "log" or "off"
	AuditLogTrips string
	AuditLogChats string

	// Per-user limit on join requests and chat posts. 0 disables limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Store operation timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
