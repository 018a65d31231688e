// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/voyager/internal/app/system/auditlog"
	"github.com/dalemusser/voyager/internal/app/system/notifycache"
	"github.com/dalemusser/voyager/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Voyager.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, redis_addr, etc.
//   - Environment variables: VOYAGER_MONGO_URI, VOYAGER_REDIS_ADDR, etc.
//   - Command-line flags: --mongo_uri, --redis_addr, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "voyagerPlus", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Notification-count cache
	{Name: "redis_addr", Default: "", Desc: "Redis address or redis:// URL for the notification-count cache (blank disables it)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "notif_count_ttl", Default: "30s", Desc: "How long a cached notification count is trusted"},

	// Audit logging settings
	{Name: "audit_log_trips", Default: "all", Desc: "Join-request event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_chats", Default: "", Desc: "Chat event logging: 'all', 'db', 'log', or 'off' (blank follows audit_log_trips)"},

	// Rate limiting
	{Name: "rate_limit_requests", Default: 30, Desc: "Join requests or chat posts allowed per user per window (0 disables)"},
	{Name: "rate_limit_window", Default: "1m", Desc: "Rate limit window (e.g., 1m, 30s)"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for scans and feed projections"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for operations spanning collections"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, VOYAGER_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "VOYAGER", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),
		NotifCountTTL: appValues.Duration("notif_count_ttl", notifycache.DefaultTTL),

		AuditLogTrips: appValues.String("audit_log_trips"),
		AuditLogChats: appValues.String("audit_log_chats"),

		RateLimitRequests: appValues.Int("rate_limit_requests"),
		RateLimitWindow:   appValues.Duration("rate_limit_window", time.Minute),

		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultLong),
	}

	if appCfg.AuditLogChats == "" {
		appCfg.AuditLogChats = appCfg.AuditLogTrips
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is checked here to catch configuration errors before
// attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)", appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}

	if !auditlog.ValidSetting(appCfg.AuditLogTrips) {
		return fmt.Errorf("audit_log_trips must be one of all, db, log, off (got %q)", appCfg.AuditLogTrips)
	}
	if !auditlog.ValidSetting(appCfg.AuditLogChats) {
		return fmt.Errorf("audit_log_chats must be one of all, db, log, off (got %q)", appCfg.AuditLogChats)
	}

	if appCfg.RateLimitRequests < 0 {
		return fmt.Errorf("rate_limit_requests must not be negative")
	}
	if appCfg.RateLimitRequests > 0 && appCfg.RateLimitWindow <= 0 {
		return fmt.Errorf("rate_limit_window must be positive when rate limiting is enabled")
	}
	if appCfg.NotifCountTTL < 0 {
		return fmt.Errorf("notif_count_ttl must not be negative")
	}

	return nil
}
