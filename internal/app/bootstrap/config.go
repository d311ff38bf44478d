// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/meetuphub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for MeetupHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: MEETUPHUB_MONGO_URI, MEETUPHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "meetup_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "meetuphub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 720h)"},

	// CORS
	{Name: "cors_allowed_origins", Default: "", Desc: "Comma-separated origins allowed to call the API (blank disables CORS)"},

	// Domain events
	{Name: "nats_url", Default: "", Desc: "NATS server URL for domain events (blank disables publishing)"},
	{Name: "nats_subject_prefix", Default: "meetuphub", Desc: "Subject prefix for published domain events"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_chapter", Default: "all", Desc: "Chapter event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Staff bootstrap
	{Name: "staff_username", Default: "", Desc: "Username promoted to staff on startup"},
}

// minProdSessionKey is the shortest session key accepted in prod.
const minProdSessionKey = 32

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, MEETUPHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
//
// Handler timeouts are read from MEETUPHUB_TIMEOUT_* here as well so they
// are in place before any backend is dialed.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MEETUPHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),

		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),

		NATSURL:           appValues.String("nats_url"),
		NATSSubjectPrefix: appValues.String("nats_subject_prefix"),

		AuditLogAuth:    appValues.String("audit_log_auth"),
		AuditLogChapter: appValues.String("audit_log_chapter"),

		StaffUsername: appValues.String("staff_username"),
	}

	if n := timeouts.ConfigureFromEnv(); n > 0 {
		cur := timeouts.Current()
		logger.Info("handler timeouts configured from environment",
			zap.Duration("ping", cur.Ping),
			zap.Duration("short", cur.Short),
			zap.Duration("medium", cur.Medium),
			zap.Duration("long", cur.Long))
	}

	return coreCfg, appCfg, nil
}

// splitList parses a comma-separated config value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// MeetupHub validates the MongoDB URI format to catch configuration errors
// early, before attempting to connect, and refuses short session keys in
// production.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must be set")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.SessionKey) < minProdSessionKey {
		return fmt.Errorf("session_key must be at least %d bytes in prod", minProdSessionKey)
	}
	for _, m := range []string{appCfg.AuditLogAuth, appCfg.AuditLogChapter} {
		switch m {
		case "", "all", "db", "log", "off":
		default:
			return fmt.Errorf("invalid audit log mode %q (want all, db, log or off)", m)
		}
	}
	return nil
}
