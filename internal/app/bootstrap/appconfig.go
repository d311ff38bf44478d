// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - Request body size limits
//
// AppConfig carries what is specific to MeetupHub: the MongoDB backend,
// session cookies, CORS origins, the optional NATS event stream, audit
// destinations and the bootstrap staff account.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: meetuphub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Browser origins allowed to call the API with credentials.
	CORSAllowedOrigins []string

	// Domain-event publishing. Blank NATSURL disables it.
	NATSURL           string
	NATSSubjectPrefix string

	// Audit logging: all | db | log | off
	AuditLogAuth    string
	AuditLogChapter string

	// StaffUsername is promoted to staff on every startup.
	StaffUsername string
}
