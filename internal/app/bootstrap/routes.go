// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	chapterrequestsfeature "github.com/dalemusser/meetuphub/internal/app/features/chapterrequests"
	chaptersfeature "github.com/dalemusser/meetuphub/internal/app/features/chapters"
	commentsfeature "github.com/dalemusser/meetuphub/internal/app/features/comments"
	errorsfeature "github.com/dalemusser/meetuphub/internal/app/features/errors"
	eventsfeature "github.com/dalemusser/meetuphub/internal/app/features/events"
	healthfeature "github.com/dalemusser/meetuphub/internal/app/features/health"
	loginfeature "github.com/dalemusser/meetuphub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/meetuphub/internal/app/features/logout"
	rsvpsfeature "github.com/dalemusser/meetuphub/internal/app/features/rsvps"
	supportrequestsfeature "github.com/dalemusser/meetuphub/internal/app/features/supportrequests"
	"github.com/dalemusser/meetuphub/internal/app/store/audit"
	userstore "github.com/dalemusser/meetuphub/internal/app/store/users"
	"github.com/dalemusser/meetuphub/internal/app/system/auditlog"
	"github.com/dalemusser/meetuphub/internal/app/system/auth"
	"github.com/dalemusser/meetuphub/internal/app/system/notify"
	"github.com/dalemusser/meetuphub/internal/app/workflow"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// MeetupHub applies session middleware, builds the workflow service shared
// by every feature, and mounts the chapter, request, event, RSVP, support
// and comment routers under /meetup.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fetch fresh user data on each request so staff changes and disabled
	// accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	auditLog := auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:    appCfg.AuditLogAuth,
		Chapter: appCfg.AuditLogChapter,
	})

	var pub notify.Publisher = notify.Nop{}
	if deps.NATS != nil {
		pub = notify.NewNATSPublisher(deps.NATS, appCfg.NATSSubjectPrefix, logger)
	}

	svc := workflow.New(deps.MongoDatabase, auditLog, pub, logger)
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if len(appCfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   appCfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
			ExposedHeaders:   []string{"Location"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.NATS, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, auditLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler, sessionMgr))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	chaptersHandler := chaptersfeature.NewHandler(svc, errLog, logger)
	requestsHandler := chapterrequestsfeature.NewHandler(svc, errLog, logger)
	eventsHandler := eventsfeature.NewHandler(svc, errLog, logger)
	rsvpsHandler := rsvpsfeature.NewHandler(svc, errLog, logger)
	supportHandler := supportrequestsfeature.NewHandler(svc, errLog, logger)
	commentsHandler := commentsfeature.NewHandler(svc, errLog, logger)

	r.Route("/meetup", func(m chi.Router) {
		m.Mount("/requests", chapterrequestsfeature.Routes(requestsHandler, sessionMgr))

		m.Route("/{slug}/events", func(ev chi.Router) {
			ev.Route("/{event}/support_requests", func(sr chi.Router) {
				sr.Mount("/{id}/comments", commentsfeature.SupportRoutes(commentsHandler, sessionMgr))
				sr.Mount("/", supportrequestsfeature.Routes(supportHandler, sessionMgr))
			})
			ev.Mount("/{event}/rsvp", rsvpsfeature.Routes(rsvpsHandler, sessionMgr))
			ev.Mount("/{event}/comments", commentsfeature.EventRoutes(commentsHandler, sessionMgr))
			ev.Mount("/", eventsfeature.Routes(eventsHandler, sessionMgr))
		})

		m.Mount("/", chaptersfeature.Routes(chaptersHandler, sessionMgr))
	})

	return r, nil
}
