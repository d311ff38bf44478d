// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/meetuphub/internal/app/system/auditlog"
	"github.com/dalemusser/meetuphub/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
	}
}

// ServeLogout handles POST /logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.Logout(r.Context(), r, u.ID)
	}

	// SignOut tolerates undecodable cookies, so an error here is a write
	// failure. Log and redirect anyway.
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	http.Redirect(w, r, "/meetup", http.StatusSeeOther)
}
