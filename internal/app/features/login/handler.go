// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The username people type to sign in

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/meetuphub/internal/app/features/errors"
	loginstore "github.com/dalemusser/meetuphub/internal/app/store/logins"
	userstore "github.com/dalemusser/meetuphub/internal/app/store/users"
	"github.com/dalemusser/meetuphub/internal/app/system/auditlog"
	"github.com/dalemusser/meetuphub/internal/app/system/auth"
	"github.com/dalemusser/meetuphub/internal/app/system/normalize"
	"github.com/dalemusser/meetuphub/internal/app/system/ratelimit"
	"github.com/dalemusser/meetuphub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// historyLimit is how many past sign-ins ServeHistory returns.
const historyLimit = 20

type Handler struct {
	Users      *userstore.Store
	Logins     *loginstore.Store
	Limiter    *ratelimit.LoginLimiter
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		Logins:     loginstore.New(db),
		Limiter:    ratelimit.NewLoginLimiter(),
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
	}
}

// failed answers every credential problem the same way so responses do not
// reveal which usernames exist.
func failed(w http.ResponseWriter) {
	uierrors.WriteJSON(w, http.StatusUnauthorized, uierrors.Body{
		Status:  uierrors.StatusUnauthorized,
		Message: "Invalid username or password.",
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.")
		return
	}

	loginID := normalize.Username(r.FormValue("username"))
	password := r.FormValue("password")
	if loginID == "" || strings.TrimSpace(password) == "" {
		uierrors.WriteJSON(w, http.StatusBadRequest, uierrors.Body{
			Status:  uierrors.StatusInvalid,
			Message: "Please enter your username and password.",
		})
		return
	}

	if ok, reason := h.Limiter.Check(r, loginID); !ok {
		h.Log.Warn("sign-in throttled",
			zap.String("login_id", loginID),
			zap.String("ip", ratelimit.ClientIP(r)))
		uierrors.WriteJSON(w, http.StatusTooManyRequests, uierrors.Body{
			Status:  uierrors.StatusRateLimited,
			Message: reason,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, loginID)
	if errors.Is(err, userstore.ErrNotFound) {
		h.AuditLog.LoginFailedUserNotFound(ctx, r, loginID)
		failed(w)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "lookup user failed", err, "A database error occurred.")
		return
	}

	/*── check status: disabled users cannot log in ────────────────────────*/

	if normalize.Status(u.Status) == "disabled" {
		h.AuditLog.LoginFailedUserDisabled(ctx, r, u.ID, loginID)
		uierrors.WriteJSON(w, http.StatusForbidden, uierrors.Body{
			Status:  uierrors.StatusForbidden,
			Message: "Your account is currently disabled. Please contact an administrator.",
		})
		return
	}

	if !userstore.CheckPassword(u, password) {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, loginID)
		failed(w)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:      u.ID.Hex(),
		Name:    u.FullName,
		LoginID: u.Username,
		IsStaff: u.IsStaff,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Could not sign you in.")
		return
	}

	h.Limiter.Succeeded(loginID)
	h.AuditLog.LoginSuccess(ctx, r, u.ID, loginID)
	if _, err := h.Logins.CreateFrom(ctx, r, u); err != nil {
		// The user is signed in; a lost history row is not worth failing for.
		h.Log.Warn("record login failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
	}
	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()))

	dest := urlutil.SafeReturn(r.FormValue("return"), "", "/meetup")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login/history                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeHistory lists the caller's recent sign-ins.
func (h *Handler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.Unauthorized(w)
		return
	}
	userID, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		uierrors.Unauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	recs, err := h.Logins.ListRecent(ctx, userID, historyLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list login history failed", err, "A database error occurred.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, recs)
}
