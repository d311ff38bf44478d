// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/url"

	"github.com/dalemusser/meetuphub/internal/app/system/status"
	"github.com/dalemusser/meetuphub/internal/app/workflow"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Fixed status strings for failures that carry no flag.
const (
	StatusForbidden    = "forbidden"
	StatusNotFound     = "not_found"
	StatusUnauthorized = "unauthorized"
	StatusInvalid      = "invalid"
	StatusRateLimited  = "rate_limited"
	StatusError        = "error"
)

// Body is the JSON shape of every error response.
type Body struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Redirect answers a successful mutation with 303 See Other, carrying flag
// in the status query parameter.
func Redirect(w http.ResponseWriter, r *http.Request, target string, flag status.Flag) {
	if flag != "" {
		u, err := url.Parse(target)
		if err == nil {
			q := u.Query()
			q.Set("status", string(flag))
			u.RawQuery = q.Encode()
			target = u.String()
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// ErrorLogger writes error responses and logs the ones that are our fault.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	return []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	}
}

// LogServerError logs err and answers 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Error(msg, e.fields(r, err)...)
	WriteJSON(w, http.StatusInternalServerError, Body{Status: StatusError, Message: userMsg})
}

// LogBadRequest logs at debug level and answers 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Debug(msg, e.fields(r, err)...)
	WriteJSON(w, http.StatusBadRequest, Body{Status: StatusInvalid, Message: userMsg})
}

// Unauthorized answers 401.
func Unauthorized(w http.ResponseWriter) {
	WriteJSON(w, http.StatusUnauthorized, Body{Status: StatusUnauthorized, Message: "Please sign in to continue."})
}

// NotFound answers 404, used when a route parameter cannot name anything.
func NotFound(w http.ResponseWriter) {
	WriteJSON(w, http.StatusNotFound, Body{Status: StatusNotFound})
}

// Respond maps a workflow error onto an HTTP response:
//
//	ErrForbidden        403 {"status":"forbidden"}
//	ErrNotFound         404 {"status":"not_found"}
//	*ConflictError      409 {"status":"<flag>"}
//	*InvalidError       400 {"status":"invalid"}
//	anything else       500, logged
func (e *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var ce *workflow.ConflictError
	var ie *workflow.InvalidError
	switch {
	case stderrors.Is(err, workflow.ErrForbidden):
		WriteJSON(w, http.StatusForbidden, Body{Status: StatusForbidden})
	case stderrors.Is(err, workflow.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, Body{Status: StatusNotFound})
	case stderrors.As(err, &ce):
		WriteJSON(w, http.StatusConflict, Body{Status: string(ce.Status), Message: ce.Error()})
	case stderrors.As(err, &ie):
		WriteJSON(w, http.StatusBadRequest, Body{Status: StatusInvalid, Message: ie.Message})
	default:
		e.LogServerError(w, r, msg, err, "A database error occurred.")
	}
}

// Handler serves the fixed error pages the auth middleware redirects to.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden handles GET /forbidden.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusForbidden, Body{Status: StatusForbidden, Message: "You don't have permission to view this page."})
}

// Unauthorized handles GET /unauthorized.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	Unauthorized(w)
}
