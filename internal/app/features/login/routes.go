// internal/app/features/login/routes.go
package login

import (
	"github.com/dalemusser/meetuphub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleLoginPost)
	r.With(sm.RequireSignedIn).Get("/history", h.ServeHistory)
	return r
}
