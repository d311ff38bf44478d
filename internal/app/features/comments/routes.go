// internal/app/features/comments/routes.go
package comments

import (
	"github.com/dalemusser/meetuphub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// EventRoutes is mounted at /meetup/{slug}/events/{event}/comments.
func EventRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.HandleAddEventComment)
	r.Post("/{cid}/edit", h.HandleEditEventComment)
	r.Post("/{cid}/delete", h.HandleDeleteEventComment)

	return r
}

// SupportRoutes is mounted at
// /meetup/{slug}/events/{event}/support_requests/{id}/comments.
func SupportRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.HandleAddSupportComment)
	r.Post("/{cid}/edit", h.HandleEditSupportComment)
	r.Post("/{cid}/delete", h.HandleDeleteSupportComment)

	return r
}
