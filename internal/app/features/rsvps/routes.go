// internal/app/features/rsvps/routes.go
package rsvps

import (
	"github.com/dalemusser/meetuphub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /meetup/{slug}/events/{event}/rsvp.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.HandleSubmit)
	r.Get("/going", h.ServeGoing)

	return r
}
