// internal/app/features/events/routes.go
package events

import (
	"github.com/dalemusser/meetuphub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves the event catalog. Mount it at /meetup/{slug}/events; the
// chapter slug is read from the parent route.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/upcoming", h.ServeUpcoming)
	r.Get("/past", h.ServePast)
	r.Get("/{event}", h.ServeView)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Post("/{event}/edit", h.HandleEdit)
		pr.Post("/{event}/delete", h.HandleDelete)
	})

	return r
}
