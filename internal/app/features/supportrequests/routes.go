// internal/app/features/supportrequests/routes.go
package supportrequests

import (
	"github.com/dalemusser/meetuphub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /meetup/{slug}/events/{event}/support_requests.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Public: approved list and single request
	r.Get("/", h.ServeApproved)
	r.Get("/{id}", h.ServeView)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// VOLUNTEER
		pr.Post("/", h.HandleCreate)
		pr.Post("/{id}/edit", h.HandleEdit)
		pr.Post("/{id}/delete", h.HandleDelete)

		// ORGANIZER REVIEW
		pr.Get("/unapproved", h.ServeUnapproved)
		pr.Post("/{id}/approve", h.HandleApprove)
		pr.Post("/{id}/reject", h.HandleReject)
	})

	return r
}
