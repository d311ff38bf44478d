// internal/app/features/chapterrequests/routes.go
package chapterrequests

import (
	"github.com/dalemusser/meetuphub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves chapter requests. Typically mounted at /meetup/requests.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// SUBMIT (any signed-in user)
	r.With(sm.RequireSignedIn).Post("/", h.HandleSubmit)

	// REVIEW (staff)
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireStaff)

		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeView)
		pr.Post("/{id}/edit", h.HandleEdit)
		pr.Post("/{id}/approve", h.HandleApprove)
		pr.Post("/{id}/reject", h.HandleReject)
	})

	return r
}
