// internal/app/features/chapters/routes.go
package chapters

import (
	"github.com/dalemusser/meetuphub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves the registry. Mount it at /meetup after the more specific
// /requests and /{slug}/events subtrees.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Public pages
	r.Get("/", h.ServeList)
	r.Get("/locations", h.ServeLocations)
	r.Get("/{slug}/about", h.ServeAbout)
	r.Get("/{slug}/members", h.ServeMembers)
	r.Get("/{slug}/sponsors", h.ServeSponsors)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// CREATE / EDIT / DELETE
		pr.Post("/", h.HandleCreate)
		pr.Post("/{slug}/edit", h.HandleEdit)
		pr.Post("/{slug}/delete", h.HandleDelete)
		pr.Get("/{slug}/history", h.ServeHistory)

		// ROSTER
		pr.Post("/{slug}/members", h.HandleAddMember)
		pr.Post("/{slug}/members/{username}/remove", h.HandleRemoveMember)
		pr.Post("/{slug}/organizers/{username}", h.HandlePromote)
		pr.Post("/{slug}/organizers/{username}/remove", h.HandleDemote)

		// JOIN REQUESTS
		pr.Post("/{slug}/join", h.HandleJoin)
		pr.Get("/{slug}/join_requests", h.ServeJoinRequests)
		pr.Post("/{slug}/join_requests/{username}/approve", h.HandleApproveJoin)
		pr.Post("/{slug}/join_requests/{username}/reject", h.HandleRejectJoin)
	})

	return r
}
