// internal/app/features/chapters/handler.go
package chapters

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/meetuphub/internal/app/features/errors"
	"github.com/dalemusser/meetuphub/internal/app/features/shared"
	"github.com/dalemusser/meetuphub/internal/app/system/formutil"
	"github.com/dalemusser/meetuphub/internal/app/system/inputval"
	"github.com/dalemusser/meetuphub/internal/app/system/status"
	"github.com/dalemusser/meetuphub/internal/app/workflow"
	"go.uber.org/zap"
)

// Handler serves the chapter registry: the directory, chapter pages,
// membership and join requests.
type Handler struct {
	Svc    *workflow.Service
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(svc *workflow.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:    svc,
		ErrLog: errLog,
		Log:    logger,
	}
}

type createForm struct {
	Name        string `validate:"required,max=100" label:"Name"`
	Slug        string `validate:"required,max=60,slug,chapterslug" label:"Slug"`
	LocationID  string `validate:"required,objectid" label:"Location"`
	Description string `validate:"max=20000" label:"Description"`
	Sponsors    string `validate:"max=20000" label:"Sponsors"`
}

type editForm struct {
	Name        string `validate:"required,max=100" label:"Name"`
	LocationID  string `validate:"required,objectid" label:"Location"`
	Description string `validate:"max=20000" label:"Description"`
	Sponsors    string `validate:"max=20000" label:"Sponsors"`
}

type sponsorsView struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Sponsors string `json:"sponsors"`
}

func chapterURL(slug, page string) string {
	return "/meetup/" + slug + "/" + page
}

/*─────────────────────────────────────────────────────────────────────────────*
| Directory                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeList handles GET /meetup.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := shared.List(r)
	defer cancel()

	list, err := h.Svc.ListChapters(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "list chapters failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /meetup.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	if !shared.ParseForm(w, r, h.ErrLog) {
		return
	}
	form := createForm{
		Name:        formutil.Trim(r, "name"),
		Slug:        formutil.Trim(r, "slug"),
		LocationID:  formutil.Trim(r, "location_id"),
		Description: r.FormValue("description"),
		Sponsors:    r.FormValue("sponsors"),
	}
	if res := inputval.Validate(form); res.HasErrors() {
		h.ErrLog.LogBadRequest(w, r, "invalid chapter form", res.Err(), res.First())
		return
	}

	ch, err := h.Svc.CreateChapter(ctx, actor, workflow.ChapterInput{
		Name:        form.Name,
		Slug:        form.Slug,
		LocationID:  formutil.ObjectID(form.LocationID),
		Description: form.Description,
		Sponsors:    form.Sponsors,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, "create chapter failed", err)
		return
	}
	uierrors.Redirect(w, r, chapterURL(ch.Slug, "about"), status.OK)
}

// ServeLocations handles GET /meetup/locations.
func (h *Handler) ServeLocations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := shared.List(r)
	defer cancel()

	locs, err := h.Svc.ListLocations(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "list locations failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, locs)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Chapter pages                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeAbout handles GET /meetup/{slug}/about.
func (h *Handler) ServeAbout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := shared.Read(r)
	defer cancel()

	about, err := h.Svc.About(ctx, formutil.Param(r, "slug"))
	if err != nil {
		h.ErrLog.Respond(w, r, "load chapter failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, about)
}

// ServeMembers handles GET /meetup/{slug}/members.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := shared.List(r)
	defer cancel()

	roster, err := h.Svc.Members(ctx, formutil.Param(r, "slug"))
	if err != nil {
		h.ErrLog.Respond(w, r, "load members failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, roster)
}

// ServeSponsors handles GET /meetup/{slug}/sponsors.
func (h *Handler) ServeSponsors(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := shared.Read(r)
	defer cancel()

	about, err := h.Svc.About(ctx, formutil.Param(r, "slug"))
	if err != nil {
		h.ErrLog.Respond(w, r, "load sponsors failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, sponsorsView{
		Name:     about.Chapter.Name,
		Slug:     about.Chapter.Slug,
		Sponsors: about.Chapter.Sponsors,
	})
}

// HandleEdit handles POST /meetup/{slug}/edit.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	if !shared.ParseForm(w, r, h.ErrLog) {
		return
	}
	form := editForm{
		Name:        formutil.Trim(r, "name"),
		LocationID:  formutil.Trim(r, "location_id"),
		Description: r.FormValue("description"),
		Sponsors:    r.FormValue("sponsors"),
	}
	if res := inputval.Validate(form); res.HasErrors() {
		h.ErrLog.LogBadRequest(w, r, "invalid chapter form", res.Err(), res.First())
		return
	}

	ch, err := h.Svc.EditChapter(ctx, actor, formutil.Param(r, "slug"), workflow.ChapterInput{
		Name:        form.Name,
		LocationID:  formutil.ObjectID(form.LocationID),
		Description: form.Description,
		Sponsors:    form.Sponsors,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, "edit chapter failed", err)
		return
	}
	uierrors.Redirect(w, r, chapterURL(ch.Slug, "about"), status.OK)
}

// HandleDelete handles POST /meetup/{slug}/delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.BeginLong(w, r, h.Log, "delete chapter")
	if !ok {
		return
	}
	defer cancel()

	if err := h.Svc.DeleteChapter(ctx, actor, formutil.Param(r, "slug")); err != nil {
		h.ErrLog.Respond(w, r, "delete chapter failed", err)
		return
	}
	uierrors.Redirect(w, r, "/meetup", status.OK)
}

// ServeHistory handles GET /meetup/{slug}/history.
func (h *Handler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	events, err := h.Svc.ChapterHistory(ctx, actor, formutil.Param(r, "slug"))
	if err != nil {
		h.ErrLog.Respond(w, r, "load chapter history failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, events)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Membership                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleAddMember handles POST /meetup/{slug}/members.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	if !shared.ParseForm(w, r, h.ErrLog) {
		return
	}
	username := formutil.Trim(r, "username")
	if username == "" {
		h.ErrLog.LogBadRequest(w, r, "missing username", nil, "Username is required.")
		return
	}

	slug := formutil.Param(r, "slug")
	flag, err := h.Svc.AddMember(ctx, actor, slug, username)
	if err != nil {
		h.ErrLog.Respond(w, r, "add member failed", err)
		return
	}
	uierrors.Redirect(w, r, chapterURL(slug, "members"), flag)
}

// HandleRemoveMember handles POST /meetup/{slug}/members/{username}/remove.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	h.rosterChange(w, r, "remove member failed", h.Svc.RemoveMember)
}

// HandlePromote handles POST /meetup/{slug}/organizers/{username}.
func (h *Handler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	h.rosterChange(w, r, "promote organizer failed", h.Svc.PromoteOrganizer)
}

// HandleDemote handles POST /meetup/{slug}/organizers/{username}/remove.
func (h *Handler) HandleDemote(w http.ResponseWriter, r *http.Request) {
	h.rosterChange(w, r, "remove organizer failed", h.Svc.DemoteOrganizer)
}

type rosterOp func(ctx context.Context, actor workflow.Actor, slug, username string) error

func (h *Handler) rosterChange(w http.ResponseWriter, r *http.Request, msg string, op rosterOp) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	slug := formutil.Param(r, "slug")
	if err := op(ctx, actor, slug, formutil.Param(r, "username")); err != nil {
		h.ErrLog.Respond(w, r, msg, err)
		return
	}
	uierrors.Redirect(w, r, chapterURL(slug, "members"), status.OK)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Join requests                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleJoin handles POST /meetup/{slug}/join.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	slug := formutil.Param(r, "slug")
	flag, err := h.Svc.RequestJoin(ctx, actor, slug)
	if err != nil {
		h.ErrLog.Respond(w, r, "join request failed", err)
		return
	}
	uierrors.Redirect(w, r, chapterURL(slug, "about"), flag)
}

// ServeJoinRequests handles GET /meetup/{slug}/join_requests.
func (h *Handler) ServeJoinRequests(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	users, err := h.Svc.ListJoinRequests(ctx, actor, formutil.Param(r, "slug"))
	if err != nil {
		h.ErrLog.Respond(w, r, "list join requests failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, users)
}

// HandleApproveJoin handles POST /meetup/{slug}/join_requests/{username}/approve.
func (h *Handler) HandleApproveJoin(w http.ResponseWriter, r *http.Request) {
	h.joinDecision(w, r, "approve join failed", h.Svc.ApproveJoin)
}

// HandleRejectJoin handles POST /meetup/{slug}/join_requests/{username}/reject.
func (h *Handler) HandleRejectJoin(w http.ResponseWriter, r *http.Request) {
	h.joinDecision(w, r, "reject join failed", h.Svc.RejectJoin)
}

func (h *Handler) joinDecision(w http.ResponseWriter, r *http.Request, msg string, op rosterOp) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	slug := formutil.Param(r, "slug")
	if err := op(ctx, actor, slug, formutil.Param(r, "username")); err != nil {
		h.ErrLog.Respond(w, r, msg, err)
		return
	}
	uierrors.Redirect(w, r, chapterURL(slug, "join_requests"), status.OK)
}
