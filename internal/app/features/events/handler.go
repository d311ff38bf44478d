// internal/app/features/events/handler.go
package events

import (
	"net/http"

	uierrors "github.com/dalemusser/meetuphub/internal/app/features/errors"
	"github.com/dalemusser/meetuphub/internal/app/features/shared"
	"github.com/dalemusser/meetuphub/internal/app/system/formutil"
	"github.com/dalemusser/meetuphub/internal/app/system/inputval"
	"github.com/dalemusser/meetuphub/internal/app/system/status"
	"github.com/dalemusser/meetuphub/internal/app/workflow"
	"go.uber.org/zap"
)

// Handler serves a chapter's event catalog. Mounted under
// /meetup/{slug}/events.
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

type eventForm struct {
	Title       string `validate:"required,max=200" label:"Title"`
	Slug        string `validate:"required,max=60,slug" label:"Slug"`
	Date        string `validate:"required,datetime=2006-01-02" label:"Date"`
	Time        string `validate:"required,hhmm" label:"Time"`
	Description string `validate:"max=20000" label:"Description"`
}

func eventsURL(chapterSlug string) string {
	return "/meetup/" + chapterSlug + "/events"
}

func (h *Handler) readForm(w http.ResponseWriter, r *http.Request) (workflow.EventInput, bool) {
	if !shared.ParseForm(w, r, h.ErrLog) {
		return workflow.EventInput{}, false
	}
	form := eventForm{
		Title:       formutil.Trim(r, "title"),
		Slug:        formutil.Trim(r, "slug"),
		Date:        formutil.Trim(r, "date"),
		Time:        formutil.Trim(r, "time"),
		Description: r.FormValue("description"),
	}
	if res := inputval.Validate(form); res.HasErrors() {
		h.ErrLog.LogBadRequest(w, r, "invalid event form", res.Err(), res.First())
		return workflow.EventInput{}, false
	}
	day, err := formutil.Day(form.Date)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "invalid event date", err, "Date must be a date in YYYY-MM-DD format.")
		return workflow.EventInput{}, false
	}
	return workflow.EventInput{
		Title:       form.Title,
		Slug:        form.Slug,
		Date:        day,
		Time:        form.Time,
		Description: form.Description,
	}, true
}

// ServeUpcoming handles GET /meetup/{slug}/events/upcoming.
func (h *Handler) ServeUpcoming(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := shared.List(r)
	defer cancel()

	list, err := h.Svc.ListUpcoming(ctx, formutil.Param(r, "slug"))
	if err != nil {
		h.ErrLog.Respond(w, r, "list upcoming events failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, list)
}

// ServePast handles GET /meetup/{slug}/events/past.
func (h *Handler) ServePast(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := shared.List(r)
	defer cancel()

	list, err := h.Svc.ListPast(ctx, formutil.Param(r, "slug"))
	if err != nil {
		h.ErrLog.Respond(w, r, "list past events failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, list)
}

// ServeView handles GET /meetup/{slug}/events/{event}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := shared.Read(r)
	defer cancel()

	view, err := h.Svc.Event(ctx, formutil.Param(r, "slug"), formutil.Param(r, "event"))
	if err != nil {
		h.ErrLog.Respond(w, r, "load event failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, view)
}

// HandleCreate handles POST /meetup/{slug}/events.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	in, ok := h.readForm(w, r)
	if !ok {
		return
	}
	slug := formutil.Param(r, "slug")
	ev, err := h.Svc.CreateEvent(ctx, actor, slug, in)
	if err != nil {
		h.ErrLog.Respond(w, r, "create event failed", err)
		return
	}
	uierrors.Redirect(w, r, eventsURL(slug)+"/"+ev.Slug, status.OK)
}

// HandleEdit handles POST /meetup/{slug}/events/{event}/edit.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	in, ok := h.readForm(w, r)
	if !ok {
		return
	}
	slug := formutil.Param(r, "slug")
	ev, err := h.Svc.EditEvent(ctx, actor, slug, formutil.Param(r, "event"), in)
	if err != nil {
		h.ErrLog.Respond(w, r, "edit event failed", err)
		return
	}
	uierrors.Redirect(w, r, eventsURL(slug)+"/"+ev.Slug, status.OK)
}

// HandleDelete handles POST /meetup/{slug}/events/{event}/delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.BeginLong(w, r, h.Log, "delete event")
	if !ok {
		return
	}
	defer cancel()

	slug := formutil.Param(r, "slug")
	if err := h.Svc.DeleteEvent(ctx, actor, slug, formutil.Param(r, "event")); err != nil {
		h.ErrLog.Respond(w, r, "delete event failed", err)
		return
	}
	uierrors.Redirect(w, r, eventsURL(slug)+"/upcoming", status.OK)
}
