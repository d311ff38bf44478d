// internal/app/features/chapterrequests/handler.go
package chapterrequests

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/meetuphub/internal/app/features/errors"
	"github.com/dalemusser/meetuphub/internal/app/features/shared"
	"github.com/dalemusser/meetuphub/internal/app/system/formutil"
	"github.com/dalemusser/meetuphub/internal/app/system/inputval"
	"github.com/dalemusser/meetuphub/internal/app/system/status"
	"github.com/dalemusser/meetuphub/internal/app/workflow"
	"go.uber.org/zap"
)

// Handler serves chapter requests: anyone signed in may propose a chapter,
// staff review and decide.
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

type requestForm struct {
	Name        string `validate:"required,max=100" label:"Name"`
	Slug        string `validate:"required,max=60,slug,chapterslug" label:"Slug"`
	LocationID  string `validate:"required,objectid" label:"Location"`
	Description string `validate:"max=20000" label:"Description"`
}

func requestURL(id string) string {
	return "/meetup/requests/" + id
}

// readForm parses and validates the request form. It answers 400 itself.
func (h *Handler) readForm(w http.ResponseWriter, r *http.Request) (workflow.RequestInput, bool) {
	if !shared.ParseForm(w, r, h.ErrLog) {
		return workflow.RequestInput{}, false
	}
	form := requestForm{
		Name:        formutil.Trim(r, "name"),
		Slug:        formutil.Trim(r, "slug"),
		LocationID:  formutil.Trim(r, "location_id"),
		Description: r.FormValue("description"),
	}
	if res := inputval.Validate(form); res.HasErrors() {
		h.ErrLog.LogBadRequest(w, r, "invalid chapter request form", res.Err(), res.First())
		return workflow.RequestInput{}, false
	}
	return workflow.RequestInput{
		Name:        form.Name,
		Slug:        form.Slug,
		LocationID:  formutil.ObjectID(form.LocationID),
		Description: form.Description,
	}, true
}

// HandleSubmit handles POST /meetup/requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	in, ok := h.readForm(w, r)
	if !ok {
		return
	}
	if _, err := h.Svc.SubmitRequest(ctx, actor, in); err != nil {
		h.ErrLog.Respond(w, r, "submit chapter request failed", err)
		return
	}
	uierrors.Redirect(w, r, "/meetup", status.OK)
}

// ServeList handles GET /meetup/requests.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	pending, err := h.Svc.ListPending(ctx, actor)
	if err != nil {
		h.ErrLog.Respond(w, r, "list chapter requests failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, pending)
}

// ServeView handles GET /meetup/requests/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	id, ok := formutil.ObjectIDParam(r, "id")
	if !ok {
		uierrors.NotFound(w)
		return
	}
	req, err := h.Svc.Request(ctx, actor, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "load chapter request failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, req)
}

// HandleEdit handles POST /meetup/requests/{id}/edit.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	id, ok := formutil.ObjectIDParam(r, "id")
	if !ok {
		uierrors.NotFound(w)
		return
	}
	in, ok := h.readForm(w, r)
	if !ok {
		return
	}
	if _, err := h.Svc.EditRequest(ctx, actor, id, in); err != nil {
		h.ErrLog.Respond(w, r, "edit chapter request failed", err)
		return
	}
	uierrors.Redirect(w, r, requestURL(id.Hex()), status.OK)
}

// HandleApprove handles POST /meetup/requests/{id}/approve. A conflict with
// the live registry sends the reviewer back to the request with the
// conflict flag so it can be edited and retried.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.BeginLong(w, r, h.Log, "approve chapter request")
	if !ok {
		return
	}
	defer cancel()

	id, ok := formutil.ObjectIDParam(r, "id")
	if !ok {
		uierrors.NotFound(w)
		return
	}
	ch, err := h.Svc.ApproveRequest(ctx, actor, id)
	var ce *workflow.ConflictError
	switch {
	case errors.As(err, &ce):
		uierrors.Redirect(w, r, requestURL(id.Hex()), ce.Status)
		return
	case err != nil:
		h.ErrLog.Respond(w, r, "approve chapter request failed", err)
		return
	}
	uierrors.Redirect(w, r, "/meetup/"+ch.Slug+"/about", status.OK)
}

// HandleReject handles POST /meetup/requests/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	id, ok := formutil.ObjectIDParam(r, "id")
	if !ok {
		uierrors.NotFound(w)
		return
	}
	if err := h.Svc.RejectRequest(ctx, actor, id); err != nil {
		h.ErrLog.Respond(w, r, "reject chapter request failed", err)
		return
	}
	uierrors.Redirect(w, r, "/meetup/requests", status.OK)
}
