// internal/app/features/supportrequests/handler.go
package supportrequests

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/meetuphub/internal/app/features/errors"
	"github.com/dalemusser/meetuphub/internal/app/features/shared"
	"github.com/dalemusser/meetuphub/internal/app/system/formutil"
	"github.com/dalemusser/meetuphub/internal/app/system/inputval"
	"github.com/dalemusser/meetuphub/internal/app/system/status"
	"github.com/dalemusser/meetuphub/internal/app/workflow"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves volunteer support requests for one event. Mounted under
// /meetup/{slug}/events/{event}/support_requests.
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

type supportForm struct {
	Description string `validate:"required,max=5000" label:"Description"`
}

// base is the support_requests collection URL for the routed event.
func base(r *http.Request) string {
	return "/meetup/" + formutil.Param(r, "slug") + "/events/" + formutil.Param(r, "event") + "/support_requests"
}

func (h *Handler) readDescription(w http.ResponseWriter, r *http.Request) (string, bool) {
	if !shared.ParseForm(w, r, h.ErrLog) {
		return "", false
	}
	form := supportForm{Description: formutil.Trim(r, "description")}
	if res := inputval.Validate(form); res.HasErrors() {
		h.ErrLog.LogBadRequest(w, r, "invalid support request form", res.Err(), res.First())
		return "", false
	}
	return form.Description, true
}

// HandleCreate handles POST .../support_requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	desc, ok := h.readDescription(w, r)
	if !ok {
		return
	}
	sr, err := h.Svc.CreateSupportRequest(ctx, actor, formutil.Param(r, "slug"), formutil.Param(r, "event"), desc)
	if err != nil {
		h.ErrLog.Respond(w, r, "create support request failed", err)
		return
	}
	uierrors.Redirect(w, r, base(r)+"/"+sr.ID.Hex(), status.OK)
}

// ServeApproved handles GET .../support_requests.
func (h *Handler) ServeApproved(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := shared.List(r)
	defer cancel()

	list, err := h.Svc.ListApprovedSupport(ctx, formutil.Param(r, "slug"), formutil.Param(r, "event"))
	if err != nil {
		h.ErrLog.Respond(w, r, "list support requests failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, list)
}

// ServeUnapproved handles GET .../support_requests/unapproved.
func (h *Handler) ServeUnapproved(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	list, err := h.Svc.ListUnapprovedSupport(ctx, actor, formutil.Param(r, "slug"), formutil.Param(r, "event"))
	if err != nil {
		h.ErrLog.Respond(w, r, "list unapproved support requests failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, list)
}

// ServeView handles GET .../support_requests/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := formutil.ObjectIDParam(r, "id")
	if !ok {
		uierrors.NotFound(w)
		return
	}
	ctx, cancel := shared.Read(r)
	defer cancel()

	view, err := h.Svc.SupportRequest(ctx, formutil.Param(r, "slug"), formutil.Param(r, "event"), id)
	if err != nil {
		h.ErrLog.Respond(w, r, "load support request failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, view)
}

// HandleEdit handles POST .../support_requests/{id}/edit.
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
	desc, ok := h.readDescription(w, r)
	if !ok {
		return
	}
	err := h.Svc.EditSupportRequest(ctx, actor, formutil.Param(r, "slug"), formutil.Param(r, "event"), id, desc)
	if err != nil {
		h.ErrLog.Respond(w, r, "edit support request failed", err)
		return
	}
	uierrors.Redirect(w, r, base(r)+"/"+id.Hex(), status.OK)
}

// HandleDelete handles POST .../support_requests/{id}/delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "delete support request failed", h.Svc.DeleteSupportRequest, base(r))
}

// HandleApprove handles POST .../support_requests/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "approve support request failed", h.Svc.ApproveSupportRequest, base(r)+"/unapproved")
}

// HandleReject handles POST .../support_requests/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "reject support request failed", h.Svc.RejectSupportRequest, base(r)+"/unapproved")
}

type supportOp func(ctx context.Context, actor workflow.Actor, chapterSlug, eventSlug string, id primitive.ObjectID) error

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, msg string, op supportOp, next string) {
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
	if err := op(ctx, actor, formutil.Param(r, "slug"), formutil.Param(r, "event"), id); err != nil {
		h.ErrLog.Respond(w, r, msg, err)
		return
	}
	uierrors.Redirect(w, r, next, status.OK)
}
