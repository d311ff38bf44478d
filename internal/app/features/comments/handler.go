// internal/app/features/comments/handler.go
package comments

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/meetuphub/internal/app/features/errors"
	"github.com/dalemusser/meetuphub/internal/app/features/shared"
	"github.com/dalemusser/meetuphub/internal/app/system/formutil"
	"github.com/dalemusser/meetuphub/internal/app/system/inputval"
	"github.com/dalemusser/meetuphub/internal/app/system/status"
	"github.com/dalemusser/meetuphub/internal/app/workflow"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves comment threads on events and on support requests. The
// same handlers back both; a resolver picks the owner from the route.
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

type commentForm struct {
	Body string `validate:"required,max=5000" label:"Comment"`
}

// thread is the comment owner plus the page to return to.
type thread struct {
	owner models.OwnerRef
	back  string
}

type resolver func(ctx context.Context, r *http.Request) (thread, error)

func eventURL(r *http.Request) string {
	return "/meetup/" + formutil.Param(r, "slug") + "/events/" + formutil.Param(r, "event")
}

func (h *Handler) eventThread(ctx context.Context, r *http.Request) (thread, error) {
	owner, err := h.Svc.EventCommentOwner(ctx, formutil.Param(r, "slug"), formutil.Param(r, "event"))
	if err != nil {
		return thread{}, err
	}
	return thread{owner: owner, back: eventURL(r)}, nil
}

func (h *Handler) supportThread(ctx context.Context, r *http.Request) (thread, error) {
	id, ok := formutil.ObjectIDParam(r, "id")
	if !ok {
		return thread{}, workflow.ErrNotFound
	}
	owner, err := h.Svc.SupportCommentOwner(ctx, formutil.Param(r, "slug"), formutil.Param(r, "event"), id)
	if err != nil {
		return thread{}, err
	}
	return thread{owner: owner, back: eventURL(r) + "/support_requests/" + id.Hex()}, nil
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	if !shared.ParseForm(w, r, h.ErrLog) {
		return "", false
	}
	form := commentForm{Body: formutil.Trim(r, "body")}
	if res := inputval.Validate(form); res.HasErrors() {
		h.ErrLog.LogBadRequest(w, r, "invalid comment form", res.Err(), res.First())
		return "", false
	}
	return form.Body, true
}

func (h *Handler) add(resolve resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ctx, cancel, ok := shared.Begin(w, r)
		if !ok {
			return
		}
		defer cancel()

		body, ok := h.readBody(w, r)
		if !ok {
			return
		}
		th, err := resolve(ctx, r)
		if err != nil {
			h.ErrLog.Respond(w, r, "resolve comment thread failed", err)
			return
		}
		if _, err := h.Svc.AddComment(ctx, actor, th.owner, body); err != nil {
			h.ErrLog.Respond(w, r, "add comment failed", err)
			return
		}
		uierrors.Redirect(w, r, th.back, status.OK)
	}
}

func (h *Handler) edit(resolve resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ctx, cancel, ok := shared.Begin(w, r)
		if !ok {
			return
		}
		defer cancel()

		cid, ok := formutil.ObjectIDParam(r, "cid")
		if !ok {
			uierrors.NotFound(w)
			return
		}
		body, ok := h.readBody(w, r)
		if !ok {
			return
		}
		th, err := resolve(ctx, r)
		if err != nil {
			h.ErrLog.Respond(w, r, "resolve comment thread failed", err)
			return
		}
		if err := h.Svc.EditComment(ctx, actor, th.owner, cid, body); err != nil {
			h.ErrLog.Respond(w, r, "edit comment failed", err)
			return
		}
		uierrors.Redirect(w, r, th.back, status.OK)
	}
}

func (h *Handler) remove(resolve resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ctx, cancel, ok := shared.Begin(w, r)
		if !ok {
			return
		}
		defer cancel()

		cid, ok := formutil.ObjectIDParam(r, "cid")
		if !ok {
			uierrors.NotFound(w)
			return
		}
		th, err := resolve(ctx, r)
		if err != nil {
			h.ErrLog.Respond(w, r, "resolve comment thread failed", err)
			return
		}
		if err := h.Svc.DeleteComment(ctx, actor, th.owner, cid); err != nil {
			h.ErrLog.Respond(w, r, "delete comment failed", err)
			return
		}
		uierrors.Redirect(w, r, th.back, status.OK)
	}
}

// HandleAddEventComment handles POST /meetup/{slug}/events/{event}/comments.
func (h *Handler) HandleAddEventComment(w http.ResponseWriter, r *http.Request) {
	h.add(h.eventThread)(w, r)
}

// HandleEditEventComment handles POST .../events/{event}/comments/{cid}/edit.
func (h *Handler) HandleEditEventComment(w http.ResponseWriter, r *http.Request) {
	h.edit(h.eventThread)(w, r)
}

// HandleDeleteEventComment handles POST .../events/{event}/comments/{cid}/delete.
func (h *Handler) HandleDeleteEventComment(w http.ResponseWriter, r *http.Request) {
	h.remove(h.eventThread)(w, r)
}

// HandleAddSupportComment handles POST .../support_requests/{id}/comments.
func (h *Handler) HandleAddSupportComment(w http.ResponseWriter, r *http.Request) {
	h.add(h.supportThread)(w, r)
}

// HandleEditSupportComment handles POST .../support_requests/{id}/comments/{cid}/edit.
func (h *Handler) HandleEditSupportComment(w http.ResponseWriter, r *http.Request) {
	h.edit(h.supportThread)(w, r)
}

// HandleDeleteSupportComment handles POST .../support_requests/{id}/comments/{cid}/delete.
func (h *Handler) HandleDeleteSupportComment(w http.ResponseWriter, r *http.Request) {
	h.remove(h.supportThread)(w, r)
}
