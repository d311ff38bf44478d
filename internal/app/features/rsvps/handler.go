// internal/app/features/rsvps/handler.go
package rsvps

import (
	"net/http"

	uierrors "github.com/dalemusser/meetuphub/internal/app/features/errors"
	"github.com/dalemusser/meetuphub/internal/app/features/shared"
	"github.com/dalemusser/meetuphub/internal/app/system/formutil"
	"github.com/dalemusser/meetuphub/internal/app/system/status"
	"github.com/dalemusser/meetuphub/internal/app/workflow"
	"go.uber.org/zap"
)

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

// HandleSubmit handles POST /meetup/{slug}/events/{event}/rsvp.
// Form fields coming and plus_one are checkbox values; absent means false.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	if !shared.ParseForm(w, r, h.ErrLog) {
		return
	}
	slug, event := formutil.Param(r, "slug"), formutil.Param(r, "event")
	_, err := h.Svc.SubmitRSVP(ctx, actor, slug, event, formutil.Bool(r, "coming"), formutil.Bool(r, "plus_one"))
	if err != nil {
		h.ErrLog.Respond(w, r, "submit rsvp failed", err)
		return
	}
	uierrors.Redirect(w, r, "/meetup/"+slug+"/events/"+event, status.OK)
}

// ServeGoing handles GET /meetup/{slug}/events/{event}/rsvp/going.
func (h *Handler) ServeGoing(w http.ResponseWriter, r *http.Request) {
	actor, ctx, cancel, ok := shared.Begin(w, r)
	if !ok {
		return
	}
	defer cancel()

	going, err := h.Svc.ListGoing(ctx, actor, formutil.Param(r, "slug"), formutil.Param(r, "event"))
	if err != nil {
		h.ErrLog.Respond(w, r, "list rsvps failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, going)
}
