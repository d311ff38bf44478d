package comments_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/meetuphub/internal/app/features/comments"
	uierrors "github.com/dalemusser/meetuphub/internal/app/features/errors"
	"github.com/dalemusser/meetuphub/internal/app/workflow"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"github.com/dalemusser/meetuphub/internal/testutil"
	"go.uber.org/zap"
)

const eventPath = "/meetup/go-chi/events/pizza"

type fixture struct {
	h   *comments.Handler
	svc *workflow.Service
	ev  models.Event
	ada models.User
	bob models.User
}

func newTestHandler(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := zap.NewNop()
	svc := workflow.New(db, nil, nil, logger)
	fx := testutil.NewFixtures(t, db)

	loc := fx.CreateLocation(ctx, "Chicago")
	org := fx.CreateUser(ctx, "olivia")
	ch := fx.CreateChapter(ctx, "Go Chicago", "go-chi", loc.ID, org.ID)
	ev := fx.CreateEvent(ctx, ch.ID, "pizza", time.Now().AddDate(0, 0, 3), org.ID)

	return &fixture{
		h:   comments.NewHandler(svc, uierrors.NewErrorLogger(logger), logger),
		svc: svc,
		ev:  ev,
		ada: fx.CreateUser(ctx, "ada"),
		bob: fx.CreateUser(ctx, "bob"),
	}
}

func req(u models.User, form url.Values, params map[string]string) *http.Request {
	p := map[string]string{"slug": "go-chi", "event": "pizza"}
	for k, v := range params {
		p[k] = v
	}
	return testutil.WithChiURLParams(testutil.WithUser(testutil.NewFormRequest("/", form), u), p)
}

func (f *fixture) only(t *testing.T, owner models.OwnerRef) models.Comment {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	list, err := f.svc.Comments.List(ctx, owner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(list))
	}
	return list[0]
}

func TestEventComments(t *testing.T) {
	f := newTestHandler(t)
	owner := models.EventOwner(f.ev.ID)

	rec := testutil.NewRecorder()
	f.h.HandleAddEventComment(rec, req(f.ada, url.Values{"body": {"See you <b>there</b>"}}, nil))
	rec.AssertRedirect(t, eventPath+"?status=success")

	c := f.only(t, owner)
	if c.Body != "See you there" || c.AuthorID != f.ada.ID || !c.IsApproved {
		t.Errorf("unexpected comment: %+v", c)
	}
	cid := map[string]string{"cid": c.ID.Hex()}

	rec = testutil.NewRecorder()
	f.h.HandleEditEventComment(rec, req(f.bob, url.Values{"body": {"hijack"}}, cid))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	f.h.HandleEditEventComment(rec, req(f.ada, url.Values{"body": {"Running late"}}, cid))
	rec.AssertRedirect(t, eventPath+"?status=success")
	if got := f.only(t, owner); got.Body != "Running late" {
		t.Errorf("body: got %q", got.Body)
	}

	rec = testutil.NewRecorder()
	f.h.HandleDeleteEventComment(rec, req(f.bob, nil, cid))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	f.h.HandleDeleteEventComment(rec, req(f.ada, nil, cid))
	rec.AssertRedirect(t, eventPath+"?status=success")

	rec = testutil.NewRecorder()
	f.h.HandleDeleteEventComment(rec, req(f.ada, nil, cid))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestEventComments_Validation(t *testing.T) {
	f := newTestHandler(t)

	rec := testutil.NewRecorder()
	f.h.HandleAddEventComment(rec, req(f.ada, url.Values{"body": {""}}, nil))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Comment is required.")

	rec = testutil.NewRecorder()
	f.h.HandleAddEventComment(rec, req(f.ada, url.Values{"body": {"hi"}}, map[string]string{"event": "nope"}))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	f.h.HandleEditEventComment(rec, req(f.ada, url.Values{"body": {"hi"}}, map[string]string{"cid": "bad"}))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestSupportComments(t *testing.T) {
	f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sr, err := f.svc.Support.Create(ctx, f.ev.ID, f.ada.ID, "Chairs")
	if err != nil {
		t.Fatalf("Create support request: %v", err)
	}
	id := map[string]string{"id": sr.ID.Hex()}
	back := eventPath + "/support_requests/" + sr.ID.Hex() + "?status=success"

	rec := testutil.NewRecorder()
	f.h.HandleAddSupportComment(rec, req(f.bob, url.Values{"body": {"How many?"}}, id))
	rec.AssertRedirect(t, back)

	c := f.only(t, models.SupportRequestOwner(sr.ID))
	ids := map[string]string{"id": sr.ID.Hex(), "cid": c.ID.Hex()}

	rec = testutil.NewRecorder()
	f.h.HandleEditSupportComment(rec, req(f.bob, url.Values{"body": {"How many chairs?"}}, ids))
	rec.AssertRedirect(t, back)

	rec = testutil.NewRecorder()
	f.h.HandleDeleteSupportComment(rec, req(f.ada, nil, ids))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	f.h.HandleAddSupportComment(rec, req(f.bob, url.Values{"body": {"x"}}, map[string]string{"id": "bad"}))
	rec.AssertStatus(t, http.StatusNotFound)
}
