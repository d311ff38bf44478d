package events_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	uierrors "github.com/dalemusser/meetuphub/internal/app/features/errors"
	"github.com/dalemusser/meetuphub/internal/app/features/events"
	"github.com/dalemusser/meetuphub/internal/app/system/indexes"
	"github.com/dalemusser/meetuphub/internal/app/workflow"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"github.com/dalemusser/meetuphub/internal/testutil"
	"go.uber.org/zap"
)

var today = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	h   *events.Handler
	svc *workflow.Service
	fx  *testutil.Fixtures
	org models.User
	ch  models.Chapter
}

func newTestHandler(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	logger := zap.NewNop()
	svc := workflow.New(db, nil, nil, logger)
	svc.Now = func() time.Time { return today }
	fx := testutil.NewFixtures(t, db)

	loc := fx.CreateLocation(ctx, "Chicago")
	org := fx.CreateUser(ctx, "olivia")
	ch := fx.CreateChapter(ctx, "Go Chicago", "go-chi", loc.ID, org.ID)

	return &fixture{
		h:   events.NewHandler(svc, uierrors.NewErrorLogger(logger), logger),
		svc: svc,
		fx:  fx,
		org: org,
		ch:  ch,
	}
}

func params(r *http.Request, event string) *http.Request {
	p := map[string]string{"slug": "go-chi"}
	if event != "" {
		p["event"] = event
	}
	return testutil.WithChiURLParams(r, p)
}

func decodeEvents(t *testing.T, rec *testutil.ResponseRecorder) []models.Event {
	t.Helper()
	var got []models.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return got
}

func TestUpcomingAndPast(t *testing.T) {
	f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.fx.CreateEvent(ctx, f.ch.ID, "yesterday", today.AddDate(0, 0, -1), f.org.ID)
	f.fx.CreateEvent(ctx, f.ch.ID, "today", today, f.org.ID)
	f.fx.CreateEvent(ctx, f.ch.ID, "next-month", today.AddDate(0, 1, 0), f.org.ID)

	rec := testutil.NewRecorder()
	f.h.ServeUpcoming(rec, params(testutil.NewFormRequest("/", nil), ""))
	rec.AssertStatus(t, http.StatusOK)
	up := decodeEvents(t, rec)
	if len(up) != 2 || up[0].Slug != "today" || up[1].Slug != "next-month" {
		t.Errorf("upcoming: got %+v", up)
	}

	rec = testutil.NewRecorder()
	f.h.ServePast(rec, params(testutil.NewFormRequest("/", nil), ""))
	rec.AssertStatus(t, http.StatusOK)
	past := decodeEvents(t, rec)
	if len(past) != 1 || past[0].Slug != "yesterday" {
		t.Errorf("past: got %+v", past)
	}

	rec = testutil.NewRecorder()
	f.h.ServeUpcoming(rec, testutil.WithChiURLParam(testutil.NewFormRequest("/", nil), "slug", "nope"))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestCreateEditDelete(t *testing.T) {
	f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	outsider := f.fx.CreateUser(ctx, "mallory")

	form := url.Values{
		"title":       {"Gophers & Pizza"},
		"slug":        {"pizza"},
		"date":        {"2026-07-01"},
		"time":        {"18:30"},
		"description": {"<b>Bring</b> a laptop"},
	}

	rec := testutil.NewRecorder()
	f.h.HandleCreate(rec, params(testutil.WithUser(testutil.NewFormRequest("/", form), outsider), ""))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	f.h.HandleCreate(rec, params(testutil.WithUser(testutil.NewFormRequest("/", form), f.org), ""))
	rec.AssertRedirect(t, "/meetup/go-chi/events/pizza?status=success")

	rec = testutil.NewRecorder()
	f.h.HandleCreate(rec, params(testutil.WithUser(testutil.NewFormRequest("/", form), f.org), ""))
	rec.AssertStatus(t, http.StatusConflict)

	rec = testutil.NewRecorder()
	f.h.ServeView(rec, params(testutil.NewFormRequest("/", nil), "pizza"))
	rec.AssertStatus(t, http.StatusOK)
	var view workflow.EventView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Event == nil || !view.Event.Date.Equal(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected event: %+v", view.Event)
	}

	form.Set("slug", "pizza-night")
	rec = testutil.NewRecorder()
	f.h.HandleEdit(rec, params(testutil.WithUser(testutil.NewFormRequest("/", form), f.org), "pizza"))
	rec.AssertRedirect(t, "/meetup/go-chi/events/pizza-night?status=success")

	rec = testutil.NewRecorder()
	f.h.HandleDelete(rec, params(testutil.WithUser(testutil.NewFormRequest("/", nil), f.org), "pizza-night"))
	rec.AssertRedirect(t, "/meetup/go-chi/events/upcoming?status=success")

	rec = testutil.NewRecorder()
	f.h.ServeView(rec, params(testutil.NewFormRequest("/", nil), "pizza-night"))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleCreate_Validation(t *testing.T) {
	f := newTestHandler(t)

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing title", url.Values{"slug": {"x"}, "date": {"2026-07-01"}, "time": {"18:30"}}, "Title is required."},
		{"bad date", url.Values{"title": {"X"}, "slug": {"x"}, "date": {"07/01/2026"}, "time": {"18:30"}}, "Date must be a date in YYYY-MM-DD format."},
		{"bad time", url.Values{"title": {"X"}, "slug": {"x"}, "date": {"2026-07-01"}, "time": {"6pm"}}, "Time must be a time in HH:MM format."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			f.h.HandleCreate(rec, params(testutil.WithUser(testutil.NewFormRequest("/", tt.form), f.org), ""))
			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertContains(t, tt.want)
		})
	}
}
