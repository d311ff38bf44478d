package chapters_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/meetuphub/internal/app/features/chapters"
	uierrors "github.com/dalemusser/meetuphub/internal/app/features/errors"
	"github.com/dalemusser/meetuphub/internal/app/system/indexes"
	"github.com/dalemusser/meetuphub/internal/app/workflow"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"github.com/dalemusser/meetuphub/internal/testutil"
	"go.uber.org/zap"
)

type fixture struct {
	h   *chapters.Handler
	fx  *testutil.Fixtures
	loc models.Location
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
	fx := testutil.NewFixtures(t, db)

	loc := fx.CreateLocation(ctx, "Chicago")
	org := fx.CreateUser(ctx, "olivia")
	ch := fx.CreateChapter(ctx, "Go Chicago", "go-chi", loc.ID, org.ID)

	return &fixture{
		h:   chapters.NewHandler(svc, uierrors.NewErrorLogger(logger), logger),
		fx:  fx,
		loc: loc,
		org: org,
		ch:  ch,
	}
}

func slugReq(r *http.Request, slug string) *http.Request {
	return testutil.WithChiURLParam(r, "slug", slug)
}

func TestServeList(t *testing.T) {
	f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f.fx.CreateEvent(ctx, f.ch.ID, "next-week", time.Now().AddDate(0, 0, 7), f.org.ID)

	rec := testutil.NewRecorder()
	f.h.ServeList(rec, testutil.NewFormRequest("/meetup", nil))

	rec.AssertStatus(t, http.StatusOK)
	var got []workflow.ChapterListing
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Chapter.Slug != "go-chi" {
		t.Fatalf("unexpected listing: %+v", got)
	}
	if len(got[0].Upcoming) != 1 {
		t.Errorf("expected 1 upcoming event, got %d", len(got[0].Upcoming))
	}
	if got[0].Location == nil || got[0].Location.Name != "Chicago" {
		t.Errorf("expected location Chicago, got %+v", got[0].Location)
	}
}

func TestHandleCreate(t *testing.T) {
	f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ada := f.fx.CreateUser(ctx, "ada")
	madison := f.fx.CreateLocation(ctx, "Madison")

	form := url.Values{
		"name":        {"Go Madison"},
		"slug":        {"go-madison"},
		"location_id": {madison.ID.Hex()},
		"description": {"<p>Hello</p><script>x()</script>"},
	}

	t.Run("requires sign-in", func(t *testing.T) {
		rec := testutil.NewRecorder()
		f.h.HandleCreate(rec, testutil.NewFormRequest("/meetup", form))
		rec.AssertStatus(t, http.StatusUnauthorized)
	})

	t.Run("creates and redirects", func(t *testing.T) {
		rec := testutil.NewRecorder()
		f.h.HandleCreate(rec, testutil.WithUser(testutil.NewFormRequest("/meetup", form), ada))
		rec.AssertRedirect(t, "/meetup/go-madison/about?status=success")
	})

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		rec := testutil.NewRecorder()
		f.h.HandleCreate(rec, testutil.WithUser(testutil.NewFormRequest("/meetup", form), ada))
		rec.AssertStatus(t, http.StatusConflict)
		rec.AssertContains(t, `"status":"slug_already_exists"`)
	})

	t.Run("invalid slug", func(t *testing.T) {
		bad := url.Values{"name": {"X"}, "slug": {"Bad Slug"}, "location_id": {madison.ID.Hex()}}
		rec := testutil.NewRecorder()
		f.h.HandleCreate(rec, testutil.WithUser(testutil.NewFormRequest("/meetup", bad), ada))
		rec.AssertStatus(t, http.StatusBadRequest)
	})

	t.Run("reserved slug", func(t *testing.T) {
		bad := url.Values{"name": {"Go Requests"}, "slug": {"requests"}, "location_id": {madison.ID.Hex()}}
		rec := testutil.NewRecorder()
		f.h.HandleCreate(rec, testutil.WithUser(testutil.NewFormRequest("/meetup", bad), ada))
		rec.AssertStatus(t, http.StatusBadRequest)
		rec.AssertContains(t, "Slug is reserved.")
	})

	t.Run("unknown location", func(t *testing.T) {
		bad := url.Values{"name": {"Go Nowhere"}, "slug": {"go-nowhere"}, "location_id": {ada.ID.Hex()}}
		rec := testutil.NewRecorder()
		f.h.HandleCreate(rec, testutil.WithUser(testutil.NewFormRequest("/meetup", bad), ada))
		rec.AssertStatus(t, http.StatusBadRequest)
	})
}

func TestServeAboutAndSponsors(t *testing.T) {
	f := newTestHandler(t)

	rec := testutil.NewRecorder()
	f.h.ServeAbout(rec, slugReq(testutil.NewFormRequest("/meetup/go-chi/about", nil), "go-chi"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Go Chicago")

	rec = testutil.NewRecorder()
	f.h.ServeSponsors(rec, slugReq(testutil.NewFormRequest("/meetup/go-chi/sponsors", nil), "go-chi"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"slug":"go-chi"`)

	rec = testutil.NewRecorder()
	f.h.ServeAbout(rec, slugReq(testutil.NewFormRequest("/meetup/nope/about", nil), "nope"))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleEdit(t *testing.T) {
	f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	outsider := f.fx.CreateUser(ctx, "mallory")

	form := url.Values{
		"name":        {"Go Chicagoland"},
		"location_id": {f.loc.ID.Hex()},
		"sponsors":    {"Acme"},
	}

	rec := testutil.NewRecorder()
	req := slugReq(testutil.WithUser(testutil.NewFormRequest("/meetup/go-chi/edit", form), outsider), "go-chi")
	f.h.HandleEdit(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	req = slugReq(testutil.WithUser(testutil.NewFormRequest("/meetup/go-chi/edit", form), f.org), "go-chi")
	f.h.HandleEdit(rec, req)
	rec.AssertRedirect(t, "/meetup/go-chi/about?status=success")

	rec = testutil.NewRecorder()
	f.h.ServeSponsors(rec, slugReq(testutil.NewFormRequest("/meetup/go-chi/sponsors", nil), "go-chi"))
	rec.AssertContains(t, "Acme")
}

func TestMembership(t *testing.T) {
	f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ada := f.fx.CreateUser(ctx, "ada")

	add := func(who models.User) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		req := testutil.NewFormRequest("/meetup/go-chi/members", url.Values{"username": {"ada"}})
		f.h.HandleAddMember(rec, slugReq(testutil.WithUser(req, who), "go-chi"))
		return rec
	}

	add(ada).AssertStatus(t, http.StatusForbidden)
	add(f.org).AssertRedirect(t, "/meetup/go-chi/members?status=success")
	add(f.org).AssertRedirect(t, "/meetup/go-chi/members?status=already_member")

	promote := testutil.NewRecorder()
	req := testutil.WithChiURLParams(
		testutil.WithUser(testutil.NewFormRequest("/meetup/go-chi/organizers/ada", nil), f.org),
		map[string]string{"slug": "go-chi", "username": "ada"})
	f.h.HandlePromote(promote, req)
	promote.AssertRedirect(t, "/meetup/go-chi/members?status=success")

	roster := testutil.NewRecorder()
	f.h.ServeMembers(roster, slugReq(testutil.NewFormRequest("/meetup/go-chi/members", nil), "go-chi"))
	roster.AssertStatus(t, http.StatusOK)
	var got workflow.Roster
	if err := json.Unmarshal(roster.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Members) != 2 || len(got.Organizers) != 2 {
		t.Errorf("expected 2 members and 2 organizers, got %d and %d", len(got.Members), len(got.Organizers))
	}

	remove := testutil.NewRecorder()
	req = testutil.WithChiURLParams(
		testutil.WithUser(testutil.NewFormRequest("/meetup/go-chi/members/ada/remove", nil), f.org),
		map[string]string{"slug": "go-chi", "username": "ada"})
	f.h.HandleRemoveMember(remove, req)
	remove.AssertRedirect(t, "/meetup/go-chi/members?status=success")

	again := testutil.NewRecorder()
	f.h.HandleDemote(again, req)
	again.AssertStatus(t, http.StatusNotFound)
}

func TestJoinRequests(t *testing.T) {
	f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ada := f.fx.CreateUser(ctx, "ada")

	join := func(who models.User) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		f.h.HandleJoin(rec, slugReq(testutil.WithUser(testutil.NewFormRequest("/meetup/go-chi/join", nil), who), "go-chi"))
		return rec
	}
	join(ada).AssertRedirect(t, "/meetup/go-chi/about?status=join_requested")
	join(ada).AssertRedirect(t, "/meetup/go-chi/about?status=already_requested")
	join(f.org).AssertRedirect(t, "/meetup/go-chi/about?status=already_member")

	list := testutil.NewRecorder()
	f.h.ServeJoinRequests(list, slugReq(testutil.WithUser(testutil.NewFormRequest("/meetup/go-chi/join_requests", nil), f.org), "go-chi"))
	list.AssertStatus(t, http.StatusOK)
	list.AssertContains(t, "ada")

	denied := testutil.NewRecorder()
	f.h.ServeJoinRequests(denied, slugReq(testutil.WithUser(testutil.NewFormRequest("/meetup/go-chi/join_requests", nil), ada), "go-chi"))
	denied.AssertStatus(t, http.StatusForbidden)

	approve := testutil.NewRecorder()
	req := testutil.WithChiURLParams(
		testutil.WithUser(testutil.NewFormRequest("/meetup/go-chi/join_requests/ada/approve", nil), f.org),
		map[string]string{"slug": "go-chi", "username": "ada"})
	f.h.HandleApproveJoin(approve, req)
	approve.AssertRedirect(t, "/meetup/go-chi/join_requests?status=success")

	reject := testutil.NewRecorder()
	f.h.HandleRejectJoin(reject, req)
	reject.AssertStatus(t, http.StatusNotFound)

	join(ada).AssertRedirect(t, "/meetup/go-chi/about?status=already_member")
}

func TestHandleDelete(t *testing.T) {
	f := newTestHandler(t)

	rec := testutil.NewRecorder()
	f.h.HandleDelete(rec, slugReq(testutil.NewFormRequest("/meetup/go-chi/delete", nil), "go-chi"))
	rec.AssertStatus(t, http.StatusUnauthorized)

	rec = testutil.NewRecorder()
	f.h.HandleDelete(rec, slugReq(testutil.WithUser(testutil.NewFormRequest("/meetup/go-chi/delete", nil), f.org), "go-chi"))
	rec.AssertRedirect(t, "/meetup?status=success")

	rec = testutil.NewRecorder()
	f.h.ServeAbout(rec, slugReq(testutil.NewFormRequest("/meetup/go-chi/about", nil), "go-chi"))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeLocations(t *testing.T) {
	f := newTestHandler(t)

	rec := testutil.NewRecorder()
	f.h.ServeLocations(rec, testutil.NewFormRequest("/meetup/locations", nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Chicago")
}

func TestServeHistory_OrganizerOnly(t *testing.T) {
	f := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ada := f.fx.CreateUser(ctx, "ada")

	rec := testutil.NewRecorder()
	f.h.ServeHistory(rec, slugReq(testutil.WithUser(testutil.NewFormRequest("/meetup/go-chi/history", nil), ada), "go-chi"))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	f.h.ServeHistory(rec, slugReq(testutil.WithUser(testutil.NewFormRequest("/meetup/go-chi/history", nil), f.org), "go-chi"))
	rec.AssertStatus(t, http.StatusOK)
}
