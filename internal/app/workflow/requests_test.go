package workflow_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/meetuphub/internal/app/system/status"
	"github.com/dalemusser/meetuphub/internal/app/workflow"
	"github.com/dalemusser/meetuphub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestApproveRequest_ConflictOrder(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := e.fx.CreateUser(ctx, "owner")
	requester := e.fx.CreateUser(ctx, "requester")
	staff := e.fx.CreateStaff(ctx, "staff")
	taken := e.fx.CreateLocation(ctx, "Taken")
	free := e.fx.CreateLocation(ctx, "Free")
	e.fx.CreateChapter(ctx, "Go Existing", "go-existing", taken.ID, owner.ID)

	tests := []struct {
		name string
		in   workflow.RequestInput
		want status.Flag
	}{
		{"name wins when everything collides", workflow.RequestInput{Name: "go existing", Slug: "go-existing", LocationID: taken.ID}, status.NameAlreadyExists},
		{"slug before location", workflow.RequestInput{Name: "Fresh", Slug: "go-existing", LocationID: taken.ID}, status.SlugAlreadyExists},
		{"location last", workflow.RequestInput{Name: "Fresh", Slug: "fresh", LocationID: taken.ID}, status.LocationAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := e.svc.SubmitRequest(ctx, actor(requester), tt.in)
			if err != nil {
				t.Fatalf("SubmitRequest failed: %v", err)
			}
			_, err = e.svc.ApproveRequest(ctx, actor(staff), req.ID)
			var ce *workflow.ConflictError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConflictError, got %v", err)
			}
			if ce.Status != tt.want {
				t.Errorf("status = %q, want %q", ce.Status, tt.want)
			}
			got, _ := e.svc.Request(ctx, actor(staff), req.ID)
			if got.IsApproved {
				t.Error("refused request must stay pending")
			}
		})
	}

	list, err := e.svc.ListChapters(ctx)
	if err != nil {
		t.Fatalf("ListChapters failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("refused approvals must not create chapters, have %d", len(list))
	}

	// Fixing the request through the edit page lets approval through.
	pending, _ := e.svc.ListPending(ctx, actor(staff))
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending, got %d", len(pending))
	}
	fixed, err := e.svc.EditRequest(ctx, actor(staff), pending[2].ID, workflow.RequestInput{Name: "Fresh", Slug: "fresh", LocationID: free.ID})
	if err != nil {
		t.Fatalf("EditRequest failed: %v", err)
	}
	ch, err := e.svc.ApproveRequest(ctx, actor(staff), fixed.ID)
	if err != nil {
		t.Fatalf("ApproveRequest failed: %v", err)
	}
	if !contains(ch.MemberIDs, requester.ID) || !contains(ch.OrganizerIDs, requester.ID) {
		t.Error("requester should become member and organizer")
	}
	approved, _ := e.svc.Request(ctx, actor(staff), fixed.ID)
	if !approved.IsApproved {
		t.Error("request should be marked approved")
	}
	if _, err := e.svc.ApproveRequest(ctx, actor(staff), fixed.ID); !errors.Is(err, workflow.ErrNotFound) {
		t.Errorf("second approval: expected ErrNotFound, got %v", err)
	}
}

func TestRequestsAreStaffOnly(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := e.fx.CreateUser(ctx, "user")
	staff := e.fx.CreateStaff(ctx, "staff")
	loc := e.fx.CreateLocation(ctx, "Kyiv")

	req, err := e.svc.SubmitRequest(ctx, actor(user), workflow.RequestInput{Name: "Go Kyiv", Slug: "go-kyiv", LocationID: loc.ID})
	if err != nil {
		t.Fatalf("SubmitRequest failed: %v", err)
	}
	if req.IsApproved {
		t.Error("new request should be pending")
	}

	u := actor(user)
	if _, err := e.svc.ListPending(ctx, u); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("ListPending: expected ErrForbidden, got %v", err)
	}
	if _, err := e.svc.ApproveRequest(ctx, u, req.ID); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("ApproveRequest: expected ErrForbidden, got %v", err)
	}
	if err := e.svc.RejectRequest(ctx, u, req.ID); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("RejectRequest: expected ErrForbidden, got %v", err)
	}

	if err := e.svc.RejectRequest(ctx, actor(staff), req.ID); err != nil {
		t.Fatalf("RejectRequest failed: %v", err)
	}
	if _, err := e.svc.Request(ctx, actor(staff), req.ID); !errors.Is(err, workflow.ErrNotFound) {
		t.Errorf("rejected request should be gone, got %v", err)
	}
	if err := e.svc.RejectRequest(ctx, actor(staff), primitive.NewObjectID()); !errors.Is(err, workflow.ErrNotFound) {
		t.Errorf("unknown request: expected ErrNotFound, got %v", err)
	}
}

func TestReservedChapterSlugs(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := e.fx.CreateUser(ctx, "user")
	staff := e.fx.CreateStaff(ctx, "staff")
	loc := e.fx.CreateLocation(ctx, "Porto")

	for _, slug := range []string{"requests", "locations"} {
		_, err := e.svc.SubmitRequest(ctx, actor(user), workflow.RequestInput{Name: "Go " + slug, Slug: slug, LocationID: loc.ID})
		if !errors.Is(err, workflow.ErrInvalid) {
			t.Errorf("SubmitRequest(%q): expected ErrInvalid, got %v", slug, err)
		}
		_, err = e.svc.CreateChapter(ctx, actor(user), workflow.ChapterInput{Name: "Go " + slug, Slug: slug, LocationID: loc.ID})
		if !errors.Is(err, workflow.ErrInvalid) {
			t.Errorf("CreateChapter(%q): expected ErrInvalid, got %v", slug, err)
		}
	}

	req, err := e.svc.SubmitRequest(ctx, actor(user), workflow.RequestInput{Name: "Go Porto", Slug: "go-porto", LocationID: loc.ID})
	if err != nil {
		t.Fatalf("SubmitRequest failed: %v", err)
	}
	_, err = e.svc.EditRequest(ctx, actor(staff), req.ID, workflow.RequestInput{Name: "Go Porto", Slug: "requests", LocationID: loc.ID})
	if !errors.Is(err, workflow.ErrInvalid) {
		t.Errorf("EditRequest to a reserved slug: expected ErrInvalid, got %v", err)
	}
	if exists, _ := e.svc.Chapters.ExistsBySlug(ctx, "requests"); exists {
		t.Error("no chapter should be created under a reserved slug")
	}
}
