package workflow_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/meetuphub/internal/app/workflow"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"github.com/dalemusser/meetuphub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRSVPAccumulates(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := e.fx.CreateUser(ctx, "alice")
	bob := e.fx.CreateUser(ctx, "bob")
	ch := e.fx.CreateChapter(ctx, "Go Tartu", "go-tartu", e.fx.CreateLocation(ctx, "Tartu").ID, alice.ID)
	ev := e.fx.CreateEvent(ctx, ch.ID, "night", time.Now(), alice.ID)

	for i := 0; i < 2; i++ {
		if _, err := e.svc.SubmitRSVP(ctx, actor(bob), "go-tartu", "night", true, false); err != nil {
			t.Fatalf("SubmitRSVP #%d failed: %v", i+1, err)
		}
	}
	n, err := e.fx.DB().Collection("rsvps").CountDocuments(ctx, bson.M{"event_id": ev.ID, "user_id": bob.ID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected two ledger rows, got %d", n)
	}

	if _, err := e.svc.ListGoing(ctx, actor(bob), "go-tartu", "night"); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("non-organizer ListGoing: expected ErrForbidden, got %v", err)
	}
	going, err := e.svc.ListGoing(ctx, actor(alice), "go-tartu", "night")
	if err != nil {
		t.Fatalf("ListGoing failed: %v", err)
	}
	if len(going) != 2 {
		t.Errorf("expected 2 going rows, got %d", len(going))
	}
}

func TestSupportRequests(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := e.fx.CreateUser(ctx, "alice")
	bob := e.fx.CreateUser(ctx, "bob")
	eve := e.fx.CreateUser(ctx, "eve")
	ch := e.fx.CreateChapter(ctx, "Go Vilnius", "go-vilnius", e.fx.CreateLocation(ctx, "Vilnius").ID, alice.ID)
	e.fx.CreateEvent(ctx, ch.ID, "conf", time.Now(), alice.ID)
	a, b := actor(alice), actor(bob)
	e.svc.AddMember(ctx, a, "go-vilnius", "bob")

	if _, err := e.svc.CreateSupportRequest(ctx, actor(eve), "go-vilnius", "conf", "help"); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("non-member create: expected ErrForbidden, got %v", err)
	}
	if _, err := e.svc.CreateSupportRequest(ctx, b, "go-vilnius", "conf", "<b></b>"); !errors.Is(err, workflow.ErrInvalid) {
		t.Errorf("empty description: expected ErrInvalid, got %v", err)
	}
	first, err := e.svc.CreateSupportRequest(ctx, b, "go-vilnius", "conf", "Setup crew")
	if err != nil {
		t.Fatalf("CreateSupportRequest failed: %v", err)
	}
	second, _ := e.svc.CreateSupportRequest(ctx, b, "go-vilnius", "conf", "Cleanup crew")

	if err := e.svc.EditSupportRequest(ctx, a, "go-vilnius", "conf", first.ID, "mine now"); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("non-author edit: expected ErrForbidden, got %v", err)
	}
	if err := e.svc.EditSupportRequest(ctx, b, "go-vilnius", "conf", first.ID, "Setup crew, 2 people"); err != nil {
		t.Fatalf("EditSupportRequest failed: %v", err)
	}

	if _, err := e.svc.ListUnapprovedSupport(ctx, b, "go-vilnius", "conf"); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("non-organizer unapproved list: expected ErrForbidden, got %v", err)
	}
	if err := e.svc.ApproveSupportRequest(ctx, b, "go-vilnius", "conf", first.ID); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("non-organizer approve: expected ErrForbidden, got %v", err)
	}

	if err := e.svc.ApproveSupportRequest(ctx, a, "go-vilnius", "conf", first.ID); err != nil {
		t.Fatalf("ApproveSupportRequest failed: %v", err)
	}
	unapproved, _ := e.svc.ListUnapprovedSupport(ctx, a, "go-vilnius", "conf")
	if len(unapproved) != 1 || unapproved[0].ID != second.ID {
		t.Errorf("unapproved after approve = %d rows", len(unapproved))
	}

	e.svc.AddComment(ctx, a, models.SupportRequestOwner(second.ID), "are you sure?")
	if err := e.svc.RejectSupportRequest(ctx, a, "go-vilnius", "conf", second.ID); err != nil {
		t.Fatalf("RejectSupportRequest failed: %v", err)
	}
	unapproved, _ = e.svc.ListUnapprovedSupport(ctx, a, "go-vilnius", "conf")
	if len(unapproved) != 0 {
		t.Errorf("rejected request should leave the unapproved list, got %d", len(unapproved))
	}
	if _, err := e.svc.SupportRequest(ctx, "go-vilnius", "conf", second.ID); !errors.Is(err, workflow.ErrNotFound) {
		t.Errorf("rejected request should be deleted, got %v", err)
	}

	approved, err := e.svc.ListApprovedSupport(ctx, "go-vilnius", "conf")
	if err != nil || len(approved) != 1 || approved[0].Description != "Setup crew, 2 people" {
		t.Errorf("ListApprovedSupport = %+v, %v", approved, err)
	}
	view, err := e.svc.Event(ctx, "go-vilnius", "conf")
	if err != nil || len(view.Support) != 1 {
		t.Errorf("event view should carry approved support requests: %+v, %v", view, err)
	}

	if err := e.svc.DeleteSupportRequest(ctx, a, "go-vilnius", "conf", first.ID); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("non-author delete: expected ErrForbidden, got %v", err)
	}
	if err := e.svc.DeleteSupportRequest(ctx, b, "go-vilnius", "conf", first.ID); err != nil {
		t.Fatalf("DeleteSupportRequest failed: %v", err)
	}
	if err := e.svc.ApproveSupportRequest(ctx, a, "go-vilnius", "conf", primitive.NewObjectID()); !errors.Is(err, workflow.ErrNotFound) {
		t.Errorf("unknown id: expected ErrNotFound, got %v", err)
	}
}

func TestCommentsAreAuthorOnly(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := e.fx.CreateUser(ctx, "alice")
	bob := e.fx.CreateUser(ctx, "bob")
	ch := e.fx.CreateChapter(ctx, "Go Tallinn", "go-tallinn", e.fx.CreateLocation(ctx, "Tallinn").ID, alice.ID)
	e.fx.CreateEvent(ctx, ch.ID, "demo", time.Now(), alice.ID)

	owner, err := e.svc.EventCommentOwner(ctx, "go-tallinn", "demo")
	if err != nil {
		t.Fatalf("EventCommentOwner failed: %v", err)
	}
	if _, err := e.svc.EventCommentOwner(ctx, "go-tallinn", "missing"); !errors.Is(err, workflow.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	c, err := e.svc.AddComment(ctx, actor(bob), owner, "<script>x</script>Great talk")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if c.Body != "Great talk" {
		t.Errorf("Body = %q, want tags stripped", c.Body)
	}
	if _, err := e.svc.AddComment(ctx, actor(bob), owner, "   "); !errors.Is(err, workflow.ErrInvalid) {
		t.Errorf("blank comment: expected ErrInvalid, got %v", err)
	}

	// Organizers have no special rights over comments.
	if err := e.svc.EditComment(ctx, actor(alice), owner, c.ID, "edited"); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("non-author edit: expected ErrForbidden, got %v", err)
	}
	if err := e.svc.DeleteComment(ctx, actor(alice), owner, c.ID); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("non-author delete: expected ErrForbidden, got %v", err)
	}
	if err := e.svc.EditComment(ctx, actor(bob), owner, c.ID, "Great talk!"); err != nil {
		t.Fatalf("EditComment failed: %v", err)
	}

	wrong := models.SupportRequestOwner(owner.ID)
	if err := e.svc.DeleteComment(ctx, actor(bob), wrong, c.ID); !errors.Is(err, workflow.ErrNotFound) {
		t.Errorf("wrong owner kind: expected ErrNotFound, got %v", err)
	}
	if err := e.svc.DeleteComment(ctx, actor(bob), owner, c.ID); err != nil {
		t.Fatalf("DeleteComment failed: %v", err)
	}
	view, _ := e.svc.Event(ctx, "go-tallinn", "demo")
	if len(view.Comments) != 0 {
		t.Errorf("expected no comments after delete, got %d", len(view.Comments))
	}
}
