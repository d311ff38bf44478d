package workflow_test

import (
	"testing"

	"github.com/dalemusser/meetuphub/internal/app/system/indexes"
	"github.com/dalemusser/meetuphub/internal/app/system/notify"
	"github.com/dalemusser/meetuphub/internal/app/workflow"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"github.com/dalemusser/meetuphub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type env struct {
	svc *workflow.Service
	fx  *testutil.Fixtures
	rec *notify.Recorder
}

func setup(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	rec := &notify.Recorder{}
	return &env{
		svc: workflow.New(db, nil, rec, zap.NewNop()),
		fx:  testutil.NewFixtures(t, db),
		rec: rec,
	}
}

func actor(u models.User) workflow.Actor {
	return workflow.Actor{ID: u.ID, Username: u.Username, IsStaff: u.IsStaff}
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
