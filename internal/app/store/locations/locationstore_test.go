package locationstore_test

import (
	"errors"
	"testing"

	locationstore "github.com/dalemusser/meetuphub/internal/app/store/locations"
	"github.com/dalemusser/meetuphub/internal/domain/models"
	"github.com/dalemusser/meetuphub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := locationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	loc, err := store.Create(ctx, models.Location{Name: " Chicago ", Country: "United States"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if loc.DisplayName != "Chicago" {
		t.Errorf("DisplayName = %q, want Chicago", loc.DisplayName)
	}

	got, err := store.GetByID(ctx, loc.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Chicago" {
		t.Errorf("Name = %q, want Chicago", got.Name)
	}

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, locationstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListAndMap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := locationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	berlin, _ := store.Create(ctx, models.Location{Name: "Berlin", Country: "Germany"})
	austin, _ := store.Create(ctx, models.Location{Name: "Austin", Country: "United States"})
	store.Create(ctx, models.Location{Name: "Aachen", Country: "Germany"})

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 locations, got %d", len(all))
	}
	if all[0].Name != "Aachen" || all[1].Name != "Berlin" || all[2].Name != "Austin" {
		t.Errorf("unexpected order: %s, %s, %s", all[0].Name, all[1].Name, all[2].Name)
	}

	m, err := store.MapByIDs(ctx, []primitive.ObjectID{berlin.ID, austin.ID})
	if err != nil {
		t.Fatalf("MapByIDs failed: %v", err)
	}
	if len(m) != 2 || m[austin.ID].Name != "Austin" {
		t.Errorf("unexpected map: %+v", m)
	}
}
