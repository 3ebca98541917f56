package mock

import (
	"context"
	"testing"

	"flavorlab/models"
)

func TestNewSeedsExpectedRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := New(ctx)
	if err != nil {
		t.Fatalf("mock database initialization failed: %v", err)
	}

	var compounds []models.CompoundInfo
	if err := db.WithContext(ctx).Find(&compounds).Error; err != nil {
		t.Fatalf("query compound library: %v", err)
	}
	if len(compounds) != 5 {
		t.Fatalf("expected 5 seeded compounds, got %d", len(compounds))
	}

	var cola models.Formulation
	if err := db.WithContext(ctx).Preload("Compounds").Preload("Bases").Preload("Ingredients").
		Where("code = ?", "COLA-1").First(&cola).Error; err != nil {
		t.Fatalf("query COLA-1: %v", err)
	}
	if cola.Version() != models.InitialVersion {
		t.Fatalf("expected COLA-1 v1.0.0, got v%s", cola.Version())
	}
	if len(cola.Compounds) != 4 || len(cola.Bases) != 1 || len(cola.Ingredients) != 3 {
		t.Fatalf("unexpected COLA-1 shape: %d compounds, %d bases, %d ingredients",
			len(cola.Compounds), len(cola.Bases), len(cola.Ingredients))
	}

	var stock int64
	if err := db.WithContext(ctx).Model(&models.InventoryRecord{}).Count(&stock).Error; err != nil {
		t.Fatalf("count inventory: %v", err)
	}
	if stock == 0 {
		t.Fatal("expected seeded inventory")
	}
}

func TestOpenIsolatesDatabases(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seeded, err := New(ctx)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	empty, err := Open(ctx)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var count int64
	if err := empty.WithContext(ctx).Model(&models.CompoundInfo{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected an empty database, found %d compounds", count)
	}
	if err := seeded.WithContext(ctx).Model(&models.CompoundInfo{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count == 0 {
		t.Fatal("seeded database lost its rows")
	}
}
