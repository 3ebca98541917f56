package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"flavorlab/internal/db/mock"
	"flavorlab/models"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func openStore(t *testing.T, open func(context.Context) (*gorm.DB, error)) *Store {
	t.Helper()

	database, err := open(context.Background())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(database).WithClock(func() time.Time { return testNow })
}

func emptyStore(t *testing.T) *Store {
	t.Helper()
	return openStore(t, mock.Open)
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	return openStore(t, mock.New)
}

func count(t *testing.T, s *Store, model any) int64 {
	t.Helper()
	var n int64
	if err := s.DB().Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

func lemonade() *models.Formulation {
	f := &models.Formulation{Code: "LEM-1", Name: "Cloudy Lemonade", TargetPH: 3.1, TargetBrix: 10}
	f.SetVersion(models.InitialVersion)
	f.SetCompound("Citral", 12)
	f.SetCompound("d-Limonene", 40)
	return f
}

func TestStoreWithoutDatabase(t *testing.T) {
	t.Parallel()

	var s *Store
	if _, err := s.LatestFormulation(context.Background(), "COLA-1"); !errors.Is(err, gorm.ErrInvalidDB) {
		t.Fatalf("expected ErrInvalidDB, got %v", err)
	}
	if err := New(nil).Transaction(context.Background(), func(*Store) error { return nil }); !errors.Is(err, gorm.ErrInvalidDB) {
		t.Fatalf("expected ErrInvalidDB from Transaction, got %v", err)
	}
}

func TestValidateCollectsFieldErrors(t *testing.T) {
	t.Parallel()

	err := Validate(&models.Formulation{TargetPH: 15})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) < 3 {
		t.Fatalf("expected code, name and ph failures, got %v", err)
	}
}

func TestTransactionRollsBackOnError(t *testing.T) {
	t.Parallel()

	s := emptyStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.SaveSupplier(ctx, &models.Supplier{Name: "Ghost Supply"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if n := count(t, s, &models.Supplier{}); n != 0 {
		t.Fatalf("expected rollback to leave no suppliers, found %d", n)
	}
}
