package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"flavorlab/models"
)

// SetInventory creates or replaces the stock record for a compound.
func (s *Store) SetInventory(ctx context.Context, compoundName string, stockGrams, reorderGrams float64) (models.InventoryRecord, error) {
	record := models.InventoryRecord{
		CompoundName:          models.CanonicalName(compoundName),
		StockGrams:            stockGrams,
		ReorderThresholdGrams: reorderGrams,
		LastUpdated:           s.now(),
	}
	if err := Validate(&record); err != nil {
		return models.InventoryRecord{}, err
	}

	db, err := s.conn(ctx)
	if err != nil {
		return models.InventoryRecord{}, err
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "compound_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"stock_grams", "reorder_threshold_grams", "last_updated", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return models.InventoryRecord{}, fmt.Errorf("set inventory for %q: %w", record.CompoundName, err)
	}

	return s.mustInventory(ctx, record.CompoundName)
}

func (s *Store) mustInventory(ctx context.Context, name string) (models.InventoryRecord, error) {
	record, ok, err := s.InventoryByName(ctx, name)
	if err != nil {
		return models.InventoryRecord{}, err
	}
	if !ok {
		return models.InventoryRecord{}, fmt.Errorf("inventory %q: %w", name, ErrNotFound)
	}
	return record, nil
}

// InventoryByName returns the stock record for name. ok is false when the
// compound is untracked.
func (s *Store) InventoryByName(ctx context.Context, name string) (models.InventoryRecord, bool, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.InventoryRecord{}, false, err
	}

	var rows []models.InventoryRecord
	if err := db.Where("compound_name = ?", models.CanonicalName(name)).Limit(1).Find(&rows).Error; err != nil {
		return models.InventoryRecord{}, false, fmt.Errorf("load inventory %q: %w", name, err)
	}
	if len(rows) == 0 {
		return models.InventoryRecord{}, false, nil
	}
	return rows[0], true, nil
}

// UpdateStock overwrites the stock level of one record.
func (s *Store) UpdateStock(ctx context.Context, id uint, stockGrams float64, at time.Time) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&models.InventoryRecord{}).Where("id = ?", id).Updates(map[string]any{
		"stock_grams":  stockGrams,
		"last_updated": at,
	})
	if result.Error != nil {
		return fmt.Errorf("update stock %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update stock %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) ListInventory(ctx context.Context) ([]models.InventoryRecord, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var records []models.InventoryRecord
	if err := db.Order("compound_name asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return records, nil
}

// LowStock lists records at or below their reorder threshold.
func (s *Store) LowStock(ctx context.Context) ([]models.InventoryRecord, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var records []models.InventoryRecord
	if err := db.Where("reorder_threshold_grams > 0 AND stock_grams <= reorder_threshold_grams").
		Order("compound_name asc").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return records, nil
}

// Now reports the store clock.
func (s *Store) Now() time.Time {
	return s.now()
}
