package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"flavorlab/models"
)

// PutSetting stores value under key as JSON, replacing any previous value.
func (s *Store) PutSetting(ctx context.Context, key string, value any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: setting key must not be empty", ErrValidation)
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %q: %w", key, err)
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	setting := models.Setting{Key: key, Value: datatypes.JSON(payload), UpdatedAt: s.now()}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("store setting %q: %w", key, err)
	}
	return nil
}

// GetSetting decodes the value under key into dest. It reports false when
// the key has never been set.
func (s *Store) GetSetting(ctx context.Context, key string, dest any) (bool, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return false, err
	}

	var rows []models.Setting
	if err := db.Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: strings.TrimSpace(key)}).Limit(1).Find(&rows).Error; err != nil {
		return false, fmt.Errorf("load setting %q: %w", key, err)
	}
	if len(rows) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(rows[0].Value, dest); err != nil {
		return false, fmt.Errorf("decode setting %q: %w", key, err)
	}
	return true, nil
}
