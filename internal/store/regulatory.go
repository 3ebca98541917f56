package store

import (
	"context"
	"fmt"

	"flavorlab/models"
)

// AddRegulatoryLimit appends an override to a compound's limit history.
// History rows are never updated or deleted.
func (s *Store) AddRegulatoryLimit(ctx context.Context, limit *models.RegulatoryLimit) error {
	if limit == nil {
		return fmt.Errorf("%w: regulatory limit is nil", ErrValidation)
	}
	limit.CompoundName = models.CanonicalName(limit.CompoundName)
	// Stored as text by sqlite; a single offset keeps the date ordering exact.
	limit.EffectiveDate = limit.EffectiveDate.UTC()
	if err := Validate(limit); err != nil {
		return err
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := db.Create(limit).Error; err != nil {
		limit.ID = 0
		return fmt.Errorf("append regulatory limit for %q: %w", limit.CompoundName, err)
	}
	return nil
}

// RegulatoryHistory lists a compound's overrides, newest first: by effective
// date, then by insertion order.
func (s *Store) RegulatoryHistory(ctx context.Context, compoundName string) ([]models.RegulatoryLimit, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var history []models.RegulatoryLimit
	if err := db.Where("compound_name = ?", models.CanonicalName(compoundName)).
		Order("effective_date desc, id desc").
		Find(&history).Error; err != nil {
		return nil, fmt.Errorf("list regulatory history for %q: %w", compoundName, err)
	}
	return history, nil
}

// LatestOverride returns the governing override for a compound, if any.
func (s *Store) LatestOverride(ctx context.Context, compoundName string) (models.RegulatoryLimit, bool, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.RegulatoryLimit{}, false, err
	}

	var rows []models.RegulatoryLimit
	if err := db.Where("compound_name = ?", models.CanonicalName(compoundName)).
		Order("effective_date desc, id desc").
		Limit(1).
		Find(&rows).Error; err != nil {
		return models.RegulatoryLimit{}, false, fmt.Errorf("load override for %q: %w", compoundName, err)
	}
	if len(rows) == 0 {
		return models.RegulatoryLimit{}, false, nil
	}
	return rows[0], true, nil
}
