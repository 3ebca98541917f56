package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flavorlab/models"
)

// BatchNumber formats the automatic batch number for the sequence-th run of
// a flavor code in year.
func BatchNumber(flavorCode string, year, sequence int) string {
	return fmt.Sprintf("%s-%d-%03d", flavorCode, year, sequence)
}

// SaveBatch writes a batch header and its lines in one transaction against
// the exact formulation version. When batch.BatchNumber is empty it becomes
// "{code}-{year}-{sequence}", sequence being one more than the number of
// batches already recorded for the code. A number that already exists fails
// with ErrDuplicateBatchNumber.
func (s *Store) SaveBatch(ctx context.Context, flavorCode string, version models.Version, batch *models.BatchRun) (uint, error) {
	if batch == nil {
		return 0, fmt.Errorf("%w: batch is nil", ErrValidation)
	}
	if batch.ID != 0 {
		return 0, fmt.Errorf("%w: batch %s is already saved", ErrValidation, batch.BatchNumber)
	}
	flavorCode = models.CanonicalName(flavorCode)
	batch.BatchNumber = strings.TrimSpace(batch.BatchNumber)
	if err := Validate(batch); err != nil {
		return 0, err
	}

	generated := batch.BatchNumber == ""
	err := s.Transaction(ctx, func(tx *Store) error {
		db, err := tx.conn(ctx)
		if err != nil {
			return err
		}

		var formulation models.Formulation
		if err := db.Where("code = ? AND version_major = ? AND version_minor = ? AND version_patch = ?",
			flavorCode, version.Major, version.Minor, version.Patch).
			First(&formulation).Error; err != nil {
			return wrapNotFound(err, "formulation %s v%s", flavorCode, version)
		}
		batch.FormulationID = formulation.ID

		if batch.ProducedAt.IsZero() {
			batch.ProducedAt = tx.now()
		}

		if generated {
			prior, err := countBatches(db, flavorCode)
			if err != nil {
				return err
			}
			batch.BatchNumber = BatchNumber(flavorCode, batch.ProducedAt.Year(), int(prior)+1)
		}

		var taken int64
		if err := db.Model(&models.BatchRun{}).Where("batch_number = ?", batch.BatchNumber).Count(&taken).Error; err != nil {
			return fmt.Errorf("check batch number: %w", err)
		}
		if taken > 0 {
			return fmt.Errorf("batch %s: %w", batch.BatchNumber, ErrDuplicateBatchNumber)
		}

		if err := db.Omit(clause.Associations).Create(batch).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("batch %s: %w", batch.BatchNumber, ErrDuplicateBatchNumber)
			}
			return fmt.Errorf("create batch %s: %w", batch.BatchNumber, err)
		}

		for i := range batch.Lines {
			line := &batch.Lines[i]
			line.ID = 0
			line.BatchRunID = batch.ID
			line.Position = i
			if err := db.Create(line).Error; err != nil {
				return fmt.Errorf("create batch line %q: %w", line.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		batch.ID = 0
		if generated {
			batch.BatchNumber = ""
		}
		for i := range batch.Lines {
			batch.Lines[i].ID = 0
			batch.Lines[i].BatchRunID = 0
		}
		return 0, err
	}
	return batch.ID, nil
}

// CountBatches returns how many batches were recorded for any version of
// flavorCode.
func (s *Store) CountBatches(ctx context.Context, flavorCode string) (int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	return countBatches(db, models.CanonicalName(flavorCode))
}

func countBatches(db *gorm.DB, flavorCode string) (int64, error) {
	var count int64
	if err := db.Model(&models.BatchRun{}).
		Joins("JOIN formulations ON formulations.id = batch_runs.formulation_id").
		Where("formulations.code = ?", flavorCode).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count batches for %s: %w", flavorCode, err)
	}
	return count, nil
}

func (s *Store) BatchByNumber(ctx context.Context, number string) (models.BatchRun, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.BatchRun{}, err
	}

	var batch models.BatchRun
	if err := db.Preload("Lines", orderByPosition).
		Preload("Formulation").
		Where("batch_number = ?", strings.TrimSpace(number)).
		First(&batch).Error; err != nil {
		return models.BatchRun{}, wrapNotFound(err, "load batch %s", number)
	}
	return batch, nil
}

// ListBatches returns batches newest first. A non-empty flavorCode limits the
// list to that code's versions.
func (s *Store) ListBatches(ctx context.Context, flavorCode string) ([]models.BatchRun, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Preload("Formulation").Order("batch_runs.produced_at desc, batch_runs.id desc")
	if code := models.CanonicalName(flavorCode); code != "" {
		query = query.Joins("JOIN formulations ON formulations.id = batch_runs.formulation_id").
			Where("formulations.code = ?", code)
	}

	var batches []models.BatchRun
	if err := query.Find(&batches).Error; err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}
