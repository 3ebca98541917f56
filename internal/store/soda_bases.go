package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flavorlab/models"
)

// SaveSodaBase inserts b as a new (code, version) row with its compound and
// ingredient lines in one transaction.
func (s *Store) SaveSodaBase(ctx context.Context, b *models.SodaBase) error {
	if b == nil {
		return fmt.Errorf("%w: soda base is nil", ErrValidation)
	}
	if b.ID != 0 {
		return fmt.Errorf("soda base %s v%s is already saved; increment the version first: %w", b.Code, b.Version(), ErrDuplicateVersion)
	}
	b.Code = models.CanonicalName(b.Code)
	b.Name = models.CanonicalName(b.Name)
	for i := range b.Compounds {
		b.Compounds[i].CompoundName = models.CanonicalName(b.Compounds[i].CompoundName)
	}
	if err := Validate(b); err != nil {
		return err
	}

	err := s.Transaction(ctx, func(tx *Store) error {
		db, err := tx.conn(ctx)
		if err != nil {
			return err
		}

		var existing int64
		if err := db.Model(&models.SodaBase{}).
			Where("code = ? AND version_major = ? AND version_minor = ? AND version_patch = ?",
				b.Code, b.VersionMajor, b.VersionMinor, b.VersionPatch).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check soda base version: %w", err)
		}
		if existing > 0 {
			return fmt.Errorf("soda base %s v%s: %w", b.Code, b.Version(), ErrDuplicateVersion)
		}

		if err := db.Omit(clause.Associations).Create(b).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("soda base %s v%s: %w", b.Code, b.Version(), ErrDuplicateVersion)
			}
			return fmt.Errorf("create soda base %s: %w", b.Code, err)
		}

		for i := range b.Compounds {
			line := &b.Compounds[i]
			line.ID = 0
			line.SodaBaseID = b.ID
			line.Position = i
			if err := db.Create(line).Error; err != nil {
				return fmt.Errorf("create base compound %q: %w", line.CompoundName, err)
			}
		}

		for i := range b.Ingredients {
			link := &b.Ingredients[i]
			link.ID = 0
			link.SodaBaseID = b.ID
			link.Position = i
			if err := requireRow(db, &models.Ingredient{}, link.IngredientID, "ingredient"); err != nil {
				return err
			}
			if err := db.Omit(clause.Associations).Create(link).Error; err != nil {
				return fmt.Errorf("link base ingredient %d: %w", link.IngredientID, err)
			}
		}
		return nil
	})
	if err != nil {
		clearSodaBaseIDs(b)
		return err
	}
	return nil
}

func (s *Store) LatestSodaBase(ctx context.Context, code string) (models.SodaBase, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.SodaBase{}, err
	}

	code = models.CanonicalName(code)
	var b models.SodaBase
	err = preloadSodaBase(db).
		Where("code = ?", code).
		Order("version_major desc, version_minor desc, version_patch desc").
		First(&b).Error
	if err != nil {
		return models.SodaBase{}, wrapNotFound(err, "load latest soda base %s", code)
	}
	return b, nil
}

func (s *Store) SodaBaseVersion(ctx context.Context, code string, v models.Version) (models.SodaBase, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.SodaBase{}, err
	}

	code = models.CanonicalName(code)
	var b models.SodaBase
	err = preloadSodaBase(db).
		Where("code = ? AND version_major = ? AND version_minor = ? AND version_patch = ?", code, v.Major, v.Minor, v.Patch).
		First(&b).Error
	if err != nil {
		return models.SodaBase{}, wrapNotFound(err, "load soda base %s v%s", code, v)
	}
	return b, nil
}

func (s *Store) SodaBaseByID(ctx context.Context, id uint) (models.SodaBase, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.SodaBase{}, err
	}

	var b models.SodaBase
	if err := preloadSodaBase(db).First(&b, id).Error; err != nil {
		return models.SodaBase{}, wrapNotFound(err, "load soda base %d", id)
	}
	return b, nil
}

func (s *Store) SodaBaseHistory(ctx context.Context, code string) ([]models.SodaBase, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	code = models.CanonicalName(code)
	var history []models.SodaBase
	if err := db.Where("code = ?", code).
		Order("version_major asc, version_minor asc, version_patch asc").
		Find(&history).Error; err != nil {
		return nil, fmt.Errorf("list soda base history %s: %w", code, err)
	}
	return history, nil
}

// ListSodaBases returns the latest version of every base code.
func (s *Store) ListSodaBases(ctx context.Context) ([]models.SodaBase, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var all []models.SodaBase
	if err := db.Order("code asc, version_major desc, version_minor desc, version_patch desc").
		Find(&all).Error; err != nil {
		return nil, fmt.Errorf("list soda bases: %w", err)
	}

	latest := make([]models.SodaBase, 0, len(all))
	for _, b := range all {
		if len(latest) > 0 && latest[len(latest)-1].Code == b.Code {
			continue
		}
		latest = append(latest, b)
	}
	return latest, nil
}

// DeleteSodaBase removes one base version and its lines. It is refused with
// an *InUseError while any formulation links to the base.
func (s *Store) DeleteSodaBase(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		db, err := tx.conn(ctx)
		if err != nil {
			return err
		}

		var base models.SodaBase
		if err := db.First(&base, id).Error; err != nil {
			return wrapNotFound(err, "load soda base %d", id)
		}

		var refs int64
		if err := db.Model(&models.FormulationBase{}).Where("soda_base_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("count soda base references: %w", err)
		}
		if refs > 0 {
			return &InUseError{Entity: "soda base", Name: base.Code + " v" + base.Version().String(), Count: refs}
		}

		if err := db.Unscoped().Where("soda_base_id = ?", id).Delete(&models.SodaBaseCompound{}).Error; err != nil {
			return fmt.Errorf("delete base compounds: %w", err)
		}
		if err := db.Unscoped().Where("soda_base_id = ?", id).Delete(&models.SodaBaseIngredient{}).Error; err != nil {
			return fmt.Errorf("delete base ingredients: %w", err)
		}
		if err := db.Unscoped().Delete(&models.SodaBase{}, id).Error; err != nil {
			return fmt.Errorf("delete soda base %d: %w", id, err)
		}
		return nil
	})
}

func preloadSodaBase(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Compounds", orderByPosition).
		Preload("Ingredients", orderByPosition).
		Preload("Ingredients.Ingredient")
}

// clearSodaBaseIDs undoes identities assigned by a rolled-back insert.
func clearSodaBaseIDs(b *models.SodaBase) {
	b.ID = 0
	for i := range b.Compounds {
		b.Compounds[i].ID = 0
		b.Compounds[i].SodaBaseID = 0
	}
	for i := range b.Ingredients {
		b.Ingredients[i].ID = 0
		b.Ingredients[i].SodaBaseID = 0
	}
}
