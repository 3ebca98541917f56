package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flavorlab/models"
)

// SaveFormulation inserts f as a brand-new (code, version) row together with
// its compound, base and ingredient links in one transaction. Saving a tuple
// that already exists fails with ErrDuplicateVersion; there is no update
// path for a saved version.
func (s *Store) SaveFormulation(ctx context.Context, f *models.Formulation) error {
	if f == nil {
		return fmt.Errorf("%w: formulation is nil", ErrValidation)
	}
	if f.ID != 0 {
		return fmt.Errorf("formulation %s v%s is already saved; increment the version first: %w", f.Code, f.Version(), ErrDuplicateVersion)
	}
	normalizeFormulation(f)
	if err := Validate(f); err != nil {
		return err
	}

	err := s.Transaction(ctx, func(tx *Store) error {
		db, err := tx.conn(ctx)
		if err != nil {
			return err
		}

		var existing int64
		if err := db.Model(&models.Formulation{}).
			Where("code = ? AND version_major = ? AND version_minor = ? AND version_patch = ?",
				f.Code, f.VersionMajor, f.VersionMinor, f.VersionPatch).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check formulation version: %w", err)
		}
		if existing > 0 {
			return fmt.Errorf("formulation %s v%s: %w", f.Code, f.Version(), ErrDuplicateVersion)
		}

		if err := db.Omit(clause.Associations).Create(f).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("formulation %s v%s: %w", f.Code, f.Version(), ErrDuplicateVersion)
			}
			return fmt.Errorf("create formulation %s: %w", f.Code, err)
		}

		for i := range f.Compounds {
			line := &f.Compounds[i]
			line.ID = 0
			line.FormulationID = f.ID
			line.Position = i
			if err := db.Create(line).Error; err != nil {
				return fmt.Errorf("create compound line %q: %w", line.CompoundName, err)
			}
		}

		for i := range f.Bases {
			link := &f.Bases[i]
			link.ID = 0
			link.FormulationID = f.ID
			link.Position = i
			if err := requireRow(db, &models.SodaBase{}, link.SodaBaseID, "soda base"); err != nil {
				return err
			}
			if err := db.Omit(clause.Associations).Create(link).Error; err != nil {
				return fmt.Errorf("link soda base %d: %w", link.SodaBaseID, err)
			}
		}

		for i := range f.Ingredients {
			link := &f.Ingredients[i]
			link.ID = 0
			link.FormulationID = f.ID
			link.Position = i
			if err := requireRow(db, &models.Ingredient{}, link.IngredientID, "ingredient"); err != nil {
				return err
			}
			if err := db.Omit(clause.Associations).Create(link).Error; err != nil {
				return fmt.Errorf("link ingredient %d: %w", link.IngredientID, err)
			}
		}

		return nil
	})
	if err != nil {
		clearFormulationIDs(f)
		return err
	}
	return nil
}

// LatestFormulation loads the highest version saved under code.
func (s *Store) LatestFormulation(ctx context.Context, code string) (models.Formulation, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.Formulation{}, err
	}

	code = models.CanonicalName(code)
	var f models.Formulation
	err = preloadFormulation(db).
		Where("code = ?", code).
		Order("version_major desc, version_minor desc, version_patch desc").
		First(&f).Error
	if err != nil {
		return models.Formulation{}, wrapNotFound(err, "load latest formulation %s", code)
	}
	return f, nil
}

// FormulationVersion loads one exact version.
func (s *Store) FormulationVersion(ctx context.Context, code string, v models.Version) (models.Formulation, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.Formulation{}, err
	}

	code = models.CanonicalName(code)
	var f models.Formulation
	err = preloadFormulation(db).
		Where("code = ? AND version_major = ? AND version_minor = ? AND version_patch = ?", code, v.Major, v.Minor, v.Patch).
		First(&f).Error
	if err != nil {
		return models.Formulation{}, wrapNotFound(err, "load formulation %s v%s", code, v)
	}
	return f, nil
}

func (s *Store) FormulationByID(ctx context.Context, id uint) (models.Formulation, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.Formulation{}, err
	}

	var f models.Formulation
	if err := preloadFormulation(db).First(&f, id).Error; err != nil {
		return models.Formulation{}, wrapNotFound(err, "load formulation %d", id)
	}
	return f, nil
}

// FormulationHistory lists every saved version of code, oldest first,
// without child rows.
func (s *Store) FormulationHistory(ctx context.Context, code string) ([]models.Formulation, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	code = models.CanonicalName(code)
	var history []models.Formulation
	if err := db.Where("code = ?", code).
		Order("version_major asc, version_minor asc, version_patch asc").
		Find(&history).Error; err != nil {
		return nil, fmt.Errorf("list formulation history %s: %w", code, err)
	}
	return history, nil
}

// ListFormulations returns the latest version of every code, ordered by code.
func (s *Store) ListFormulations(ctx context.Context) ([]models.Formulation, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var all []models.Formulation
	if err := db.Order("code asc, version_major desc, version_minor desc, version_patch desc").
		Find(&all).Error; err != nil {
		return nil, fmt.Errorf("list formulations: %w", err)
	}

	latest := make([]models.Formulation, 0, len(all))
	for _, f := range all {
		if len(latest) > 0 && latest[len(latest)-1].Code == f.Code {
			continue
		}
		latest = append(latest, f)
	}
	return latest, nil
}

// DetachFormulationIngredient removes the link rows between a formulation
// and an ingredient. It exists so a catalog ingredient can be retired; the
// formulation's other rows are untouched.
func (s *Store) DetachFormulationIngredient(ctx context.Context, formulationID, ingredientID uint) (int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	result := db.Unscoped().
		Where("formulation_id = ? AND ingredient_id = ?", formulationID, ingredientID).
		Delete(&models.FormulationIngredient{})
	if result.Error != nil {
		return 0, fmt.Errorf("detach ingredient %d from formulation %d: %w", ingredientID, formulationID, result.Error)
	}
	return result.RowsAffected, nil
}

func preloadFormulation(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Compounds", orderByPosition).
		Preload("Bases", orderByPosition).
		Preload("Bases.SodaBase").
		Preload("Ingredients", orderByPosition).
		Preload("Ingredients.Ingredient")
}

func normalizeFormulation(f *models.Formulation) {
	f.Code = models.CanonicalName(f.Code)
	f.Name = models.CanonicalName(f.Name)
	for i := range f.Compounds {
		f.Compounds[i].CompoundName = models.CanonicalName(f.Compounds[i].CompoundName)
	}
}

// clearFormulationIDs undoes identities assigned by a rolled-back insert so
// the value can be corrected and saved again.
func clearFormulationIDs(f *models.Formulation) {
	f.ID = 0
	for i := range f.Compounds {
		f.Compounds[i].ID = 0
		f.Compounds[i].FormulationID = 0
	}
	for i := range f.Bases {
		f.Bases[i].ID = 0
		f.Bases[i].FormulationID = 0
	}
	for i := range f.Ingredients {
		f.Ingredients[i].ID = 0
		f.Ingredients[i].FormulationID = 0
	}
}

func requireRow(db *gorm.DB, model any, id uint, entity string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("look up %s %d: %w", entity, id, err)
	}
	if count == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
	}
	return nil
}
