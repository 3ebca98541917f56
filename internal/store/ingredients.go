package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm/clause"

	"flavorlab/models"
)

// SaveIngredient adds a catalog ingredient. Names are unique.
func (s *Store) SaveIngredient(ctx context.Context, ing *models.Ingredient) error {
	if ing == nil {
		return fmt.Errorf("%w: ingredient is nil", ErrValidation)
	}
	ing.Name = models.CanonicalName(ing.Name)
	if err := Validate(ing); err != nil {
		return err
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := db.Omit(clause.Associations).Create(ing).Error; err != nil {
		ing.ID = 0
		if isUniqueViolation(err) {
			return fmt.Errorf("ingredient %q: %w", ing.Name, ErrDuplicateName)
		}
		return fmt.Errorf("create ingredient %q: %w", ing.Name, err)
	}
	return nil
}

// UpdateIngredient rewrites the mutable catalog fields of a saved ingredient.
func (s *Store) UpdateIngredient(ctx context.Context, ing *models.Ingredient) error {
	if ing == nil || ing.ID == 0 {
		return fmt.Errorf("%w: ingredient must be saved before it is updated", ErrValidation)
	}
	ing.Name = models.CanonicalName(ing.Name)
	if err := Validate(ing); err != nil {
		return err
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	result := db.Model(&models.Ingredient{}).Where("id = ?", ing.ID).Updates(map[string]any{
		"name":          ing.Name,
		"category":      ing.Category,
		"unit":          ing.Unit,
		"cost_per_unit": ing.CostPerUnit,
		"supplier_id":   ing.SupplierID,
		"brand":         ing.Brand,
		"notes":         ing.Notes,
	})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return fmt.Errorf("ingredient %q: %w", ing.Name, ErrDuplicateName)
		}
		return fmt.Errorf("update ingredient %d: %w", ing.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update ingredient %d: %w", ing.ID, ErrNotFound)
	}
	return nil
}

func (s *Store) IngredientByID(ctx context.Context, id uint) (models.Ingredient, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.Ingredient{}, err
	}

	var ing models.Ingredient
	if err := db.Preload("Supplier").First(&ing, id).Error; err != nil {
		return models.Ingredient{}, wrapNotFound(err, "load ingredient %d", id)
	}
	return ing, nil
}

func (s *Store) IngredientByName(ctx context.Context, name string) (models.Ingredient, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.Ingredient{}, err
	}

	var ing models.Ingredient
	if err := db.Preload("Supplier").Where("name = ?", models.CanonicalName(name)).First(&ing).Error; err != nil {
		return models.Ingredient{}, wrapNotFound(err, "load ingredient %q", name)
	}
	return ing, nil
}

// ListIngredients returns the catalog ordered by name, optionally limited to
// one category.
func (s *Store) ListIngredients(ctx context.Context, category string) ([]models.Ingredient, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Order("name asc")
	if category = strings.TrimSpace(category); category != "" {
		query = query.Where("lower(category) = ?", strings.ToLower(category))
	}

	var items []models.Ingredient
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return items, nil
}

// DeleteIngredient removes a catalog ingredient. It is refused with an
// *InUseError while any formulation or soda base links to it.
func (s *Store) DeleteIngredient(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		db, err := tx.conn(ctx)
		if err != nil {
			return err
		}

		var ing models.Ingredient
		if err := db.First(&ing, id).Error; err != nil {
			return wrapNotFound(err, "load ingredient %d", id)
		}

		var fromFormulations, fromBases int64
		if err := db.Model(&models.FormulationIngredient{}).Where("ingredient_id = ?", id).Count(&fromFormulations).Error; err != nil {
			return fmt.Errorf("count formulation references: %w", err)
		}
		if err := db.Model(&models.SodaBaseIngredient{}).Where("ingredient_id = ?", id).Count(&fromBases).Error; err != nil {
			return fmt.Errorf("count soda base references: %w", err)
		}
		if refs := fromFormulations + fromBases; refs > 0 {
			return &InUseError{Entity: "ingredient", Name: ing.Name, Count: refs}
		}

		if err := db.Unscoped().Delete(&models.Ingredient{}, id).Error; err != nil {
			return fmt.Errorf("delete ingredient %d: %w", id, err)
		}
		return nil
	})
}
