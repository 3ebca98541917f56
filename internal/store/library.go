package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"flavorlab/models"
)

var gramsPerKilogram = decimal.NewFromInt(1000)

// UpsertCompound inserts a library entry or, when one with the same name
// exists, overwrites its reference fields.
func (s *Store) UpsertCompound(ctx context.Context, c *models.CompoundInfo) (created bool, err error) {
	if c == nil {
		return false, fmt.Errorf("%w: compound is nil", ErrValidation)
	}
	c.Name = models.CanonicalName(c.Name)
	if err := Validate(c); err != nil {
		return false, err
	}

	err = s.Transaction(ctx, func(tx *Store) error {
		db, err := tx.conn(ctx)
		if err != nil {
			return err
		}

		var existing models.CompoundInfo
		err = db.Where("name = ?", c.Name).First(&existing).Error
		switch {
		case notFound(err):
			if err := db.Create(c).Error; err != nil {
				return fmt.Errorf("create compound %q: %w", c.Name, err)
			}
			created = true
			return nil
		case err != nil:
			return fmt.Errorf("find compound %q: %w", c.Name, err)
		}

		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
		if err := db.Model(&existing).Select("*").Omit("id", "created_at", "deleted_at").Updates(c).Error; err != nil {
			return fmt.Errorf("update compound %q: %w", c.Name, err)
		}
		return nil
	})
	return created, err
}

// CompoundByName resolves the canonical name to its library entry.
func (s *Store) CompoundByName(ctx context.Context, name string) (models.CompoundInfo, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.CompoundInfo{}, err
	}

	var c models.CompoundInfo
	if err := db.Where("name = ?", models.CanonicalName(name)).First(&c).Error; err != nil {
		return models.CompoundInfo{}, wrapNotFound(err, "load compound %q", name)
	}
	return c, nil
}

// CompoundByCAS finds a library entry by CAS registry number.
func (s *Store) CompoundByCAS(ctx context.Context, cas string) (models.CompoundInfo, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return models.CompoundInfo{}, err
	}

	var c models.CompoundInfo
	if err := db.Where("cas_number = ?", strings.TrimSpace(cas)).First(&c).Error; err != nil {
		return models.CompoundInfo{}, wrapNotFound(err, "load compound by CAS %q", cas)
	}
	return c, nil
}

// ListCompounds returns the library ordered by name. A non-empty category
// keeps only entries carrying that application tag.
func (s *Store) ListCompounds(ctx context.Context, category string) ([]models.CompoundInfo, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Order("name asc")
	category = strings.TrimSpace(category)
	if category != "" {
		query = query.Where("lower(application_categories) LIKE ?", "%"+strings.ToLower(category)+"%")
	}

	var compounds []models.CompoundInfo
	if err := query.Find(&compounds).Error; err != nil {
		return nil, fmt.Errorf("list compounds: %w", err)
	}
	if category == "" {
		return compounds, nil
	}

	filtered := compounds[:0]
	for _, c := range compounds {
		if c.HasCategory(category) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// RenameCompound changes a library entry's name. Formulation lines, batch
// lines, inventory rows and regulatory history keep the old name and stop
// resolving against the library.
func (s *Store) RenameCompound(ctx context.Context, oldName, newName string) error {
	oldName = models.CanonicalName(oldName)
	newName = models.CanonicalName(newName)
	if newName == "" {
		return fmt.Errorf("%w: new compound name must not be empty", ErrValidation)
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	result := db.Model(&models.CompoundInfo{}).Where("name = ?", oldName).Update("name", newName)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return fmt.Errorf("rename compound to %q: %w", newName, ErrDuplicateName)
		}
		return fmt.Errorf("rename compound %q: %w", oldName, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("rename compound %q: %w", oldName, ErrNotFound)
	}
	return nil
}

// LibraryLimit returns the library's max_use_ppm for name. found is false
// when the library has no entry.
func (s *Store) LibraryLimit(ctx context.Context, name string) (ppm float64, found bool, err error) {
	c, err := s.CompoundByName(ctx, name)
	if err != nil {
		if isNotFoundErr(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return c.MaxUsePPM, true, nil
}

// CostPerGram looks up the per-gram cost for a batch line name. The compound
// library is consulted first; catalog ingredients priced per gram or per
// kilogram are used for names the library does not know. ok is false when
// no positive cost is on record.
func (s *Store) CostPerGram(ctx context.Context, name string) (cost decimal.Decimal, ok bool, err error) {
	c, err := s.CompoundByName(ctx, name)
	switch {
	case err == nil:
		if c.CostPerGram.Valid && c.CostPerGram.Decimal.IsPositive() {
			return c.CostPerGram.Decimal, true, nil
		}
		return decimal.Zero, false, nil
	case !isNotFoundErr(err):
		return decimal.Zero, false, err
	}

	ing, err := s.IngredientByName(ctx, name)
	if err != nil {
		if isNotFoundErr(err) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}
	if !ing.CostPerUnit.IsPositive() {
		return decimal.Zero, false, nil
	}
	switch strings.ToLower(strings.TrimSpace(ing.Unit)) {
	case "g":
		return ing.CostPerUnit, true, nil
	case "kg":
		return ing.CostPerUnit.Div(gramsPerKilogram), true, nil
	default:
		return decimal.Zero, false, nil
	}
}
