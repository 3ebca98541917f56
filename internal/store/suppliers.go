package store

import (
	"context"
	"fmt"

	"flavorlab/models"
)

func (s *Store) SaveSupplier(ctx context.Context, sup *models.Supplier) error {
	if sup == nil {
		return fmt.Errorf("%w: supplier is nil", ErrValidation)
	}
	sup.Name = models.CanonicalName(sup.Name)
	if err := Validate(sup); err != nil {
		return err
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := db.Create(sup).Error; err != nil {
		sup.ID = 0
		if isUniqueViolation(err) {
			return fmt.Errorf("supplier %q: %w", sup.Name, ErrDuplicateName)
		}
		return fmt.Errorf("create supplier %q: %w", sup.Name, err)
	}
	return nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var suppliers []models.Supplier
	if err := db.Order("name asc").Find(&suppliers).Error; err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

// LinkCompoundSupplier records that a supplier sells a library compound.
// Each (supplier, compound) pair may be linked once.
func (s *Store) LinkCompoundSupplier(ctx context.Context, link *models.CompoundSupplier) error {
	if link == nil {
		return fmt.Errorf("%w: compound supplier is nil", ErrValidation)
	}
	link.CompoundName = models.CanonicalName(link.CompoundName)
	if err := Validate(link); err != nil {
		return err
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := requireRow(db, &models.Supplier{}, link.SupplierID, "supplier"); err != nil {
		return err
	}
	if err := db.Omit("Supplier").Create(link).Error; err != nil {
		link.ID = 0
		if isUniqueViolation(err) {
			return fmt.Errorf("supplier %d already linked to %q: %w", link.SupplierID, link.CompoundName, ErrDuplicateName)
		}
		return fmt.Errorf("link supplier %d to %q: %w", link.SupplierID, link.CompoundName, err)
	}
	return nil
}

// SuppliersForCompound lists supplier links for a compound, cheapest first.
func (s *Store) SuppliersForCompound(ctx context.Context, compoundName string) ([]models.CompoundSupplier, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var links []models.CompoundSupplier
	if err := db.Preload("Supplier").
		Where("compound_name = ?", models.CanonicalName(compoundName)).
		Order("price_per_gram asc, id asc").
		Find(&links).Error; err != nil {
		return nil, fmt.Errorf("list suppliers for %q: %w", compoundName, err)
	}
	return links, nil
}

// DeleteSupplier is refused while ingredients or compound links still point
// at the supplier.
func (s *Store) DeleteSupplier(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		db, err := tx.conn(ctx)
		if err != nil {
			return err
		}

		var sup models.Supplier
		if err := db.First(&sup, id).Error; err != nil {
			return wrapNotFound(err, "load supplier %d", id)
		}

		var ingredients, links int64
		if err := db.Model(&models.Ingredient{}).Where("supplier_id = ?", id).Count(&ingredients).Error; err != nil {
			return fmt.Errorf("count ingredient references: %w", err)
		}
		if err := db.Model(&models.CompoundSupplier{}).Where("supplier_id = ?", id).Count(&links).Error; err != nil {
			return fmt.Errorf("count compound links: %w", err)
		}
		if refs := ingredients + links; refs > 0 {
			return &InUseError{Entity: "supplier", Name: sup.Name, Count: refs}
		}

		if err := db.Unscoped().Delete(&models.Supplier{}, id).Error; err != nil {
			return fmt.Errorf("delete supplier %d: %w", id, err)
		}
		return nil
	})
}
