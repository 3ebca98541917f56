package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UnitPercent marks an ingredient or base amount expressed as a percentage
// of batch volume.
const UnitPercent = "%"

// Ingredient is a general (non-aroma) catalog item such as sugar, acid or
// preservative.
type Ingredient struct {
	gorm.Model
	Name        string          `gorm:"uniqueIndex;not null" json:"name" validate:"required"`
	Category    string          `json:"category"`
	Unit        string          `gorm:"not null;default:g" json:"unit" validate:"required"`
	CostPerUnit decimal.Decimal `gorm:"type:decimal(14,6);not null;default:0" json:"cost_per_unit"`
	SupplierID  *uint           `json:"supplier_id,omitempty"`
	Supplier    *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty" validate:"-"`
	Brand       string          `json:"brand"`
	Notes       string          `gorm:"type:text" json:"notes"`
}
