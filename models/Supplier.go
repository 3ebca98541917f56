package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Supplier struct {
	gorm.Model
	Name    string `gorm:"uniqueIndex;not null" json:"name" validate:"required"`
	Contact string `json:"contact"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Notes   string `gorm:"type:text" json:"notes"`
}

// CompoundSupplier records that a supplier stocks a library compound. The
// compound is referenced by name.
type CompoundSupplier struct {
	gorm.Model
	SupplierID   uint            `gorm:"not null;uniqueIndex:idx_compound_suppliers_pair" json:"supplier_id" validate:"required"`
	CompoundName string          `gorm:"not null;uniqueIndex:idx_compound_suppliers_pair" json:"compound_name" validate:"required"`
	SKU          string          `json:"sku"`
	PricePerGram decimal.Decimal `gorm:"type:decimal(14,6);not null;default:0" json:"price_per_gram"`
	LeadTimeDays int             `json:"lead_time_days" validate:"gte=0"`
	Supplier     *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty" validate:"-"`
}
