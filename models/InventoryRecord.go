package models

import (
	"time"

	"gorm.io/gorm"
)

// InventoryRecord tracks on-hand stock for one compound, keyed by name.
type InventoryRecord struct {
	gorm.Model
	CompoundName          string    `gorm:"uniqueIndex;not null" json:"compound_name" validate:"required"`
	StockGrams            float64   `gorm:"not null;default:0" json:"stock_grams" validate:"gte=0"`
	ReorderThresholdGrams float64   `gorm:"not null;default:0" json:"reorder_threshold_grams" validate:"gte=0"`
	LastUpdated           time.Time `json:"last_updated"`
}

func (InventoryRecord) TableName() string {
	return "compound_inventory"
}

// NeedsReorder reports whether stock has fallen to or below the threshold.
func (r InventoryRecord) NeedsReorder() bool {
	return r.ReorderThresholdGrams > 0 && r.StockGrams <= r.ReorderThresholdGrams
}
