package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LineKind tags where a batch line came from.
type LineKind string

const (
	LineKindBase       LineKind = "base"
	LineKindIngredient LineKind = "ingredient"
	LineKindCompound   LineKind = "compound"
)

// BatchRun is one production run of an exact formulation version. A null
// CostTotal means at least one line had no known cost.
type BatchRun struct {
	gorm.Model
	BatchNumber   string              `gorm:"uniqueIndex;not null" json:"batch_number"`
	FormulationID uint                `gorm:"not null;index" json:"formulation_id"`
	VolumeLiters  float64             `gorm:"not null" json:"volume_liters" validate:"gt=0"`
	CostTotal     decimal.NullDecimal `gorm:"type:decimal(14,6)" json:"cost_total"`
	ProducedAt    time.Time           `json:"produced_at"`
	Notes         string              `gorm:"type:text" json:"notes"`
	Lines         []BatchIngredient   `gorm:"foreignKey:BatchRunID" json:"lines" validate:"dive"`
	Formulation   *Formulation        `gorm:"foreignKey:FormulationID" json:"formulation,omitempty" validate:"-"`
}

// BatchIngredient is one scaled line of a batch. A null CostLine means the
// cost is unknown, not zero.
type BatchIngredient struct {
	gorm.Model
	BatchRunID  uint                `gorm:"not null;index" json:"batch_run_id"`
	Position    int                 `gorm:"not null" json:"position"`
	Name        string              `gorm:"not null" json:"name" validate:"required"`
	Kind        LineKind            `gorm:"type:varchar(16);not null" json:"kind"`
	GramsNeeded float64             `gorm:"not null" json:"grams_needed" validate:"gte=0"`
	CostLine    decimal.NullDecimal `gorm:"type:decimal(14,6)" json:"cost_line"`
}
