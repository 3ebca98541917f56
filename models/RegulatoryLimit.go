package models

import (
	"time"

	"gorm.io/gorm"
)

// RegulatoryLimit is one entry in a compound's append-only override history.
// The newest entry by effective date, then by insertion order, governs.
type RegulatoryLimit struct {
	gorm.Model
	CompoundName  string    `gorm:"not null;index" json:"compound_name" validate:"required"`
	Source        string    `gorm:"not null" json:"source" validate:"required"`
	MaxUsePPM     float64   `gorm:"not null" json:"max_use_ppm" validate:"gte=0"`
	EffectiveDate time.Time `gorm:"not null;index" json:"effective_date" validate:"required"`
	Notes         string    `gorm:"type:text" json:"notes"`
}
