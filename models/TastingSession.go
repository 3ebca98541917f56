package models

import (
	"time"

	"gorm.io/gorm"
)

// TastingSession is an evaluation of one exact formulation version. Nil
// scores were not scored; OverallScore is always present.
type TastingSession struct {
	gorm.Model
	FormulationID uint      `gorm:"not null;index" json:"formulation_id" validate:"required"`
	TastedAt      time.Time `json:"tasted_at"`
	Taster        string    `json:"taster"`
	Sweetness     *int      `json:"sweetness,omitempty" validate:"omitempty,min=1,max=10"`
	Acidity       *int      `json:"acidity,omitempty" validate:"omitempty,min=1,max=10"`
	Carbonation   *int      `json:"carbonation,omitempty" validate:"omitempty,min=1,max=10"`
	Aroma         *int      `json:"aroma,omitempty" validate:"omitempty,min=1,max=10"`
	Aftertaste    *int      `json:"aftertaste,omitempty" validate:"omitempty,min=1,max=10"`
	OverallScore  int       `gorm:"not null" json:"overall_score" validate:"required,min=1,max=10"`
	Notes         string    `gorm:"type:text" json:"notes"`
}

// Score is a convenience for building optional scores.
func Score(value int) *int {
	return &value
}
