package models

import (
	"gorm.io/gorm"
)

// SodaBase is a reusable, versioned sub-recipe that formulations reference
// by id.
type SodaBase struct {
	gorm.Model
	Code         string               `gorm:"not null;uniqueIndex:idx_soda_bases_code_version" json:"code" validate:"required,max=32"`
	VersionMajor int                  `gorm:"not null;uniqueIndex:idx_soda_bases_code_version" json:"version_major" validate:"gte=0"`
	VersionMinor int                  `gorm:"not null;uniqueIndex:idx_soda_bases_code_version" json:"version_minor" validate:"gte=0"`
	VersionPatch int                  `gorm:"not null;uniqueIndex:idx_soda_bases_code_version" json:"version_patch" validate:"gte=0"`
	Name         string               `gorm:"not null" json:"name" validate:"required"`
	YieldLiters  float64              `json:"yield_liters" validate:"gte=0"`
	Instructions string               `gorm:"type:text" json:"instructions"`
	Notes        string               `gorm:"type:text" json:"notes"`
	Compounds    []SodaBaseCompound   `gorm:"foreignKey:SodaBaseID" json:"compounds" validate:"max=50,dive"`
	Ingredients  []SodaBaseIngredient `gorm:"foreignKey:SodaBaseID" json:"ingredients" validate:"dive"`
}

type SodaBaseCompound struct {
	gorm.Model
	SodaBaseID       uint    `gorm:"not null;index" json:"soda_base_id"`
	Position         int     `gorm:"not null" json:"position"`
	CompoundName     string  `gorm:"not null;index" json:"compound_name" validate:"required"`
	ConcentrationPPM float64 `gorm:"not null" json:"concentration_ppm" validate:"gt=0"`
}

type SodaBaseIngredient struct {
	gorm.Model
	SodaBaseID   uint        `gorm:"not null;index" json:"soda_base_id"`
	Position     int         `gorm:"not null" json:"position"`
	IngredientID uint        `gorm:"not null;index" json:"ingredient_id" validate:"required"`
	Amount       float64     `gorm:"not null" json:"amount" validate:"gt=0"`
	Unit         string      `gorm:"not null" json:"unit" validate:"required"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty" validate:"-"`
}

func (b SodaBase) Version() Version {
	return Version{Major: b.VersionMajor, Minor: b.VersionMinor, Patch: b.VersionPatch}
}

func (b *SodaBase) SetVersion(v Version) {
	b.VersionMajor = v.Major
	b.VersionMinor = v.Minor
	b.VersionPatch = v.Patch
}

// NextVersion returns an unsaved deep copy of b carrying the incremented
// version.
func (b SodaBase) NextVersion(tier Tier) SodaBase {
	next := SodaBase{
		Code:         b.Code,
		Name:         b.Name,
		YieldLiters:  b.YieldLiters,
		Instructions: b.Instructions,
		Notes:        b.Notes,
	}
	next.SetVersion(b.Version().Increment(tier))

	for _, line := range b.Compounds {
		next.Compounds = append(next.Compounds, SodaBaseCompound{
			Position:         line.Position,
			CompoundName:     line.CompoundName,
			ConcentrationPPM: line.ConcentrationPPM,
		})
	}
	for _, link := range b.Ingredients {
		next.Ingredients = append(next.Ingredients, SodaBaseIngredient{
			Position:     link.Position,
			IngredientID: link.IngredientID,
			Amount:       link.Amount,
			Unit:         link.Unit,
			Ingredient:   link.Ingredient,
		})
	}
	return next
}
