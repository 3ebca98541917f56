package models

import (
	"gorm.io/gorm"
)

// MaxFormulationCompounds bounds the aroma compound list of a single recipe.
const MaxFormulationCompounds = 50

// Formulation is one saved version of a flavor recipe. A saved row is never
// updated; edits are stored as a new (code, version) row.
type Formulation struct {
	gorm.Model
	Code         string                  `gorm:"not null;uniqueIndex:idx_formulations_code_version" json:"code" validate:"required,max=32"`
	VersionMajor int                     `gorm:"not null;uniqueIndex:idx_formulations_code_version" json:"version_major" validate:"gte=0"`
	VersionMinor int                     `gorm:"not null;uniqueIndex:idx_formulations_code_version" json:"version_minor" validate:"gte=0"`
	VersionPatch int                     `gorm:"not null;uniqueIndex:idx_formulations_code_version" json:"version_patch" validate:"gte=0"`
	Name         string                  `gorm:"not null" json:"name" validate:"required"`
	TargetPH     float64                 `json:"target_ph" validate:"gte=0,lte=14"`
	TargetBrix   float64                 `json:"target_brix" validate:"gte=0,lte=100"`
	Instructions string                  `gorm:"type:text" json:"instructions"`
	Notes        string                  `gorm:"type:text" json:"notes"`
	Compounds    []FormulationCompound   `gorm:"foreignKey:FormulationID" json:"compounds" validate:"max=50,dive"`
	Bases        []FormulationBase       `gorm:"foreignKey:FormulationID" json:"bases" validate:"dive"`
	Ingredients  []FormulationIngredient `gorm:"foreignKey:FormulationID" json:"ingredients" validate:"dive"`
}

// FormulationCompound is one aroma compound line, ordered by Position.
type FormulationCompound struct {
	gorm.Model
	FormulationID    uint    `gorm:"not null;index" json:"formulation_id"`
	Position         int     `gorm:"not null" json:"position"`
	CompoundName     string  `gorm:"not null;index" json:"compound_name" validate:"required"`
	ConcentrationPPM float64 `gorm:"not null" json:"concentration_ppm" validate:"gt=0"`
}

// FormulationBase links a formulation to a soda base by id.
type FormulationBase struct {
	gorm.Model
	FormulationID uint      `gorm:"not null;index" json:"formulation_id"`
	Position      int       `gorm:"not null" json:"position"`
	SodaBaseID    uint      `gorm:"not null;index" json:"soda_base_id" validate:"required"`
	Amount        float64   `gorm:"not null" json:"amount" validate:"gt=0"`
	Unit          string    `gorm:"not null" json:"unit" validate:"required"`
	SodaBase      *SodaBase `gorm:"foreignKey:SodaBaseID" json:"soda_base,omitempty" validate:"-"`
}

// FormulationIngredient links a formulation to a catalog ingredient.
type FormulationIngredient struct {
	gorm.Model
	FormulationID uint        `gorm:"not null;index" json:"formulation_id"`
	Position      int         `gorm:"not null" json:"position"`
	IngredientID  uint        `gorm:"not null;index" json:"ingredient_id" validate:"required"`
	Amount        float64     `gorm:"not null" json:"amount" validate:"gt=0"`
	Unit          string      `gorm:"not null" json:"unit" validate:"required"`
	Ingredient    *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty" validate:"-"`
}

// Version returns the formulation's version triple.
func (f Formulation) Version() Version {
	return Version{Major: f.VersionMajor, Minor: f.VersionMinor, Patch: f.VersionPatch}
}

// SetVersion stores v into the version columns.
func (f *Formulation) SetVersion(v Version) {
	f.VersionMajor = v.Major
	f.VersionMinor = v.Minor
	f.VersionPatch = v.Patch
}

// NextVersion returns an unsaved deep copy of f carrying the incremented
// version. Row identities are cleared so the copy saves as new rows.
func (f Formulation) NextVersion(tier Tier) Formulation {
	next := f.Clone()
	next.SetVersion(f.Version().Increment(tier))
	return next
}

// Clone returns an unsaved deep copy of f.
func (f Formulation) Clone() Formulation {
	clone := Formulation{
		Code:         f.Code,
		VersionMajor: f.VersionMajor,
		VersionMinor: f.VersionMinor,
		VersionPatch: f.VersionPatch,
		Name:         f.Name,
		TargetPH:     f.TargetPH,
		TargetBrix:   f.TargetBrix,
		Instructions: f.Instructions,
		Notes:        f.Notes,
	}

	if len(f.Compounds) > 0 {
		clone.Compounds = make([]FormulationCompound, len(f.Compounds))
		for i, line := range f.Compounds {
			clone.Compounds[i] = FormulationCompound{
				Position:         line.Position,
				CompoundName:     line.CompoundName,
				ConcentrationPPM: line.ConcentrationPPM,
			}
		}
	}
	if len(f.Bases) > 0 {
		clone.Bases = make([]FormulationBase, len(f.Bases))
		for i, link := range f.Bases {
			clone.Bases[i] = FormulationBase{
				Position:   link.Position,
				SodaBaseID: link.SodaBaseID,
				Amount:     link.Amount,
				Unit:       link.Unit,
				SodaBase:   link.SodaBase,
			}
		}
	}
	if len(f.Ingredients) > 0 {
		clone.Ingredients = make([]FormulationIngredient, len(f.Ingredients))
		for i, link := range f.Ingredients {
			clone.Ingredients[i] = FormulationIngredient{
				Position:     link.Position,
				IngredientID: link.IngredientID,
				Amount:       link.Amount,
				Unit:         link.Unit,
				Ingredient:   link.Ingredient,
			}
		}
	}
	return clone
}

// SetCompound replaces the concentration of name, appending a new line when
// the compound is not yet part of the recipe.
func (f *Formulation) SetCompound(name string, ppm float64) {
	key := CanonicalName(name)
	for i := range f.Compounds {
		if CanonicalName(f.Compounds[i].CompoundName) == key {
			f.Compounds[i].ConcentrationPPM = ppm
			return
		}
	}
	f.Compounds = append(f.Compounds, FormulationCompound{
		Position:         len(f.Compounds),
		CompoundName:     key,
		ConcentrationPPM: ppm,
	})
}

// RemoveCompound drops name from the compound list and reports whether it
// was present.
func (f *Formulation) RemoveCompound(name string) bool {
	key := CanonicalName(name)
	for i := range f.Compounds {
		if CanonicalName(f.Compounds[i].CompoundName) == key {
			f.Compounds = append(f.Compounds[:i], f.Compounds[i+1:]...)
			for j := i; j < len(f.Compounds); j++ {
				f.Compounds[j].Position = j
			}
			return true
		}
	}
	return false
}
