// Package batch scales recipes to a production volume and prices the
// resulting lines.
package batch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"flavorlab/models"
)

// ErrInvalidVolume is returned for a non-positive target volume.
var ErrInvalidVolume = errors.New("batch: volume must be positive")

// ErrUnresolvedLink is returned when a base or ingredient link was loaded
// without its referenced row.
var ErrUnresolvedLink = errors.New("batch: link target not loaded")

// Line is one scaled quantity. Cost is null until priced and stays null when
// no per-gram cost is known.
type Line struct {
	Name  string
	Kind  models.LineKind
	Grams float64
	Cost  decimal.NullDecimal
}

// CompoundGrams converts a ppm concentration to grams for liters of product,
// treating ppm as mg/L at a density of 1 kg/L.
func CompoundGrams(ppm, liters float64) float64 {
	return ppm * liters / 1000
}

// LinkGrams scales a base or ingredient amount. Only "%" amounts depend on
// volume; any other unit is a fixed dose and is returned as stored.
func LinkGrams(amount float64, unit string, liters float64) float64 {
	if strings.TrimSpace(unit) == models.UnitPercent {
		return amount / 100 * liters
	}
	return amount
}

// ScaleFormulation lists the grams each part of f needs for liters of
// product: bases first, then ingredients, then compounds, each group in
// stored order. Base and ingredient links must be preloaded.
func ScaleFormulation(f models.Formulation, liters float64) ([]Line, error) {
	if liters <= 0 {
		return nil, fmt.Errorf("%w: %g L", ErrInvalidVolume, liters)
	}

	lines := make([]Line, 0, len(f.Bases)+len(f.Ingredients)+len(f.Compounds))
	for _, link := range f.Bases {
		if link.SodaBase == nil {
			return nil, fmt.Errorf("%w: soda base %d", ErrUnresolvedLink, link.SodaBaseID)
		}
		lines = append(lines, Line{
			Name:  link.SodaBase.Name,
			Kind:  models.LineKindBase,
			Grams: LinkGrams(link.Amount, link.Unit, liters),
		})
	}
	for _, link := range f.Ingredients {
		if link.Ingredient == nil {
			return nil, fmt.Errorf("%w: ingredient %d", ErrUnresolvedLink, link.IngredientID)
		}
		lines = append(lines, Line{
			Name:  link.Ingredient.Name,
			Kind:  models.LineKindIngredient,
			Grams: LinkGrams(link.Amount, link.Unit, liters),
		})
	}
	for _, c := range f.Compounds {
		lines = append(lines, Line{
			Name:  models.CanonicalName(c.CompoundName),
			Kind:  models.LineKindCompound,
			Grams: CompoundGrams(c.ConcentrationPPM, liters),
		})
	}
	return lines, nil
}

// ScaleSodaBase is ScaleFormulation for a base: ingredients, then compounds.
func ScaleSodaBase(b models.SodaBase, liters float64) ([]Line, error) {
	if liters <= 0 {
		return nil, fmt.Errorf("%w: %g L", ErrInvalidVolume, liters)
	}

	lines := make([]Line, 0, len(b.Ingredients)+len(b.Compounds))
	for _, link := range b.Ingredients {
		if link.Ingredient == nil {
			return nil, fmt.Errorf("%w: ingredient %d", ErrUnresolvedLink, link.IngredientID)
		}
		lines = append(lines, Line{
			Name:  link.Ingredient.Name,
			Kind:  models.LineKindIngredient,
			Grams: LinkGrams(link.Amount, link.Unit, liters),
		})
	}
	for _, c := range b.Compounds {
		lines = append(lines, Line{
			Name:  models.CanonicalName(c.CompoundName),
			Kind:  models.LineKindCompound,
			Grams: CompoundGrams(c.ConcentrationPPM, liters),
		})
	}
	return lines, nil
}

// Rows converts priced lines into unsaved batch rows.
func Rows(lines []Line) []models.BatchIngredient {
	rows := make([]models.BatchIngredient, len(lines))
	for i, line := range lines {
		rows[i] = models.BatchIngredient{
			Position:    i,
			Name:        line.Name,
			Kind:        line.Kind,
			GramsNeeded: line.Grams,
			CostLine:    line.Cost,
		}
	}
	return rows
}

// FromRows rebuilds lines from a saved batch.
func FromRows(rows []models.BatchIngredient) []Line {
	lines := make([]Line, len(rows))
	for i, row := range rows {
		lines[i] = Line{
			Name:  row.Name,
			Kind:  row.Kind,
			Grams: row.GramsNeeded,
			Cost:  row.CostLine,
		}
	}
	return lines
}
