// Package label renders the nutrition panel printed on a production run.
package label

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	// SolutionDensity corrects sugar mass for syrup density, in g/mL.
	SolutionDensity = 1.04

	CarbohydrateDailyValue = 275.0
	AddedSugarDailyValue   = 50.0

	caloriesPerGramSugar = 4
	panelWidth           = 40
)

var ErrInvalidInput = errors.New("label: container volume must be positive and brix non-negative")

// Input holds the nutrition-relevant facts of one product.
type Input struct {
	ProductName string
	ContainerML float64
	Brix        float64
	Sweetener   string
	Acid        string
	Flavoring   string
	BatchNumber string
}

// Facts are the derived panel values for one container.
type Facts struct {
	SugarGrams        float64
	Calories          int
	CarbohydrateGrams int
	CarbohydrateDV    int
	AddedSugarGrams   int
	AddedSugarDV      int
}

// Compute derives the panel values. Sugar mass is brix/100 * mL * 1.04 and
// all sugar is counted as added sugar.
func Compute(in Input) (Facts, error) {
	if in.ContainerML <= 0 || in.Brix < 0 {
		return Facts{}, fmt.Errorf("%w: %g mL at %g brix", ErrInvalidInput, in.ContainerML, in.Brix)
	}

	sugar := in.Brix / 100 * in.ContainerML * SolutionDensity
	grams := int(math.Round(sugar))
	return Facts{
		SugarGrams:        sugar,
		Calories:          RoundCalories(int(math.Round(sugar * caloriesPerGramSugar))),
		CarbohydrateGrams: grams,
		CarbohydrateDV:    percentDV(sugar, CarbohydrateDailyValue),
		AddedSugarGrams:   grams,
		AddedSugarDV:      percentDV(sugar, AddedSugarDailyValue),
	}, nil
}

// RoundCalories applies the label increments: nearest 5 below 50 kcal,
// nearest 10 from 50 up.
func RoundCalories(kcal int) int {
	if kcal < 50 {
		return int(math.Round(float64(kcal)/5)) * 5
	}
	return int(math.Round(float64(kcal)/10)) * 10
}

func percentDV(grams, dailyValue float64) int {
	return int(math.Round(grams / dailyValue * 100))
}

// Format renders the fixed-layout label text.
func Format(in Input) (string, error) {
	facts, err := Compute(in)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	heavy := strings.Repeat("=", panelWidth)
	light := strings.Repeat("-", panelWidth)

	if name := strings.TrimSpace(in.ProductName); name != "" {
		b.WriteString(strings.ToUpper(name) + "\n")
	}
	b.WriteString(heavy + "\n")
	b.WriteString("Nutrition Facts\n")
	b.WriteString("1 serving per container\n")
	row(&b, "Serving size", fmt.Sprintf("1 container (%s mL)", trimFloat(in.ContainerML)))
	b.WriteString(heavy + "\n")
	b.WriteString("Amount per serving\n")
	row(&b, "Calories", fmt.Sprintf("%d", facts.Calories))
	b.WriteString(light + "\n")
	row(&b, "", "% Daily Value*")
	row(&b, "Total Fat 0g", "0%")
	row(&b, "Sodium 0mg", "0%")
	row(&b, fmt.Sprintf("Total Carbohydrate %dg", facts.CarbohydrateGrams), fmt.Sprintf("%d%%", facts.CarbohydrateDV))
	row(&b, fmt.Sprintf("  Total Sugars %dg", facts.CarbohydrateGrams), "")
	row(&b, fmt.Sprintf("    Includes %dg Added Sugars", facts.AddedSugarGrams), fmt.Sprintf("%d%%", facts.AddedSugarDV))
	row(&b, "Protein 0g", "")
	b.WriteString(heavy + "\n")
	b.WriteString("* The % Daily Value (DV) tells you how\n")
	b.WriteString("much a nutrient in a serving of food\n")
	b.WriteString("contributes to a daily diet. 2,000\n")
	b.WriteString("calories a day is used for general\n")
	b.WriteString("nutrition advice.\n")
	b.WriteString(light + "\n")
	for _, line := range wrap(ingredients(in), panelWidth) {
		b.WriteString(line + "\n")
	}
	if batch := strings.TrimSpace(in.BatchNumber); batch != "" {
		b.WriteString("LOT: " + batch + "\n")
	}
	return b.String(), nil
}

func row(b *strings.Builder, left, right string) {
	pad := panelWidth - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	b.WriteString(left + strings.Repeat(" ", pad) + right)
	b.WriteString("\n")
}

func ingredients(in Input) string {
	parts := []string{"CARBONATED WATER"}
	for _, name := range []string{in.Sweetener, in.Acid} {
		if name = strings.TrimSpace(name); name != "" {
			parts = append(parts, strings.ToUpper(name))
		}
	}
	flavoring := strings.TrimSpace(in.Flavoring)
	if flavoring == "" {
		flavoring = "natural flavors"
	}
	parts = append(parts, strings.ToUpper(flavoring))
	return "INGREDIENTS: " + strings.Join(parts, ", ") + "."
}

func wrap(text string, width int) []string {
	var (
		lines   []string
		current string
	)
	for _, word := range strings.Fields(text) {
		if current != "" && len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = ""
		}
		if current == "" {
			current = word
			continue
		}
		current += " " + word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func trimFloat(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", v), "0"), ".")
}
