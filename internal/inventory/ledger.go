// Package inventory checks compound stock against a batch and records what a
// batch consumed.
package inventory

import (
	"context"
	"fmt"
	"time"

	"flavorlab/models"
)

// Stock is the persistence the ledger reads and writes.
type Stock interface {
	InventoryByName(ctx context.Context, name string) (models.InventoryRecord, bool, error)
	UpdateStock(ctx context.Context, id uint, stockGrams float64, at time.Time) error
}

// Status classifies one material in a check.
type Status string

const (
	StatusOK        Status = "ok"
	StatusShortfall Status = "shortfall"
	StatusUntracked Status = "untracked"
)

// Finding is the check result for one material.
type Finding struct {
	Name    string
	Needed  float64
	OnHand  float64
	Deficit float64
	Status  Status
}

// Report lists findings in first-seen order of the batch lines.
type Report struct {
	Findings []Finding
}

// Shortfalls returns the findings whose stock is below the need.
func (r Report) Shortfalls() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Status == StatusShortfall {
			out = append(out, f)
		}
	}
	return out
}

// Untracked names the materials with no inventory row.
func (r Report) Untracked() []string {
	var out []string
	for _, f := range r.Findings {
		if f.Status == StatusUntracked {
			out = append(out, f.Name)
		}
	}
	return out
}

// Sufficient reports whether no tracked material is short. Untracked
// materials do not count against it.
func (r Report) Sufficient() bool {
	return len(r.Shortfalls()) == 0
}

// Ledger applies batch consumption to stock records.
type Ledger struct {
	stock Stock
	now   func() time.Time
}

func NewLedger(stock Stock) *Ledger {
	return &Ledger{
		stock: stock,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// WithClock returns a copy of l stamping updates with now.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	clone := *l
	clone.now = now
	return &clone
}

// Check compares stock against the grams each line needs without writing.
// Lines naming the same material are summed before comparison.
func (l *Ledger) Check(ctx context.Context, lines []models.BatchIngredient) (Report, error) {
	var (
		order  []string
		needed = make(map[string]float64)
	)
	for _, line := range lines {
		name := models.CanonicalName(line.Name)
		if _, seen := needed[name]; !seen {
			order = append(order, name)
		}
		needed[name] += line.GramsNeeded
	}

	report := Report{Findings: make([]Finding, 0, len(order))}
	for _, name := range order {
		finding := Finding{Name: name, Needed: needed[name]}

		record, ok, err := l.stock.InventoryByName(ctx, name)
		if err != nil {
			return Report{}, fmt.Errorf("check stock for %q: %w", name, err)
		}
		switch {
		case !ok:
			finding.Status = StatusUntracked
		case record.StockGrams < finding.Needed:
			finding.OnHand = record.StockGrams
			finding.Deficit = finding.Needed - record.StockGrams
			finding.Status = StatusShortfall
		default:
			finding.OnHand = record.StockGrams
			finding.Status = StatusOK
		}
		report.Findings = append(report.Findings, finding)
	}
	return report, nil
}

// Deduct subtracts each line from stock, never going below zero. Lines for
// untracked materials are skipped.
func (l *Ledger) Deduct(ctx context.Context, lines []models.BatchIngredient) error {
	at := l.now()
	for _, line := range lines {
		name := models.CanonicalName(line.Name)
		record, ok, err := l.stock.InventoryByName(ctx, name)
		if err != nil {
			return fmt.Errorf("deduct %q: %w", name, err)
		}
		if !ok {
			continue
		}

		remaining := record.StockGrams - line.GramsNeeded
		if remaining < 0 {
			remaining = 0
		}
		if err := l.stock.UpdateStock(ctx, record.ID, remaining, at); err != nil {
			return fmt.Errorf("deduct %q: %w", name, err)
		}
	}
	return nil
}
