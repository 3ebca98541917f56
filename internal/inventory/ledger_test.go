package inventory

import (
	"context"
	"math"
	"testing"
	"time"

	"flavorlab/models"
)

type memoryStock struct {
	records map[string]*models.InventoryRecord
	updates int
}

func newMemoryStock(records ...models.InventoryRecord) *memoryStock {
	m := &memoryStock{records: make(map[string]*models.InventoryRecord)}
	for i := range records {
		rec := records[i]
		rec.ID = uint(i + 1)
		m.records[rec.CompoundName] = &rec
	}
	return m
}

func (m *memoryStock) InventoryByName(_ context.Context, name string) (models.InventoryRecord, bool, error) {
	rec, ok := m.records[name]
	if !ok {
		return models.InventoryRecord{}, false, nil
	}
	return *rec, true, nil
}

func (m *memoryStock) UpdateStock(_ context.Context, id uint, grams float64, at time.Time) error {
	for _, rec := range m.records {
		if rec.ID == id {
			rec.StockGrams = grams
			rec.LastUpdated = at
			m.updates++
			return nil
		}
	}
	return nil
}

func TestCheckReportsShortfallAndUntracked(t *testing.T) {
	t.Parallel()

	stock := newMemoryStock(
		models.InventoryRecord{CompoundName: "Vanillin", StockGrams: 5},
		models.InventoryRecord{CompoundName: "Citral", StockGrams: 100},
	)
	ledger := NewLedger(stock)

	report, err := ledger.Check(context.Background(), []models.BatchIngredient{
		{Name: "Vanillin", GramsNeeded: 8},
		{Name: "Citral", GramsNeeded: 3},
		{Name: "Cane Sugar", GramsNeeded: 1000},
	})
	if err != nil {
		t.Fatalf("Check error = %v", err)
	}

	shortfalls := report.Shortfalls()
	if len(shortfalls) != 1 || shortfalls[0].Name != "Vanillin" || shortfalls[0].Deficit != 3 {
		t.Fatalf("expected Vanillin short by 3, got %+v", shortfalls)
	}
	untracked := report.Untracked()
	if len(untracked) != 1 || untracked[0] != "Cane Sugar" {
		t.Fatalf("expected Cane Sugar untracked, got %v", untracked)
	}
	if report.Sufficient() {
		t.Fatal("report with a shortfall must not be sufficient")
	}
	if stock.updates != 0 {
		t.Fatal("Check must not write")
	}
}

func TestCheckSumsRepeatedNames(t *testing.T) {
	t.Parallel()

	ledger := NewLedger(newMemoryStock(models.InventoryRecord{CompoundName: "Citral", StockGrams: 5}))
	report, err := ledger.Check(context.Background(), []models.BatchIngredient{
		{Name: "Citral", GramsNeeded: 3},
		{Name: " Citral", GramsNeeded: 4},
	})
	if err != nil {
		t.Fatalf("Check error = %v", err)
	}
	if len(report.Findings) != 1 || report.Findings[0].Deficit != 2 {
		t.Fatalf("expected one finding short by 2, got %+v", report.Findings)
	}
}

func TestCheckUntrackedIsStillSufficient(t *testing.T) {
	t.Parallel()

	report, err := NewLedger(newMemoryStock()).Check(context.Background(), []models.BatchIngredient{{Name: "Water", GramsNeeded: 1}})
	if err != nil {
		t.Fatalf("Check error = %v", err)
	}
	if !report.Sufficient() {
		t.Fatal("untracked material should not make the report insufficient")
	}
}

func TestDeductClampsAtZeroAndSkipsUntracked(t *testing.T) {
	t.Parallel()

	stamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stock := newMemoryStock(
		models.InventoryRecord{CompoundName: "Vanillin", StockGrams: 5},
		models.InventoryRecord{CompoundName: "Citral", StockGrams: 10},
	)
	ledger := NewLedger(stock).WithClock(func() time.Time { return stamp })

	err := ledger.Deduct(context.Background(), []models.BatchIngredient{
		{Name: "Vanillin", GramsNeeded: 8},
		{Name: "Citral", GramsNeeded: 2.5},
		{Name: "Ghost Note", GramsNeeded: 1},
	})
	if err != nil {
		t.Fatalf("Deduct error = %v", err)
	}

	if got := stock.records["Vanillin"].StockGrams; got != 0 {
		t.Fatalf("expected Vanillin clamped to 0, got %v", got)
	}
	if got := stock.records["Citral"].StockGrams; math.Abs(got-7.5) > 1e-9 {
		t.Fatalf("expected Citral 7.5, got %v", got)
	}
	if !stock.records["Citral"].LastUpdated.Equal(stamp) {
		t.Fatalf("expected last updated %v, got %v", stamp, stock.records["Citral"].LastUpdated)
	}
	if stock.updates != 2 {
		t.Fatalf("expected 2 updates, got %d", stock.updates)
	}
}
