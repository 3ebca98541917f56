package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"flavorlab/internal/db/mock"
	"flavorlab/internal/store"
)

const libraryCSV = "\ufeffCompound Name,CAS Number,FEMA Number,Max Use (ppm),Recommended Range (ppm),pH Stability,Requires Solubilizer,Cost per Gram,Applications,Notes\n" +
	"Vanillin,121-33-5,3107,N/A,50-400,3 to 8,no,$0.05,cola; cream soda,  sweet   and creamy \n" +
	"Citral,5392-40-5,2303,40,2-20,,yes,,citrus|cola,\n" +
	",,,,,,,,,\n"

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.csv")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	database, err := mock.Open(context.Background())
	if err != nil {
		t.Fatalf("mock.Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return store.New(database)
}

func TestImportFileCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	path := writeCSV(t, libraryCSV)

	result, err := importFile(ctx, st, path)
	if err != nil {
		t.Fatalf("importFile returned error: %v", err)
	}
	if result.Created != 2 || result.Updated != 0 {
		t.Fatalf("unexpected first import %+v", result)
	}

	vanillin, err := st.CompoundByName(ctx, "Vanillin")
	if err != nil {
		t.Fatalf("CompoundByName: %v", err)
	}
	if vanillin.MaxUsePPM != 0 || vanillin.RecommendedMinPPM != 50 || vanillin.RecommendedMaxPPM != 400 {
		t.Fatalf("unexpected ppm fields %+v", vanillin)
	}
	if vanillin.PHStabilityMin != 3 || vanillin.PHStabilityMax != 8 {
		t.Fatalf("unexpected pH range %v-%v", vanillin.PHStabilityMin, vanillin.PHStabilityMax)
	}
	if !vanillin.CostPerGram.Valid || !vanillin.CostPerGram.Decimal.Equal(decimal.RequireFromString("0.05")) {
		t.Fatalf("unexpected cost %+v", vanillin.CostPerGram)
	}
	if vanillin.ApplicationCategories != "cola|cream soda" || vanillin.Notes != "sweet and creamy" {
		t.Fatalf("unexpected text fields %q %q", vanillin.ApplicationCategories, vanillin.Notes)
	}

	citral, err := st.CompoundByName(ctx, "Citral")
	if err != nil {
		t.Fatalf("CompoundByName: %v", err)
	}
	if citral.CostPerGram.Valid || !citral.RequiresSolubilizer || citral.MaxUsePPM != 40 {
		t.Fatalf("unexpected citral %+v", citral)
	}

	result, err = importFile(ctx, st, path)
	if err != nil {
		t.Fatalf("second import returned error: %v", err)
	}
	if result.Created != 0 || result.Updated != 2 {
		t.Fatalf("expected re-import to update, got %+v", result)
	}
}

func TestImportFileMatchesByCAS(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	if _, err := importFile(ctx, st, writeCSV(t, libraryCSV)); err != nil {
		t.Fatalf("importFile: %v", err)
	}

	renamed := "Compound Name,CAS Number,Max Use (ppm)\nGeranial/Neral,5392-40-5,35\n"
	result, err := importFile(ctx, st, writeCSV(t, renamed))
	if err != nil {
		t.Fatalf("importFile: %v", err)
	}
	if result.MatchedByCAS != 1 || result.Updated != 1 {
		t.Fatalf("expected one CAS match, got %+v", result)
	}

	citral, err := st.CompoundByName(ctx, "Citral")
	if err != nil {
		t.Fatalf("stored name should be kept: %v", err)
	}
	if citral.MaxUsePPM != 35 {
		t.Fatalf("expected updated limit, got %v", citral.MaxUsePPM)
	}
}

func TestReadCSVRejectsEmptyFile(t *testing.T) {
	if _, err := readCSV(writeCSV(t, "")); err == nil {
		t.Fatal("expected empty csv error")
	}
}

func TestParseHelpers(t *testing.T) {
	t.Parallel()

	rangeCases := []struct {
		in     string
		lo, hi float64
	}{
		{"5-20", 5, 20},
		{"5 to 20", 5, 20},
		{"12", 12, 12},
		{"20-5", 5, 20},
		{"N/A", 0, 0},
	}
	for _, tt := range rangeCases {
		lo, hi := parseRange(tt.in)
		if lo != tt.lo || hi != tt.hi {
			t.Fatalf("parseRange(%q) = %v, %v; want %v, %v", tt.in, lo, hi, tt.lo, tt.hi)
		}
	}

	if got := parseFirstNumber("1,200 ppm"); got != 1200 {
		t.Fatalf("parseFirstNumber = %v", got)
	}
	if parseCost("free").Valid || parseCost("-1").Valid || !parseCost("$1,000.50").Valid {
		t.Fatal("unexpected parseCost result")
	}
	if normalizeCAS(" unknown ") != "" || normalizeCAS("121-33-5") != "121-33-5" {
		t.Fatal("unexpected normalizeCAS result")
	}
	if !parseFlag("Yes") || parseFlag("no") {
		t.Fatal("unexpected parseFlag result")
	}
}
