package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"flavorlab/models"
)

func TestLatestOverrideOrdering(t *testing.T) {
	t.Parallel()

	s := emptyStore(t)
	ctx := context.Background()

	if _, ok, err := s.LatestOverride(ctx, "Citral"); err != nil || ok {
		t.Fatalf("expected no override yet, got ok=%v err=%v", ok, err)
	}

	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.RegulatoryLimit{
		{CompoundName: "Citral", Source: "newest by date", MaxUsePPM: 25, EffectiveDate: jun},
		{CompoundName: "Citral", Source: "older, inserted later", MaxUsePPM: 60, EffectiveDate: jan},
		{CompoundName: "Citral", Source: "same date, inserted last", MaxUsePPM: 20, EffectiveDate: jun},
	}
	for i := range rows {
		if err := s.AddRegulatoryLimit(ctx, &rows[i]); err != nil {
			t.Fatalf("AddRegulatoryLimit: %v", err)
		}
	}

	latest, ok, err := s.LatestOverride(ctx, " Citral ")
	if err != nil || !ok {
		t.Fatalf("LatestOverride = %v, %v", ok, err)
	}
	if latest.MaxUsePPM != 20 {
		t.Fatalf("expected the last insert on the newest date, got %+v", latest)
	}

	history, err := s.RegulatoryHistory(ctx, "Citral")
	if err != nil || len(history) != 3 {
		t.Fatalf("RegulatoryHistory = %d, %v", len(history), err)
	}
	if history[2].Source != "older, inserted later" {
		t.Fatalf("expected the January entry last, got %q", history[2].Source)
	}

	if err := s.AddRegulatoryLimit(ctx, &models.RegulatoryLimit{CompoundName: "Citral", MaxUsePPM: 5}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected missing source and date to fail, got %v", err)
	}
}

func TestLatestOverrideComparesInstants(t *testing.T) {
	t.Parallel()

	s := emptyStore(t)
	ctx := context.Background()

	plusFive := time.FixedZone("UTC+5", 5*60*60)
	fda := &models.RegulatoryLimit{CompoundName: "Citral", Source: "FDA", MaxUsePPM: 20,
		EffectiveDate: time.Date(2025, 1, 1, 6, 0, 0, 0, time.UTC)}
	// 05:00Z, an hour before the FDA entry, though its wall clock reads later.
	eu := &models.RegulatoryLimit{CompoundName: "Citral", Source: "EU", MaxUsePPM: 10,
		EffectiveDate: time.Date(2025, 1, 1, 10, 0, 0, 0, plusFive)}
	for _, limit := range []*models.RegulatoryLimit{fda, eu} {
		if err := s.AddRegulatoryLimit(ctx, limit); err != nil {
			t.Fatalf("AddRegulatoryLimit(%s): %v", limit.Source, err)
		}
	}
	if eu.EffectiveDate.Location() != time.UTC {
		t.Fatalf("effective date stored in %s, want UTC", eu.EffectiveDate.Location())
	}

	latest, ok, err := s.LatestOverride(ctx, "Citral")
	if err != nil || !ok {
		t.Fatalf("LatestOverride = %v, %v", ok, err)
	}
	if latest.Source != "FDA" || latest.MaxUsePPM != 20 {
		t.Fatalf("expected FDA at 20 ppm, got %s at %v", latest.Source, latest.MaxUsePPM)
	}

	history, err := s.RegulatoryHistory(ctx, "Citral")
	if err != nil || len(history) != 2 {
		t.Fatalf("RegulatoryHistory = %d, %v", len(history), err)
	}
	if history[0].Source != "FDA" || history[1].Source != "EU" {
		t.Fatalf("history order = %s, %s; want FDA, EU", history[0].Source, history[1].Source)
	}
	if !history[1].EffectiveDate.Equal(time.Date(2025, 1, 1, 5, 0, 0, 0, time.UTC)) {
		t.Fatalf("EU effective date = %s", history[1].EffectiveDate)
	}
}

func TestLibraryLimit(t *testing.T) {
	t.Parallel()

	s := seededStore(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		ppm   float64
		found bool
	}{
		{"Citral", 40, true},
		{"Vanillin", 0, true},
		{"Unobtainium", 0, false},
	}
	for _, tt := range cases {
		ppm, found, err := s.LibraryLimit(ctx, tt.name)
		if err != nil || ppm != tt.ppm || found != tt.found {
			t.Fatalf("LibraryLimit(%q) = %v, %v, %v", tt.name, ppm, found, err)
		}
	}
}

func TestInventoryRecords(t *testing.T) {
	t.Parallel()

	s := seededStore(t)
	ctx := context.Background()

	rec, err := s.SetInventory(ctx, "Ethyl Butyrate", 40, 50)
	if err != nil {
		t.Fatalf("SetInventory: %v", err)
	}
	if !rec.NeedsReorder() || !rec.LastUpdated.Equal(testNow) {
		t.Fatalf("unexpected record %+v", rec)
	}

	rec, err = s.SetInventory(ctx, "Ethyl Butyrate", 400, 50)
	if err != nil {
		t.Fatalf("SetInventory replace: %v", err)
	}
	if rec.StockGrams != 400 || count(t, s, &models.InventoryRecord{}) != 5 {
		t.Fatalf("expected replacement rather than a new row, got %+v", rec)
	}

	if _, err := s.SetInventory(ctx, "Citral", -1, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected negative stock to fail validation, got %v", err)
	}

	stamp := testNow.Add(time.Hour)
	if err := s.UpdateStock(ctx, rec.ID, 12.5, stamp); err != nil {
		t.Fatalf("UpdateStock: %v", err)
	}
	if err := s.UpdateStock(ctx, 9999, 1, stamp); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	low, err := s.LowStock(ctx)
	if err != nil {
		t.Fatalf("LowStock: %v", err)
	}
	names := map[string]bool{}
	for _, r := range low {
		names[r.CompoundName] = true
	}
	if len(low) != 3 || !names["Citral"] || !names["Cinnamaldehyde"] || !names["Ethyl Butyrate"] {
		t.Fatalf("unexpected low stock %v", names)
	}

	if _, ok, err := s.InventoryByName(ctx, "Cane Sugar"); err != nil || ok {
		t.Fatalf("expected untracked, got ok=%v err=%v", ok, err)
	}
}

func TestTastingSessions(t *testing.T) {
	t.Parallel()

	s := seededStore(t)
	ctx := context.Background()

	cola, err := s.LatestFormulation(ctx, "COLA-1")
	if err != nil {
		t.Fatalf("LatestFormulation: %v", err)
	}

	partial := &models.TastingSession{FormulationID: cola.ID, Taster: "Quinn", Sweetness: models.Score(7), OverallScore: 8}
	if err := s.SaveTasting(ctx, partial); err != nil {
		t.Fatalf("SaveTasting: %v", err)
	}
	full := &models.TastingSession{
		FormulationID: cola.ID,
		Sweetness:     models.Score(6),
		Acidity:       models.Score(5),
		Carbonation:   models.Score(9),
		Aroma:         models.Score(7),
		Aftertaste:    models.Score(4),
		OverallScore:  6,
	}
	if err := s.SaveTasting(ctx, full); err != nil {
		t.Fatalf("SaveTasting: %v", err)
	}

	if err := s.SaveTasting(ctx, &models.TastingSession{FormulationID: cola.ID}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected missing overall score to fail, got %v", err)
	}
	if err := s.SaveTasting(ctx, &models.TastingSession{FormulationID: cola.ID, OverallScore: 5, Aroma: models.Score(11)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected out-of-range score to fail, got %v", err)
	}
	if err := s.SaveTasting(ctx, &models.TastingSession{FormulationID: 9999, OverallScore: 5}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected unknown formulation to fail, got %v", err)
	}

	sessions, err := s.ListTastings(ctx, cola.ID)
	if err != nil || len(sessions) != 2 {
		t.Fatalf("ListTastings = %d, %v", len(sessions), err)
	}
	for _, session := range sessions {
		if session.Taster == "Quinn" && (session.Acidity != nil || *session.Sweetness != 7) {
			t.Fatalf("unscored fields must stay nil, got %+v", session)
		}
	}

	avg, n, err := s.AverageOverall(ctx, cola.ID)
	if err != nil || n != 2 || avg != 7 {
		t.Fatalf("AverageOverall = %v, %d, %v", avg, n, err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	t.Parallel()

	s := seededStore(t)
	ctx := context.Background()

	type labelDefaults struct {
		ContainerML float64 `json:"container_ml"`
		Sweetener   string  `json:"sweetener"`
	}

	var missing labelDefaults
	if ok, err := s.GetSetting(ctx, "label.defaults", &missing); err != nil || ok {
		t.Fatalf("expected unset key, got ok=%v err=%v", ok, err)
	}

	if err := s.PutSetting(ctx, "label.defaults", labelDefaults{ContainerML: 355, Sweetener: "Cane Sugar"}); err != nil {
		t.Fatalf("PutSetting: %v", err)
	}
	if err := s.PutSetting(ctx, "label.defaults", labelDefaults{ContainerML: 500, Sweetener: "Cane Sugar"}); err != nil {
		t.Fatalf("PutSetting overwrite: %v", err)
	}

	var got labelDefaults
	if ok, err := s.GetSetting(ctx, "label.defaults", &got); err != nil || !ok {
		t.Fatalf("GetSetting = %v, %v", ok, err)
	}
	if got.ContainerML != 500 || got.Sweetener != "Cane Sugar" {
		t.Fatalf("unexpected setting %+v", got)
	}

	var lab string
	if ok, err := s.GetSetting(ctx, "lab.name", &lab); err != nil || !ok || lab != "Pilot Kitchen" {
		t.Fatalf("expected seeded lab name, got %q ok=%v err=%v", lab, ok, err)
	}

	if err := s.PutSetting(ctx, " ", 1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected empty key to fail, got %v", err)
	}
}
