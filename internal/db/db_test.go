package db

import (
	"path/filepath"
	"testing"

	"flavorlab/internal/config"
	"flavorlab/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestInitializeRequiresURL(t *testing.T) {
	t.Parallel()

	db, err := Initialize(config.DatabaseConfig{URL: ""})
	if err == nil {
		t.Fatal("expected error when database URL is empty")
	}
	if db != nil {
		t.Fatal("expected returned db handle to be nil on error")
	}
}

func TestIsPostgresURL(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"postgres://user@localhost/flavor":    true,
		"POSTGRESQL://user@localhost/flavor":  true,
		"host=localhost user=flavor":          true,
		"flavorlab.db":                        false,
		"file:memdb?mode=memory&cache=shared": false,
	}
	for url, want := range cases {
		if got := IsPostgresURL(url); got != want {
			t.Fatalf("IsPostgresURL(%q) = %t, want %t", url, got, want)
		}
	}
}

func TestAutoMigrateRejectsNilDatabase(t *testing.T) {
	t.Parallel()

	if err := AutoMigrate(nil); err == nil {
		t.Fatal("expected error when database handle is nil")
	}
}

func TestAutoMigrateWithSQLite(t *testing.T) {
	t.Parallel()

	sqliteDB, err := gorm.Open(sqlite.Open("file:dbmigrate?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}

	if err := AutoMigrate(sqliteDB); err != nil {
		t.Fatalf("automigrate sqlite database: %v", err)
	}

	for _, table := range []string{"compound_library", "compound_inventory", "formulations", "batch_runs", "regulatory_limits", "settings"} {
		if !sqliteDB.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}

func TestConfigureOpensSQLiteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "flavorlab.db")
	database, err := Configure(config.DatabaseConfig{URL: path})
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	t.Cleanup(func() { _ = Close(database) })

	if err := database.Create(&models.CompoundInfo{Name: "Vanillin"}).Error; err != nil {
		t.Fatalf("create compound: %v", err)
	}
	var count int64
	if err := database.Model(&models.CompoundInfo{}).Count(&count).Error; err != nil {
		t.Fatalf("count compounds: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 compound, got %d", count)
	}
}

func TestConfigurePropagatesInitializationError(t *testing.T) {
	t.Parallel()

	if _, err := Configure(config.DatabaseConfig{}); err == nil {
		t.Fatal("expected configuration error when initialize fails")
	}
}

func TestMustConfigurePanicsOnError(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic when configuration fails")
		}
	}()

	MustConfigure(config.DatabaseConfig{})
}
