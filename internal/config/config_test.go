package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"all empty", []string{"", "   "}, ""},
		{"first non empty", []string{"foo", "bar"}, "foo"},
		{"skips whitespace", []string{"   ", "bar"}, "bar"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := firstNonEmpty(tt.values...); got != tt.want {
				t.Fatalf("firstNonEmpty(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

func TestParseIntWithDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		def   int
		want  int
	}{
		{"blank returns default", "", 7, 7},
		{"invalid returns default", "abc", 3, 3},
		{"valid parses value", "42", 0, 42},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseIntWithDefault(tt.value, tt.def); got != tt.want {
				t.Fatalf("parseIntWithDefault(%q, %d) = %d, want %d", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func TestParseFloatWithDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		def   float64
		want  float64
	}{
		{"blank returns default", "", 355, 355},
		{"invalid returns default", "a can", 355, 355},
		{"valid parses value", "473.2", 0, 473.2},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseFloatWithDefault(tt.value, tt.def); got != tt.want {
				t.Fatalf("parseFloatWithDefault(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func TestParseDurationWithDefault(t *testing.T) {
	t.Parallel()

	def := 5 * time.Second
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"blank returns default", "", def},
		{"invalid returns default", "nonsense", def},
		{"valid parses", "2m", 2 * time.Minute},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseDurationWithDefault(tt.value, def); got != tt.want {
				t.Fatalf("parseDurationWithDefault(%q) = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseBoolWithDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		def   bool
		want  bool
	}{
		{"blank returns default", "", true, true},
		{"invalid returns default", "nope", false, false},
		{"valid parses", "true", false, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseBoolWithDefault(tt.value, tt.def); got != tt.want {
				t.Fatalf("parseBoolWithDefault(%q, %t) = %t, want %t", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func TestLoadUsesEnvironment(t *testing.T) {
	t.Setenv("FLAVORLAB_CONFIG", "")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("DATABASE_MAX_IDLE_CONNS", "10")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "100")
	t.Setenv("DATABASE_CONN_MAX_LIFETIME", "1h")
	t.Setenv("DATABASE_CONN_MAX_IDLE_TIME", "30m")
	t.Setenv("DATABASE_USE_MOCK", "true")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("BATCH_DEFAULT_VOLUME_LITERS", "50")
	t.Setenv("LABEL_CONTAINER_ML", "473")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.URL != "postgres://example" {
		t.Fatalf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Database.MaxIdleConns != 10 {
		t.Fatalf("Database.MaxIdleConns = %d", cfg.Database.MaxIdleConns)
	}
	if cfg.Database.MaxOpenConns != 100 {
		t.Fatalf("Database.MaxOpenConns = %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.ConnMaxLifetime != time.Hour {
		t.Fatalf("Database.ConnMaxLifetime = %s", cfg.Database.ConnMaxLifetime)
	}
	if cfg.Database.ConnMaxIdleTime != 30*time.Minute {
		t.Fatalf("Database.ConnMaxIdleTime = %s", cfg.Database.ConnMaxIdleTime)
	}
	if !cfg.Database.UseMock {
		t.Fatalf("Database.UseMock = %t, want true", cfg.Database.UseMock)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Production.DefaultVolumeLiters != 50 {
		t.Fatalf("Production.DefaultVolumeLiters = %v", cfg.Production.DefaultVolumeLiters)
	}
	if cfg.Production.LabelContainerML != 473 {
		t.Fatalf("Production.LabelContainerML = %v", cfg.Production.LabelContainerML)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FLAVORLAB_CONFIG", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("BATCH_DEFAULT_VOLUME_LITERS", "")
	t.Setenv("LABEL_CONTAINER_ML", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.URL != defaultDatabaseURL {
		t.Fatalf("Database.URL = %q, want %q", cfg.Database.URL, defaultDatabaseURL)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Production.LabelContainerML != 355 {
		t.Fatalf("Production.LabelContainerML = %v", cfg.Production.LabelContainerML)
	}
}

func TestLoadRejectsNonPositiveVolume(t *testing.T) {
	t.Setenv("FLAVORLAB_CONFIG", "")
	t.Setenv("BATCH_DEFAULT_VOLUME_LITERS", "-2")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative default volume")
	}
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flavorlab.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadFileOverlaysBase(t *testing.T) {
	path := writeConfigFile(t, `
database:
  url: lab.db
  max_open_conns: 4
  conn_max_lifetime: 10m
logging:
  level: WARN
production:
  label_container_ml: 500
`)

	cfg, err := LoadFile(path, Defaults())
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Database.URL != "lab.db" || cfg.Database.MaxOpenConns != 4 {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
	if cfg.Database.ConnMaxLifetime != 10*time.Minute || cfg.Database.ConnMaxIdleTime != defaultConnIdleTime {
		t.Fatalf("unexpected durations %+v", cfg.Database)
	}
	if cfg.Database.MaxIdleConns != defaultMaxIdleConns {
		t.Fatalf("unset keys must keep the base value, got %d", cfg.Database.MaxIdleConns)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Production.LabelContainerML != 500 || cfg.Production.DefaultVolumeLiters != defaultVolumeLiters {
		t.Fatalf("unexpected production config %+v", cfg.Production)
	}
}

func TestLoadEnvironmentBeatsFile(t *testing.T) {
	t.Setenv("FLAVORLAB_CONFIG", writeConfigFile(t, "database:\n  url: from-file.db\nproduction:\n  default_volume_liters: 12\n"))
	t.Setenv("DATABASE_URL", "from-env.db")
	t.Setenv("DB_URL", "")
	t.Setenv("BATCH_DEFAULT_VOLUME_LITERS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.URL != "from-env.db" {
		t.Fatalf("Database.URL = %q, want the environment value", cfg.Database.URL)
	}
	if cfg.Production.DefaultVolumeLiters != 12 {
		t.Fatalf("Production.DefaultVolumeLiters = %v, want the file value", cfg.Production.DefaultVolumeLiters)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), Defaults()); err == nil {
		t.Fatal("expected error for a missing file")
	}
	if _, err := LoadFile(writeConfigFile(t, "database: [unclosed"), Defaults()); err == nil {
		t.Fatal("expected error for malformed yaml")
	}

	t.Setenv("FLAVORLAB_CONFIG", writeConfigFile(t, "production:\n  label_container_ml: 0\n"))
	t.Setenv("LABEL_CONTAINER_ML", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected a zero container volume from the file to be rejected")
	}
}
