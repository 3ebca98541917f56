package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Database   DatabaseConfig
	Logging    LoggingConfig
	Production ProductionConfig
}

// DatabaseConfig contains the database connection settings. URL is either a
// postgres connection string or a sqlite file path/DSN.
type DatabaseConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	UseMock         bool
}

type LoggingConfig struct {
	Level string
}

// ProductionConfig holds defaults used when planning batches and labels.
type ProductionConfig struct {
	DefaultVolumeLiters float64
	LabelContainerML    float64
}

const (
	defaultDatabaseURL  = "flavorlab.db"
	defaultVolumeLiters = 20.0
	defaultContainerML  = 355.0
	defaultMaxIdleConns = 2
	defaultMaxOpenConns = 0
	defaultConnLifetime = time.Hour
	defaultConnIdleTime = 30 * time.Minute
	defaultLoggingLevel = "info"
)

// Defaults returns the configuration used when neither a file nor the
// environment says otherwise.
func Defaults() Config {
	return Config{
		Database: DatabaseConfig{
			URL:             defaultDatabaseURL,
			MaxIdleConns:    defaultMaxIdleConns,
			MaxOpenConns:    defaultMaxOpenConns,
			ConnMaxLifetime: defaultConnLifetime,
			ConnMaxIdleTime: defaultConnIdleTime,
		},
		Logging: LoggingConfig{Level: defaultLoggingLevel},
		Production: ProductionConfig{
			DefaultVolumeLiters: defaultVolumeLiters,
			LabelContainerML:    defaultContainerML,
		},
	}
}

// Load builds a Config from the defaults, the optional YAML file named by
// FLAVORLAB_CONFIG, and the environment, in increasing precedence.
func Load() (Config, error) {
	return LoadFrom(os.Getenv("FLAVORLAB_CONFIG"))
}

// LoadFrom is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFrom(path string) (Config, error) {
	cfg := Defaults()

	if path = strings.TrimSpace(path); path != "" {
		var err error
		cfg, err = LoadFile(path, cfg)
		if err != nil {
			return Config{}, err
		}
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			cfg.Database.URL,
		),
		MaxIdleConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_IDLE_CONNS"), cfg.Database.MaxIdleConns),
		MaxOpenConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_OPEN_CONNS"), cfg.Database.MaxOpenConns),
		ConnMaxLifetime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_LIFETIME"), cfg.Database.ConnMaxLifetime),
		ConnMaxIdleTime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_IDLE_TIME"), cfg.Database.ConnMaxIdleTime),
		UseMock:         parseBoolWithDefault(os.Getenv("DATABASE_USE_MOCK"), cfg.Database.UseMock),
	}

	cfg.Logging = LoggingConfig{
		Level: strings.ToLower(firstNonEmpty(os.Getenv("LOG_LEVEL"), cfg.Logging.Level)),
	}

	cfg.Production = ProductionConfig{
		DefaultVolumeLiters: parseFloatWithDefault(os.Getenv("BATCH_DEFAULT_VOLUME_LITERS"), cfg.Production.DefaultVolumeLiters),
		LabelContainerML:    parseFloatWithDefault(os.Getenv("LABEL_CONTAINER_ML"), cfg.Production.LabelContainerML),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	if c.Production.DefaultVolumeLiters <= 0 {
		return fmt.Errorf("default batch volume must be positive")
	}
	if c.Production.LabelContainerML <= 0 {
		return fmt.Errorf("label container volume must be positive")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseFloatWithDefault(value string, def float64) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}
