package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML file layout. Pointers and empty strings mark
// keys the file leaves unset.
type fileConfig struct {
	Database struct {
		URL             string `yaml:"url"`
		MaxIdleConns    *int   `yaml:"max_idle_conns"`
		MaxOpenConns    *int   `yaml:"max_open_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		ConnMaxIdleTime string `yaml:"conn_max_idle_time"`
		UseMock         *bool  `yaml:"use_mock"`
	} `yaml:"database"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Production struct {
		DefaultVolumeLiters *float64 `yaml:"default_volume_liters"`
		LabelContainerML    *float64 `yaml:"label_container_ml"`
	} `yaml:"production"`
}

// LoadFile reads the YAML file at path and lays the keys it sets over base.
func LoadFile(path string, base Config) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Config{}, fmt.Errorf("unable to parse config file: %w", err)
	}

	cfg := base
	if url := strings.TrimSpace(fc.Database.URL); url != "" {
		cfg.Database.URL = url
	}
	if fc.Database.MaxIdleConns != nil {
		cfg.Database.MaxIdleConns = *fc.Database.MaxIdleConns
	}
	if fc.Database.MaxOpenConns != nil {
		cfg.Database.MaxOpenConns = *fc.Database.MaxOpenConns
	}
	cfg.Database.ConnMaxLifetime = parseDurationWithDefault(fc.Database.ConnMaxLifetime, cfg.Database.ConnMaxLifetime)
	cfg.Database.ConnMaxIdleTime = parseDurationWithDefault(fc.Database.ConnMaxIdleTime, cfg.Database.ConnMaxIdleTime)
	if fc.Database.UseMock != nil {
		cfg.Database.UseMock = *fc.Database.UseMock
	}
	if level := strings.TrimSpace(fc.Logging.Level); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	if fc.Production.DefaultVolumeLiters != nil {
		cfg.Production.DefaultVolumeLiters = *fc.Production.DefaultVolumeLiters
	}
	if fc.Production.LabelContainerML != nil {
		cfg.Production.LabelContainerML = *fc.Production.LabelContainerML
	}
	return cfg, nil
}
