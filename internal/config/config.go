package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"ziprates/internal/rates"
)

// Config is the process configuration. Values come from environment
// variables with sane defaults; an optional YAML file (ZIPRATES_CONFIG)
// overrides the environment, mainly so the filter vocabularies can be
// edited without recompiling.
type Config struct {
	// Dataset paths. Defaults match the filenames the EIA and OpenEI
	// publish.
	URDBPath      string `yaml:"urdb_path"`
	IOUZIPPath    string `yaml:"iou_zip_path"`
	NonIOUZIPPath string `yaml:"non_iou_zip_path"`

	// DefaultMonthlyKWh is the representative consumption to price at
	// when a request does not supply one.
	DefaultMonthlyKWh float64 `yaml:"default_monthly_kwh"`

	Filter rates.FilterConfig `yaml:"filter"`

	// Storage backend for dataset snapshots and auth tables.
	DBDriver string `yaml:"db_driver"`
	DBDSN    string `yaml:"db_dsn"`

	// AutoMigrate runs goose migrations on startup of serve/worker.
	AutoMigrate bool `yaml:"auto_migrate"`

	Port string `yaml:"port"`
}

// FromEnv builds a Config from environment variables, with sane defaults,
// then applies the YAML file named by ZIPRATES_CONFIG when present.
func FromEnv() (Config, error) {
	cfg := Config{
		URDBPath:          envOr("ZIPRATES_URDB_PATH", "usurdb.csv"),
		IOUZIPPath:        envOr("ZIPRATES_IOU_ZIP_PATH", "iou_zipcodes_2024.csv"),
		NonIOUZIPPath:     envOr("ZIPRATES_NON_IOU_ZIP_PATH", "non_iou_zipcodes_2024.csv"),
		DefaultMonthlyKWh: 720,
		Filter:            rates.DefaultFilterConfig(),
		DBDriver:          os.Getenv("ZIPRATES_DB_DRIVER"),
		DBDSN:             os.Getenv("ZIPRATES_DB_DSN"),
		Port:              envOr("PORT", "8000"),
	}

	if raw := os.Getenv("ZIPRATES_DEFAULT_MONTHLY_KWH"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			return cfg, fmt.Errorf("invalid ZIPRATES_DEFAULT_MONTHLY_KWH %q", raw)
		}
		cfg.DefaultMonthlyKWh = v
	}
	if raw := os.Getenv("ZIPRATES_AUTO_MIGRATE"); raw != "" {
		cfg.AutoMigrate = raw == "1" || raw == "true" || raw == "yes"
	}

	if path := os.Getenv("ZIPRATES_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile reads a YAML config over the defaults, ignoring the environment
// except for defaults already applied.
func LoadFile(path string) (Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return cfg, err
	}
	if err := cfg.applyFile(path); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.DefaultMonthlyKWh <= 0 {
		return fmt.Errorf("default_monthly_kwh must be positive, got %v", c.DefaultMonthlyKWh)
	}
	if c.URDBPath == "" {
		return fmt.Errorf("urdb_path must not be empty")
	}
	return nil
}

// RatesConfig projects the process config into the engine's config.
func (c Config) RatesConfig() rates.Config {
	paths := []string{}
	if c.IOUZIPPath != "" {
		paths = append(paths, c.IOUZIPPath)
	}
	if c.NonIOUZIPPath != "" {
		paths = append(paths, c.NonIOUZIPPath)
	}
	return rates.Config{
		URDBPath:          c.URDBPath,
		ZIPMapPaths:       paths,
		DefaultMonthlyKWh: c.DefaultMonthlyKWh,
		Filter:            c.Filter,
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
