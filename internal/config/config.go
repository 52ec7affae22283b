// Package config handles loading, defaulting, and validation of the MWR
// exporter TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the top-level configuration, mirroring the TOML sections.
type Config struct {
	Input   InputConfig   `toml:"input"`
	Export  ExportConfig  `toml:"export"`
	Decode  DecodeConfig  `toml:"decode"`
	Logging LoggingConfig `toml:"logging"`
}

type InputConfig struct {
	File     string `toml:"file"`
	FileType string `toml:"file_type"`
}

type ExportConfig struct {
	VMInsertURL   string `toml:"vm_insert_url"`
	Concurrency   int    `toml:"concurrency"`
	RecsPerInsert int    `toml:"recs_per_insert"`
	MetricPrefix  string `toml:"metric_prefix"`
}

// DecodeConfig holds the scale factors applied to navigation variables that
// carry no scale_factor attribute.
type DecodeConfig struct {
	GeoScaleFactor   float64 `toml:"geo_scale_factor"`
	AngleScaleFactor float64 `toml:"angle_scale_factor"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns a Config populated with defaults. Values here are used
// whenever the TOML file omits a field.
func Default() Config {
	return Config{
		Input: InputConfig{
			FileType: "aws1_mwr_l1b",
		},
		Export: ExportConfig{
			VMInsertURL:   "http://localhost:8428/write",
			Concurrency:   0,
			RecsPerInsert: 500,
			MetricPrefix:  "mwr",
		},
		Decode: DecodeConfig{
			GeoScaleFactor:   1e-4,
			AngleScaleFactor: 0.01,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the TOML file at path, layers it on top of the defaults, and
// validates the result. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("%s: %s", path, strict.String())
		}
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the constraints of every section. It is exported so that
// callers overriding fields from the command line can re-check the result.
func (cfg Config) Validate() error {
	if cfg.Input.FileType == "" {
		return errors.New("input.file_type must not be empty")
	}
	if cfg.Export.VMInsertURL == "" {
		return errors.New("export.vm_insert_url must not be empty")
	}
	if cfg.Export.Concurrency < 0 {
		return errors.New("export.concurrency must be >= 0")
	}
	if cfg.Export.RecsPerInsert < 1 {
		return errors.New("export.recs_per_insert must be >= 1")
	}
	if cfg.Export.MetricPrefix == "" {
		return errors.New("export.metric_prefix must not be empty")
	}
	if cfg.Decode.GeoScaleFactor <= 0 {
		return errors.New("decode.geo_scale_factor must be > 0")
	}
	if cfg.Decode.AngleScaleFactor <= 0 {
		return errors.New("decode.angle_scale_factor must be > 0")
	}
	if _, err := cfg.Logging.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps the configured level name onto a slog level.
func (c LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Level))); err != nil {
		return level, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}
