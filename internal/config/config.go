package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mmmsynth/internal/errors"

	"gopkg.in/yaml.v3"
)

// Defaults reproduce the fixed behavior of the bare entry point
const (
	DefaultSamples      = 52 * 3
	DefaultSeed         = 91
	DefaultStartDate    = "2021-01-04"
	DefaultKeepFraction = 0.99
	DefaultMissingMode  = "resample"
	DefaultOutputPath   = "data.csv"
	DefaultSweepRuns    = 20
	DefaultSweepWorkers = 4
)

// ConfigFileEnv names the environment variable pointing at an optional YAML overlay
const ConfigFileEnv = "MMMSYNTH_CONFIG"

// Config represents the complete application configuration
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	Output    OutputConfig    `yaml:"output"`
	Log       LogConfig       `yaml:"log"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Sweep     SweepConfig     `yaml:"sweep"`
}

// GeneratorConfig holds the synthetic dataset settings
type GeneratorConfig struct {
	Samples      int     `yaml:"samples"`
	Seed         int64   `yaml:"seed"`
	StartDate    string  `yaml:"start_date"`
	KeepFraction float64 `yaml:"keep_fraction"`
	MissingMode  string  `yaml:"missing_mode"`
}

// OutputConfig holds export settings
type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// LedgerConfig points at the run ledger database. An empty DSN disables it.
type LedgerConfig struct {
	DSN string `yaml:"dsn"`
}

// SweepConfig bounds the multi-seed stability sweep
type SweepConfig struct {
	Runs    int `yaml:"runs"`
	Workers int `yaml:"workers"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from environment variables, overlays the YAML file
// named by MMMSYNTH_CONFIG if set, and validates the result
func Load() (*Config, error) {
	config := &Config{
		Generator: *loadGeneratorConfig(),
		Output:    *loadOutputConfig(),
		Log:       LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
		Ledger:    LedgerConfig{DSN: getEnvOrDefault("LEDGER_DSN", "")},
		Sweep: SweepConfig{
			Runs:    getEnvIntOrDefault("SWEEP_RUNS", DefaultSweepRuns),
			Workers: getEnvIntOrDefault("SWEEP_WORKERS", DefaultSweepWorkers),
		},
	}

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := config.Overlay(path); err != nil {
			return nil, err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Samples:      DefaultSamples,
			Seed:         DefaultSeed,
			StartDate:    DefaultStartDate,
			KeepFraction: DefaultKeepFraction,
			MissingMode:  DefaultMissingMode,
		},
		Output: OutputConfig{Path: DefaultOutputPath},
		Log:    LogConfig{Level: "INFO"},
		Sweep:  SweepConfig{Runs: DefaultSweepRuns, Workers: DefaultSweepWorkers},
	}
}

// Fixed returns the configuration of the bare entry point. Only LOG_LEVEL is
// read; every generator, output and ledger setting keeps its default.
func Fixed() *Config {
	cfg := Default()
	cfg.Log.Level = getEnvOrDefault("LOG_LEVEL", cfg.Log.Level)
	return cfg
}

// Overlay merges the non-zero fields of a YAML file into the config
func (c *Config) Overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "read config file %s", path))
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "parse config file %s", path))
	}

	if file.Generator.Samples != 0 {
		c.Generator.Samples = file.Generator.Samples
	}
	if file.Generator.Seed != 0 {
		c.Generator.Seed = file.Generator.Seed
	}
	if file.Generator.StartDate != "" {
		c.Generator.StartDate = file.Generator.StartDate
	}
	if file.Generator.KeepFraction != 0 {
		c.Generator.KeepFraction = file.Generator.KeepFraction
	}
	if file.Generator.MissingMode != "" {
		c.Generator.MissingMode = file.Generator.MissingMode
	}
	if file.Output.Path != "" {
		c.Output.Path = file.Output.Path
	}
	if file.Output.Format != "" {
		c.Output.Format = file.Output.Format
	}
	if file.Log.Level != "" {
		c.Log.Level = file.Log.Level
	}
	if file.Ledger.DSN != "" {
		c.Ledger.DSN = file.Ledger.DSN
	}
	if file.Sweep.Runs != 0 {
		c.Sweep.Runs = file.Sweep.Runs
	}
	if file.Sweep.Workers != 0 {
		c.Sweep.Workers = file.Sweep.Workers
	}
	return nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	if c.Generator.Samples < 0 {
		return errors.ConfigInvalid("samples must be >= 0")
	}
	if c.Generator.KeepFraction <= 0 || c.Generator.KeepFraction > 1 {
		return errors.ConfigInvalid("keep_fraction must be in (0, 1]")
	}
	switch c.Generator.MissingMode {
	case "resample", "aligned":
	default:
		return errors.ConfigInvalid("missing_mode must be resample or aligned, got " + c.Generator.MissingMode)
	}
	if _, err := c.Generator.Start(); err != nil {
		return errors.ConfigInvalid("start_date must be YYYY-MM-DD, got " + c.Generator.StartDate)
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		return errors.ConfigInvalid("output path is required")
	}
	switch c.Output.ResolvedFormat() {
	case "csv", "xlsx":
	default:
		return errors.ConfigInvalid("output format must be csv or xlsx, got " + c.Output.Format)
	}
	if c.Sweep.Runs < 1 {
		return errors.ConfigInvalid("sweep runs must be >= 1")
	}
	if c.Sweep.Workers < 1 {
		return errors.ConfigInvalid("sweep workers must be >= 1")
	}
	return nil
}

// Start parses the configured start date
func (g GeneratorConfig) Start() (time.Time, error) {
	return time.ParseInLocation("2006-01-02", g.StartDate, time.UTC)
}

// ResolvedFormat returns the explicit format or infers it from the path extension
func (o OutputConfig) ResolvedFormat() string {
	if f := strings.ToLower(strings.TrimSpace(o.Format)); f != "" {
		return f
	}
	if strings.ToLower(filepath.Ext(o.Path)) == ".xlsx" {
		return "xlsx"
	}
	return "csv"
}

func loadGeneratorConfig() *GeneratorConfig {
	return &GeneratorConfig{
		Samples:      getEnvIntOrDefault("N_SAMPLES", DefaultSamples),
		Seed:         getEnvInt64OrDefault("SEED", DefaultSeed),
		StartDate:    getEnvOrDefault("START_DATE", DefaultStartDate),
		KeepFraction: getEnvFloatOrDefault("KEEP_FRACTION", DefaultKeepFraction),
		MissingMode:  strings.ToLower(getEnvOrDefault("MISSING_MODE", DefaultMissingMode)),
	}
}

func loadOutputConfig() *OutputConfig {
	return &OutputConfig{
		Path:   getEnvOrDefault("OUTPUT_PATH", DefaultOutputPath),
		Format: getEnvOrDefault("OUTPUT_FORMAT", ""),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
