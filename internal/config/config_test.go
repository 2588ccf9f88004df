package config

import (
	"os"
	"path/filepath"
	"testing"

	"mmmsynth/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"N_SAMPLES", "SEED", "START_DATE", "KEEP_FRACTION", "MISSING_MODE",
		"OUTPUT_PATH", "OUTPUT_FORMAT", "LOG_LEVEL", "LEDGER_DSN",
		"SWEEP_RUNS", "SWEEP_WORKERS", ConfigFileEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsMatchFixedBehavior(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 156, cfg.Generator.Samples)
	assert.Equal(t, int64(91), cfg.Generator.Seed)
	assert.Equal(t, "data.csv", cfg.Output.Path)
	assert.Equal(t, "csv", cfg.Output.ResolvedFormat())
}

func TestFixedIgnoresGeneratorEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEED", "1")
	t.Setenv("N_SAMPLES", "6")
	t.Setenv("OUTPUT_PATH", "elsewhere.xlsx")
	t.Setenv("MISSING_MODE", "aligned")
	t.Setenv("LEDGER_DSN", "runs.db")
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := Fixed()
	require.NoError(t, cfg.Validate())

	want := Default()
	want.Log.Level = "DEBUG"
	assert.Equal(t, want, cfg)
	assert.Equal(t, int64(91), cfg.Generator.Seed)
	assert.Equal(t, 156, cfg.Generator.Samples)
	assert.Empty(t, cfg.Ledger.DSN)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("N_SAMPLES", "6")
	t.Setenv("SEED", "7")
	t.Setenv("MISSING_MODE", "ALIGNED")
	t.Setenv("OUTPUT_PATH", "out/weekly.xlsx")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Generator.Samples)
	assert.Equal(t, int64(7), cfg.Generator.Seed)
	assert.Equal(t, "aligned", cfg.Generator.MissingMode)
	assert.Equal(t, "xlsx", cfg.Output.ResolvedFormat())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"negative samples", "N_SAMPLES", "-1"},
		{"keep fraction above one", "KEEP_FRACTION", "1.5"},
		{"unknown missing mode", "MISSING_MODE", "drop"},
		{"bad start date", "START_DATE", "04/01/2021"},
		{"unknown format", "OUTPUT_FORMAT", "parquet"},
		{"no sweep workers", "SWEEP_WORKERS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestOverlayFromYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "mmmsynth.yaml")
	body := []byte("generator:\n  samples: 52\n  missing_mode: aligned\noutput:\n  path: weekly.csv\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 52, cfg.Generator.Samples)
	assert.Equal(t, "aligned", cfg.Generator.MissingMode)
	assert.Equal(t, "weekly.csv", cfg.Output.Path)
	// untouched fields keep their defaults
	assert.Equal(t, int64(DefaultSeed), cfg.Generator.Seed)
}

func TestOverlayBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generator: [unclosed"), 0o644))

	err := Default().Overlay(path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLedgerAndSweepSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEDGER_DSN", "sqlite://runs.db")
	t.Setenv("SWEEP_RUNS", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite://runs.db", cfg.Ledger.DSN)
	assert.Equal(t, 8, cfg.Sweep.Runs)
	assert.Equal(t, DefaultSweepWorkers, cfg.Sweep.Workers)

	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sweep:\n  workers: 2\nledger:\n  dsn: postgres://localhost/mmm\n"), 0o644))
	require.NoError(t, cfg.Overlay(path))
	assert.Equal(t, 2, cfg.Sweep.Workers)
	assert.Equal(t, "postgres://localhost/mmm", cfg.Ledger.DSN)
}
