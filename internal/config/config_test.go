package config

import (
	"testing"

	"gobenford/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"LOG_LEVEL", "BENFORD_POSITION", "BENFORD_ZERO_POLICY", "BENFORD_SIGNIFICANCE",
	"BENFORD_NORMALIZE", "REPORT_FORMAT", "DATABASE_DRIVER", "DATABASE_URL",
	"PORT", "GIN_MODE", "BATCH_CONCURRENCY",
}

// clearEnv pins every config key to its default for the duration of the test.
// An empty DATABASE_URL disables the run store.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
	t.Setenv("BENFORD_POSITION", "first")
	t.Setenv("REPORT_FORMAT", "text")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("PORT", "8080")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("LOG_LEVEL", "INFO")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "first", cfg.Analysis.Position)
	assert.Equal(t, "", cfg.Analysis.ZeroPolicy)
	assert.Equal(t, 0.05, cfg.Analysis.Significance)
	assert.False(t, cfg.Analysis.Normalize)
	assert.Equal(t, "text", cfg.Report.Format)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.False(t, cfg.StoreEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BENFORD_POSITION", "Both")
	t.Setenv("BENFORD_ZERO_POLICY", "exclude")
	t.Setenv("BENFORD_SIGNIFICANCE", "0.01")
	t.Setenv("BENFORD_NORMALIZE", "true")
	t.Setenv("REPORT_FORMAT", "markdown")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/benford?sslmode=disable")
	t.Setenv("BATCH_CONCURRENCY", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "both", cfg.Analysis.Position)
	assert.Equal(t, "exclude", cfg.Analysis.ZeroPolicy)
	assert.Equal(t, 0.01, cfg.Analysis.Significance)
	assert.True(t, cfg.Analysis.Normalize)
	assert.Equal(t, "markdown", cfg.Report.Format)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.StoreEnabled())
	assert.Equal(t, 8, cfg.Batch.Concurrency)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"BENFORD_POSITION", "third"},
		{"BENFORD_ZERO_POLICY", "sometimes"},
		{"BENFORD_SIGNIFICANCE", "1.5"},
		{"REPORT_FORMAT", "pdf"},
		{"DATABASE_DRIVER", "oracle"},
		{"PORT", "http"},
		{"BATCH_CONCURRENCY", "0"},
		{"LOG_LEVEL", "LOUD"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
			assert.Contains(t, err.Error(), "configuration validation failed")
		})
	}
}
