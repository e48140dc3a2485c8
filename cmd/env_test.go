package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvConfig_Defaults(t *testing.T) {
	cfg, err := LoadEnvConfig(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, &EnvConfig{LogLevel: "warn", OutputDir: ".", Workers: 1}, cfg)
}

func TestLoadEnvConfig_PrefixedVariables(t *testing.T) {
	cfg, err := LoadEnvConfig(map[string]string{
		"COHORTSIM_LOG_LEVEL":  "debug",
		"COHORTSIM_OUTPUT_DIR": "/tmp/out",
		"COHORTSIM_DB":         "runs.db",
		"COHORTSIM_WORKERS":    "8",
		"WORKERS":              "3",
	})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, "runs.db", cfg.DB)
	assert.Equal(t, 8, cfg.Workers)
}

func TestLoadEnvConfig_BadInteger(t *testing.T) {
	_, err := LoadEnvConfig(map[string]string{"COHORTSIM_WORKERS": "many"})
	assert.ErrorContains(t, err, `"Workers"`)
}
