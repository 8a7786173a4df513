package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"INSPECT_MAX_RANGE", "INSPECT_SCORING_CUTOFF", "INSPECT_CAPTURE_WIDTH", "INSPECT_CAPTURE_HEIGHT", "INSPECT_SCENE", "INSPECT_LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 10.0, cfg.MaxRange)
	require.Equal(t, 10.0, cfg.ScoringCutoff)
	require.Equal(t, 1920, cfg.CaptureWidth)
	require.Equal(t, 1080, cfg.CaptureHeight)
	require.Equal(t, "scene.yaml", cfg.ScenePath)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_IndependentRangeAndCutoff(t *testing.T) {
	t.Setenv("INSPECT_MAX_RANGE", "25")
	t.Setenv("INSPECT_SCORING_CUTOFF", "12.5")
	t.Setenv("INSPECT_SCENE", "/tmp/bay.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 25.0, cfg.MaxRange)
	require.Equal(t, 12.5, cfg.ScoringCutoff)
	require.Equal(t, "/tmp/bay.yaml", cfg.ScenePath)
}

func TestLoad_InvalidNumbers(t *testing.T) {
	t.Setenv("INSPECT_MAX_RANGE", "far")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("INSPECT_MAX_RANGE", "")
	t.Setenv("INSPECT_CAPTURE_WIDTH", "-1")
	_, err = Load()
	require.Error(t, err)
}
