package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mlenv/internal/config"
)

func TestLaunchStatus(t *testing.T) {
	assert.Equal(t, "succeeded", launchStatus(0))
	assert.Equal(t, "failed", launchStatus(1))
	assert.Equal(t, "failed", launchStatus(137))
}

func TestInitThenPlanRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, runInit(path, false))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Steps)

	// The generated example manifest must always produce a valid plan.
	assert.NoError(t, runPlan(cfg))
}

func TestHistoryCommandWithoutConfiguredLedger(t *testing.T) {
	cfg := &config.Config{}
	// Unconfigured history is a no-op, not an error.
	assert.NoError(t, runHistory(cfg, "", 10))
}
