package sched

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenPathEmpty(t *testing.T) {
	cfg := Load("")
	assert.Equal(t, PolicyRoundRobin, cfg.Policy)
	assert.Equal(t, int64(5), cfg.Timeslice)
	assert.Equal(t, int64(2), cfg.MinRemaining)
	assert.Equal(t, int64(20), cfg.TargetLatency)
	assert.Equal(t, int64(2), cfg.MinGranularity)
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Equal(t, PolicyRoundRobin, cfg.Policy)
}

func TestLoadOverridesAndClamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sched.yml")
	data := "policy: cfs\ntimeslice: -3\ntarget_latency: 40\nmin_granularity: 4\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg := Load(path)
	assert.Equal(t, PolicyFair, cfg.Policy)
	assert.Equal(t, int64(5), cfg.Timeslice, "non-positive timeslice falls back")
	assert.Equal(t, int64(40), cfg.TargetLatency)
	assert.Equal(t, int64(4), cfg.MinGranularity)
}

func TestNewSelectsPolicy(t *testing.T) {
	s, err := New(Config{Policy: PolicyRoundRobin, Timeslice: 5})
	require.NoError(t, err)
	assert.IsType(t, &RoundRobin{}, s)

	s, err = New(Config{Policy: PolicyPriorityRoundRobin, Timeslice: 5})
	require.NoError(t, err)
	assert.IsType(t, &PriorityRoundRobin{}, s)

	s, err = New(Config{Policy: PolicyFair, TargetLatency: 20, MinGranularity: 2})
	require.NoError(t, err)
	assert.IsType(t, &Fair{}, s)
}

func TestNewRejectsUnknownPolicy(t *testing.T) {
	_, err := New(Config{Policy: "fifo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fifo")
}
