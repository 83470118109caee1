package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseConfig verifies YAML settings override the defaults
// Given: A YAML document setting most tunables
// When: It is parsed
// Then: Values are applied, durations use Go syntax, hooks keep their defaults
func TestParseConfig(t *testing.T) {
	// Arrange
	data := []byte(`
name: layout
frame_interval: 8ms
use_microtasks: true
frame_budget: 4ms
frame_deadline: 12ms
history_capacity: 16
strict: true
`)

	// Act
	cfg, err := ParseConfig(data)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "layout", cfg.Name)
	assert.Equal(t, 8*time.Millisecond, cfg.FrameInterval)
	assert.True(t, cfg.UseMicrotasks)
	assert.Equal(t, 4*time.Millisecond, cfg.FrameBudget)
	assert.Equal(t, 12*time.Millisecond, cfg.FrameDeadline)
	assert.Equal(t, 16, cfg.HistoryCapacity)
	assert.True(t, cfg.Strict)
	assert.NotNil(t, cfg.Logger)
	assert.NotNil(t, cfg.Metrics)
	assert.NotNil(t, cfg.Clock)
}

// TestParseConfig_Defaults verifies an empty document yields DefaultConfig values
func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig(nil)

	require.NoError(t, err)
	assert.Equal(t, defaultSchedulerName, cfg.Name)
	assert.Equal(t, DefaultFrameInterval, cfg.FrameInterval)
	assert.Equal(t, DefaultFrameDeadline, cfg.FrameDeadline)
	assert.Zero(t, cfg.FrameBudget)
	assert.False(t, cfg.UseMicrotasks)
}

// TestParseConfig_Invalid verifies every invalid setting is reported
func TestParseConfig_Invalid(t *testing.T) {
	_, err := ParseConfig([]byte(`
frame_budget: -1ms
frame_interval: -16ms
history_capacity: -3
`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame_budget")
	assert.Contains(t, err.Error(), "frame_interval")
	assert.Contains(t, err.Error(), "history_capacity")
}

// TestParseConfig_DeadlineShorterThanBudget verifies the deadline must cover the budget
func TestParseConfig_DeadlineShorterThanBudget(t *testing.T) {
	_, err := ParseConfig([]byte("frame_budget: 10ms\nframe_deadline: 5ms\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "shorter than frame_budget")
}

// TestParseConfig_Malformed verifies YAML errors are wrapped
func TestParseConfig_Malformed(t *testing.T) {
	_, err := ParseConfig([]byte("frame_interval: [oops"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

// TestLoadConfig verifies reading from disk
func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fastdom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: from-file\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Name)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestConfig_WithDefaultsNil verifies a nil config is usable
func TestConfig_WithDefaultsNil(t *testing.T) {
	var cfg *Config
	c := cfg.withDefaults()

	assert.Equal(t, defaultSchedulerName, c.Name)
	assert.Equal(t, defaultTaskHistoryCapacity, c.HistoryCapacity)
	assert.IsType(t, &NoOpLogger{}, c.Logger)
	assert.IsType(t, &NilMetrics{}, c.Metrics)
	assert.IsType(t, &DefaultPanicHandler{}, c.PanicHandler)
}
