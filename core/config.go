package core

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultFrameInterval matches a 60Hz display.
	DefaultFrameInterval = time.Second / 60

	// DefaultFrameDeadline is how late a flush may run before the frame
	// budget is abandoned and queues are drained to completion.
	DefaultFrameDeadline = 3 * DefaultFrameInterval

	defaultSchedulerName = "fastdom"
)

// =============================================================================
// Config: Configuration for Scheduler and FrameLoop
// =============================================================================

// Config holds configuration options for a Scheduler and the FrameLoop hosting it.
// Hooks are optional; if not provided, default implementations will be used.
type Config struct {
	// Name labels logs and metrics. Defaults to "fastdom".
	Name string `yaml:"name"`

	// FrameInterval is the FrameLoop frame period. Defaults to 1s/60.
	FrameInterval time.Duration `yaml:"frame_interval"`

	// UseMicrotasks lets read-only batches flush at microtask priority when
	// the host supports it and no write is pending.
	UseMicrotasks bool `yaml:"use_microtasks"`

	// FrameBudget is the soft time budget of a flush. Zero disables time-boxing.
	FrameBudget time.Duration `yaml:"frame_budget"`

	// FrameDeadline is the elapsed time after which the budget is ignored and
	// the flush drains to completion. Defaults to DefaultFrameDeadline.
	FrameDeadline time.Duration `yaml:"frame_deadline"`

	// HistoryCapacity bounds RecentTasks. Defaults to 100.
	HistoryCapacity int `yaml:"history_capacity"`

	// Strict makes MustPhase panic when a task runs in the wrong phase.
	Strict bool `yaml:"strict"`

	// Logger defaults to NoOpLogger.
	Logger Logger `yaml:"-"`

	// Metrics defaults to NilMetrics.
	Metrics Metrics `yaml:"-"`

	// ErrorHandler receives task failures. When nil, failures propagate to
	// the host as panics after the leftover work has been rescheduled.
	ErrorHandler ErrorHandler `yaml:"-"`

	// PanicHandler is used by FrameLoop. Defaults to DefaultPanicHandler.
	PanicHandler PanicHandler `yaml:"-"`

	// Clock defaults to time.Now.
	Clock func() time.Time `yaml:"-"`
}

// DefaultConfig returns a config with default handlers.
func DefaultConfig() *Config {
	return &Config{
		Name:            defaultSchedulerName,
		FrameInterval:   DefaultFrameInterval,
		FrameDeadline:   DefaultFrameDeadline,
		HistoryCapacity: defaultTaskHistoryCapacity,
		Logger:          NewNoOpLogger(),
		Metrics:         &NilMetrics{},
		PanicHandler:    &DefaultPanicHandler{},
		Clock:           time.Now,
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML on top of DefaultConfig. Durations use Go syntax ("16ms").
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports invalid settings.
func (c *Config) Validate() error {
	var errs []error
	if c.FrameInterval < 0 {
		errs = append(errs, fmt.Errorf("frame_interval must not be negative, got %s", c.FrameInterval))
	}
	if c.FrameBudget < 0 {
		errs = append(errs, fmt.Errorf("frame_budget must not be negative, got %s", c.FrameBudget))
	}
	if c.FrameDeadline < 0 {
		errs = append(errs, fmt.Errorf("frame_deadline must not be negative, got %s", c.FrameDeadline))
	}
	if c.FrameBudget > 0 && c.FrameDeadline > 0 && c.FrameDeadline < c.FrameBudget {
		errs = append(errs, fmt.Errorf("frame_deadline %s is shorter than frame_budget %s", c.FrameDeadline, c.FrameBudget))
	}
	if c.HistoryCapacity < 0 {
		errs = append(errs, fmt.Errorf("history_capacity must not be negative, got %d", c.HistoryCapacity))
	}
	return errors.Join(errs...)
}

// withDefaults returns a copy with every zero field filled in.
func (c *Config) withDefaults() Config {
	out := Config{}
	if c != nil {
		out = *c
	}
	if out.Name == "" {
		out.Name = defaultSchedulerName
	}
	if out.FrameInterval <= 0 {
		out.FrameInterval = DefaultFrameInterval
	}
	if out.FrameDeadline <= 0 {
		out.FrameDeadline = DefaultFrameDeadline
	}
	if out.HistoryCapacity <= 0 {
		out.HistoryCapacity = defaultTaskHistoryCapacity
	}
	if out.Logger == nil {
		out.Logger = NewNoOpLogger()
	}
	if out.Metrics == nil {
		out.Metrics = &NilMetrics{}
	}
	if out.PanicHandler == nil {
		out.PanicHandler = &DefaultPanicHandler{}
	}
	if out.Clock == nil {
		out.Clock = time.Now
	}
	return out
}
