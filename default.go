package fastdom

import (
	"context"
	"fmt"
	"sync"

	"github.com/Swind/go-fastdom/core"
)

// =============================================================================
// Default Instance Helper (Singleton)
// =============================================================================

var (
	defaultLoop      *core.FrameLoop
	defaultScheduler *core.Scheduler
	defaultMu        sync.Mutex
)

// InitDefault creates the default FrameLoop and a Scheduler hosted by it.
// cfg may be nil. Calls after the first are no-ops until ShutdownDefault.
func InitDefault(cfg *Config) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultLoop != nil {
		return // Already initialized
	}

	defaultLoop = core.NewFrameLoop(cfg)
	defaultScheduler = core.NewScheduler(defaultLoop, cfg)
}

// Default returns the default scheduler.
// It panics if InitDefault has not been called.
func Default() *Scheduler {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultScheduler == nil {
		panic("fastdom: default instance not initialized. Call InitDefault() first.")
	}
	return defaultScheduler
}

// Loop returns the FrameLoop hosting the default scheduler.
// It panics if InitDefault has not been called.
func Loop() *FrameLoop {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultLoop == nil {
		panic("fastdom: default instance not initialized. Call InitDefault() first.")
	}
	return defaultLoop
}

// ShutdownDefault stops the default loop. Pending tasks are dropped.
// It must not be called from the loop goroutine.
func ShutdownDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultLoop != nil {
		defaultLoop.Stop()
		defaultLoop = nil
		defaultScheduler = nil
	}
}

// Post runs fn on the default loop goroutine, where the package-level
// scheduling functions may be called. It is safe to call from any goroutine.
func Post(fn func()) error {
	return Loop().Post(fn)
}

// Do runs fn on the default loop goroutine and waits for it to return.
// It must not be called from the loop goroutine.
func Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := Post(func() {
		defer close(done)
		fn()
	}); err != nil {
		return fmt.Errorf("do: %w", err)
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================
// Package-level scheduling on the default instance
// =============================================================================
//
// These must run on the default loop goroutine: inside a task, or inside a
// function passed to Post or Do.

// Read schedules a read on the default scheduler.
func Read(task Task) TaskID { return Default().Read(task) }

// Measure is an alias for Read.
func Measure(task Task) TaskID { return Default().Measure(task) }

// Write schedules a write on the default scheduler.
func Write(task Task) TaskID { return Default().Write(task) }

// Mutate is an alias for Write.
func Mutate(task Task) TaskID { return Default().Mutate(task) }

// Defer runs task on the default scheduler after frames frame boundaries.
func Defer(frames int, task Task) TaskID { return Default().Defer(frames, task) }

// Clear cancels a pending task of the default scheduler.
func Clear(id TaskID) bool { return Default().Clear(id) }

// NewSandbox creates a cancellation scope over the default scheduler.
func NewSandbox() *Sandbox { return Default().Sandbox() }
