package core

import (
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling panics that reach the host
// =============================================================================

// PanicHandler is called when a callback run by a FrameLoop panics.
// For Scheduler callbacks this only happens when the Scheduler has no
// ErrorHandler, so the panic value is usually a *TaskError.
//
// Implementations should be thread-safe as they may be called from any loop.
type PanicHandler interface {
	// HandlePanic is called when a loop callback panics.
	//
	// Parameters:
	// - loopName: The name of the frame loop where the panic occurred
	// - panicInfo: The panic value recovered from the callback
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(loopName string, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler provides a basic panic handler that logs to stdout.
type DefaultPanicHandler struct{}

// HandlePanic prints panic information to stdout.
func (h *DefaultPanicHandler) HandlePanic(loopName string, panicInfo any, stackTrace []byte) {
	if te, ok := panicInfo.(*TaskError); ok && len(te.Stack) > 0 {
		stackTrace = te.Stack
	}
	fmt.Printf("[FrameLoop %s] Panic: %v\nStack trace:\n%s", loopName, panicInfo, stackTrace)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting scheduler metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods are called on the scheduler's goroutine and should be non-blocking
// and fast to avoid stretching the frame.
type Metrics interface {
	// RecordTaskDuration records how long a task took to execute.
	RecordTaskDuration(scheduler string, kind TaskKind, duration time.Duration)

	// RecordTaskPanic records that a task panicked during execution.
	RecordTaskPanic(scheduler string, kind TaskKind, panicInfo any)

	// RecordQueueDepth records the number of tasks left in a queue.
	RecordQueueDepth(scheduler string, kind TaskKind, depth int)

	// RecordFlush records one flush. complete is false when the frame budget
	// cut the flush short.
	RecordFlush(scheduler string, duration time.Duration, tasks int, complete bool)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordTaskDuration is a no-op.
func (m *NilMetrics) RecordTaskDuration(scheduler string, kind TaskKind, duration time.Duration) {
}

// RecordTaskPanic is a no-op.
func (m *NilMetrics) RecordTaskPanic(scheduler string, kind TaskKind, panicInfo any) {
}

// RecordQueueDepth is a no-op.
func (m *NilMetrics) RecordQueueDepth(scheduler string, kind TaskKind, depth int) {
}

// RecordFlush is a no-op.
func (m *NilMetrics) RecordFlush(scheduler string, duration time.Duration, tasks int, complete bool) {
}
