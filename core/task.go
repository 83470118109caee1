package core

import (
	"context"
	"strconv"
)

// Task is the unit of work (Closure).
// The scheduler that runs it is available through FromContext(ctx).
type Task func(ctx context.Context)

// TaskID identifies a scheduled task. IDs are never reused by a Scheduler.
type TaskID uint64

// IsZero reports whether the id was never assigned.
func (id TaskID) IsZero() bool { return id == 0 }

func (id TaskID) String() string {
	return "task-" + strconv.FormatUint(uint64(id), 10)
}

// =============================================================================
// TaskKind: Which queue a task belongs to
// =============================================================================

type TaskKind int

const (
	// KindRead observes rendered state (measure).
	KindRead TaskKind = iota

	// KindWrite mutates rendered state (mutate).
	KindWrite

	// KindDefer runs after a number of frame boundaries, outside the read/write phases.
	KindDefer
)

func (k TaskKind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	case KindDefer:
		return "defer"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// WithArg binds an invocation argument to fn.
// The argument is captured at call time, so loop variables keep the value they had.
func WithArg[T any](fn func(ctx context.Context, arg T), arg T) Task {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context) {
		fn(ctx, arg)
	}
}

// =============================================================================
// Context Helper
// =============================================================================
type schedulerKeyType struct{}

var schedulerKey schedulerKeyType

type taskInfo struct {
	scheduler *Scheduler
	id        TaskID
	kind      TaskKind
}

// FromContext returns the Scheduler running the current task, or nil.
func FromContext(ctx context.Context) *Scheduler {
	if v, ok := ctx.Value(schedulerKey).(*taskInfo); ok {
		return v.scheduler
	}
	return nil
}

// TaskIDFromContext returns the id of the currently running task.
func TaskIDFromContext(ctx context.Context) (TaskID, bool) {
	if v, ok := ctx.Value(schedulerKey).(*taskInfo); ok {
		return v.id, true
	}
	return 0, false
}

// PhaseFromContext returns the flush phase the current task runs in.
// Deferred tasks and calls outside a task report ModeIdle.
func PhaseFromContext(ctx context.Context) Mode {
	v, ok := ctx.Value(schedulerKey).(*taskInfo)
	if !ok {
		return ModeIdle
	}
	switch v.kind {
	case KindRead:
		return ModeReading
	case KindWrite:
		return ModeWriting
	default:
		return ModeIdle
	}
}

// MustPhase panics with a *PhaseError when the scheduler running ctx is in
// strict mode and the task is not running in the wanted phase.
// Without strict mode it does nothing.
func MustPhase(ctx context.Context, want Mode) {
	v, ok := ctx.Value(schedulerKey).(*taskInfo)
	if !ok || !v.scheduler.strict {
		return
	}
	if got := PhaseFromContext(ctx); got != want {
		panic(&PhaseError{Want: want, Got: got, ID: v.id})
	}
}
