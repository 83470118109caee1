package fastdom

import (
	"context"

	"github.com/Swind/go-fastdom/core"
)

// Re-export commonly used types from core package for convenience.
// This allows users to import only the fastdom package for most use cases.

// Task is the unit of work (Closure)
type Task = core.Task

// TaskID identifies a scheduled task
type TaskID = core.TaskID

// TaskKind tells which queue a task belongs to
type TaskKind = core.TaskKind

// Mode is the current flush phase
type Mode = core.Mode

// Scheduler batches reads and writes per frame
type Scheduler = core.Scheduler

// Sandbox is a cancellation scope over a Scheduler
type Sandbox = core.Sandbox

// FrameLoop is a dedicated goroutine producing frames
type FrameLoop = core.FrameLoop

// Host is what a Scheduler requests frames from
type Host = core.Host

// ManualHost is a Host driven by explicit ticks
type ManualHost = core.ManualHost

// Config configures a Scheduler and its FrameLoop
type Config = core.Config

// ErrorHandler receives task failures
type ErrorHandler = core.ErrorHandler

// TaskError wraps a panic recovered from a task
type TaskError = core.TaskError

// Kind and mode constants
const (
	KindRead  = core.KindRead
	KindWrite = core.KindWrite
	KindDefer = core.KindDefer

	ModeIdle    = core.ModeIdle
	ModeReading = core.ModeReading
	ModeWriting = core.ModeWriting
)

// Constructors and helpers
var (
	NewScheduler     = core.NewScheduler
	NewFrameLoop     = core.NewFrameLoop
	NewManualHost    = core.NewManualHost
	DefaultConfig    = core.DefaultConfig
	LoadConfig       = core.LoadConfig
	FromContext      = core.FromContext
	PhaseFromContext = core.PhaseFromContext
)

// WithArg binds an invocation argument to fn.
func WithArg[T any](fn func(ctx context.Context, arg T), arg T) Task {
	return core.WithArg(fn, arg)
}

// MeasureThenMutate schedules measure as a read and hands its result to
// mutate, scheduled as a write in the same frame.
func MeasureThenMutate[T any](s core.Submitter, measure core.MeasureFunc[T], mutate core.MutateFunc[T]) TaskID {
	return core.MeasureThenMutate(s, measure, mutate)
}
