package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNilTask is raised (as a panic) when a nil Task is submitted.
	ErrNilTask = errors.New("core: task is nil")

	// ErrNegativeFrames is raised (as a panic) when Defer gets a negative frame count.
	ErrNegativeFrames = errors.New("core: negative defer frame count")

	// ErrLoopClosed is returned by FrameLoop methods after Stop or Shutdown.
	ErrLoopClosed = errors.New("core: frame loop is closed")
)

// TaskError wraps a panic recovered from a task.
type TaskError struct {
	ID    TaskID
	Kind  TaskKind
	Name  string
	Value any
	Stack []byte
}

func (e *TaskError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s task %s (%s) panicked: %v", e.Kind, e.ID, e.Name, e.Value)
	}
	return fmt.Sprintf("%s task %s panicked: %v", e.Kind, e.ID, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *TaskError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// PhaseError is raised by MustPhase in strict mode.
type PhaseError struct {
	ID   TaskID
	Want Mode
	Got  Mode
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("task %s runs in %s phase, want %s", e.ID, e.Got, e.Want)
}

// ErrorHandler receives errors from failing tasks. Setting one keeps the
// flush going after a failure instead of propagating the panic to the host.
type ErrorHandler func(err error)
