package core

import (
	"context"

	"github.com/google/uuid"
)

// Sandbox is a cancellation scope over a Scheduler. Tasks submitted through
// it are scheduled by the parent as usual; the sandbox only tracks the ones
// that have not started yet so they can be cleared together.
//
// Like its Scheduler, a Sandbox is not safe for concurrent use.
type Sandbox struct {
	parent *Scheduler
	id     string
	tasks  map[TaskID]struct{}
}

// Sandbox creates a new cancellation scope.
func (s *Scheduler) Sandbox() *Sandbox {
	return &Sandbox{
		parent: s,
		id:     uuid.NewString(),
		tasks:  make(map[TaskID]struct{}),
	}
}

// ID identifies the sandbox in logs.
func (sb *Sandbox) ID() string { return sb.id }

// Scheduler returns the parent scheduler.
func (sb *Sandbox) Scheduler() *Scheduler { return sb.parent }

// Read schedules a tracked read task.
func (sb *Sandbox) Read(task Task) TaskID {
	return sb.track(KindRead, 0, task)
}

// Measure is an alias for Read.
func (sb *Sandbox) Measure(task Task) TaskID {
	return sb.track(KindRead, 0, task)
}

// Write schedules a tracked write task.
func (sb *Sandbox) Write(task Task) TaskID {
	return sb.track(KindWrite, 0, task)
}

// Mutate is an alias for Write.
func (sb *Sandbox) Mutate(task Task) TaskID {
	return sb.track(KindWrite, 0, task)
}

// Defer schedules a tracked deferred task.
func (sb *Sandbox) Defer(frames int, task Task) TaskID {
	return sb.track(KindDefer, frames, task)
}

// Clear cancels one task through the parent scheduler.
func (sb *Sandbox) Clear(id TaskID) bool {
	sb.untrack(id)
	return sb.parent.Clear(id)
}

// ClearAll cancels every tracked task that has not started yet and returns
// how many were cancelled.
func (sb *Sandbox) ClearAll() int {
	ids := make([]TaskID, 0, len(sb.tasks))
	for id := range sb.tasks {
		ids = append(ids, id)
	}

	n := 0
	for _, id := range ids {
		if sb.parent.Clear(id) {
			n++
		}
	}
	clear(sb.tasks)

	sb.parent.logger.Debug("sandbox cleared",
		F("scheduler", sb.parent.name),
		F("sandbox", sb.id),
		F("cancelled", n),
	)
	return n
}

// Len returns the number of tracked tasks that have not started.
func (sb *Sandbox) Len() int {
	return len(sb.tasks)
}

func (sb *Sandbox) track(kind TaskKind, frames int, task Task) TaskID {
	if task == nil {
		panic(ErrNilTask)
	}

	var id TaskID
	wrapped := func(ctx context.Context) {
		sb.untrack(id)
		task(ctx)
	}

	name := resolveTaskName(task, "")
	switch kind {
	case KindRead, KindWrite:
		id = sb.parent.submit(kind, wrapped, name)
	default:
		id = sb.parent.deferNamed(frames, wrapped, name)
	}

	sb.tasks[id] = struct{}{}
	if e, ok := sb.parent.registry.get(id); ok {
		e.owner = sb
	}
	return id
}

func (sb *Sandbox) untrack(id TaskID) {
	delete(sb.tasks, id)
}
