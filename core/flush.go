package core

import (
	"context"
	"runtime/debug"
	"time"
)

// flushState tracks one pass of the flush engine.
type flushState struct {
	start      time.Time
	tasks      int
	incomplete bool
}

// onFrame is the frame callback handed to the Host.
func (s *Scheduler) onFrame() {
	// Cleared first so that tasks requesting work get a new frame.
	s.framePending = false
	s.counters.framePending.Store(false)
	s.frame++
	s.counters.frames.Add(1)

	s.flush(true)
}

// onMicrotask runs a read-only flush.
func (s *Scheduler) onMicrotask() {
	s.microtaskPending = false
	if s.mode != ModeIdle || s.inFrame {
		// A flush is on the stack and will drain the reads itself.
		return
	}
	s.flush(false)
}

// flush drains the read queue, then (for frames) the write queue. Both are
// consumed front-first until empty, so tasks appended by running tasks are
// drained in the same phase.
func (s *Scheduler) flush(frame bool) {
	st := &flushState{start: s.clock()}
	// Runs on panic too: restores idle mode and reschedules leftover work.
	defer s.endFlush(st)

	if frame {
		s.runDeferred()
	}

	s.setMode(ModeReading)
	if !s.drain(&s.reads, st) {
		// Writes wait too, so reads still precede them.
		st.incomplete = true
		return
	}
	if !frame {
		return
	}

	s.setMode(ModeWriting)
	if !s.drain(&s.writes, st) {
		st.incomplete = true
	}
}

func (s *Scheduler) endFlush(st *flushState) {
	s.inFrame = false
	s.setMode(ModeIdle)
	s.syncQueueCounters()
	s.counters.flushes.Add(1)

	elapsed := s.clock().Sub(st.start)
	s.metrics.RecordFlush(s.name, elapsed, st.tasks, !st.incomplete)
	s.metrics.RecordQueueDepth(s.name, KindRead, s.reads.len())
	s.metrics.RecordQueueDepth(s.name, KindWrite, s.writes.len())
	s.metrics.RecordQueueDepth(s.name, KindDefer, s.deferred.len())

	if s.reads.len() > 0 || s.writes.len() > 0 || s.deferred.len() > 0 {
		s.requestFrame()
	}

	s.logger.Debug("flush finished",
		F("scheduler", s.name),
		F("frame", s.frame),
		F("tasks", st.tasks),
		F("elapsed", elapsed),
		F("complete", !st.incomplete),
	)
}

// runDeferred advances the defer slots by one frame and runs the task due now.
func (s *Scheduler) runDeferred() {
	id, ok := s.deferred.shift()
	s.syncQueueCounters()
	if !ok {
		return
	}
	e, ok := s.registry.get(id)
	if !ok {
		return
	}

	s.inFrame = true
	s.run(e)
	s.inFrame = false
}

// drain runs q until it is empty or the frame budget is spent.
func (s *Scheduler) drain(q *idQueue, st *flushState) bool {
	for q.len() > 0 {
		if s.overBudget(st) {
			return false
		}
		id, _ := q.popFront()
		e, ok := s.registry.get(id)
		if !ok {
			continue
		}
		st.tasks++
		s.run(e)
	}
	return true
}

// overBudget reports whether the flush should yield. At least one task runs
// per flush, and past the deadline the budget no longer applies.
func (s *Scheduler) overBudget(st *flushState) bool {
	if s.budget <= 0 || st.tasks == 0 {
		return false
	}
	elapsed := s.clock().Sub(st.start)
	return elapsed > s.budget && elapsed <= s.deadline
}

// run executes one task. The task leaves the registry before it starts, so
// clearing it from inside itself is a no-op.
func (s *Scheduler) run(e *taskEntry) {
	s.registry.remove(e.id)
	s.syncQueueCounters()

	ctx := context.WithValue(s.ctx, schedulerKey, &taskInfo{scheduler: s, id: e.id, kind: e.kind})
	startedAt := s.clock()

	defer func() {
		rec := recover()
		finishedAt := s.clock()
		name := resolveTaskName(e.fn, e.name)

		s.counters.tasksRun.Add(1)
		s.metrics.RecordTaskDuration(s.name, e.kind, finishedAt.Sub(startedAt))
		s.history.Add(TaskExecutionRecord{
			TaskID:     e.id,
			Name:       name,
			Scheduler:  s.name,
			Kind:       e.kind,
			Frame:      s.frame,
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
			Duration:   finishedAt.Sub(startedAt),
			Panicked:   rec != nil,
		})

		if rec == nil {
			return
		}

		err := &TaskError{ID: e.id, Kind: e.kind, Name: name, Value: rec, Stack: debug.Stack()}
		s.counters.taskErrors.Add(1)
		s.metrics.RecordTaskPanic(s.name, e.kind, rec)

		if s.onError != nil {
			s.logger.Warn("task failed",
				F("scheduler", s.name),
				F("task", e.id),
				F("kind", e.kind),
				F("error", err),
			)
			s.onError(err)
			return
		}

		s.logger.Error("task failed with no error handler",
			F("scheduler", s.name),
			F("task", e.id),
			F("kind", e.kind),
			F("error", err),
		)
		panic(err)
	}()

	e.fn(ctx)
}
