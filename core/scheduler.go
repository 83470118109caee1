package core

import (
	"context"
	"time"
)

// Scheduler batches read (measure) and write (mutate) tasks so that, within
// every frame, all reads run before all writes.
//
// A Scheduler is single-threaded: every method must be called on the
// goroutine that invokes the Host's callbacks (for a FrameLoop, inside a
// callback or a function passed to FrameLoop.Post). Tasks may call back into
// the Scheduler while it flushes.
type Scheduler struct {
	name      string
	host      Host
	microHost MicrotaskHost // nil unless microtasks are enabled and supported
	ctx       context.Context

	registry taskRegistry
	reads    idQueue
	writes   idQueue
	deferred deferSlots

	mode             Mode
	framePending     bool
	microtaskPending bool
	// inFrame is set while a frame runs deferred tasks ahead of its flush;
	// submissions made then are absorbed by that flush.
	inFrame bool
	frame   uint64

	frameFn     func()
	microtaskFn func()

	onError  ErrorHandler
	logger   Logger
	metrics  Metrics
	history  *executionHistory
	clock    func() time.Time
	budget   time.Duration
	deadline time.Duration
	strict   bool

	counters schedulerCounters
}

// NewScheduler creates a Scheduler that requests frames from host.
// cfg may be nil.
func NewScheduler(host Host, cfg *Config) *Scheduler {
	if host == nil {
		panic("core: NewScheduler requires a Host")
	}
	c := cfg.withDefaults()

	s := &Scheduler{
		name:     c.Name,
		host:     host,
		ctx:      context.Background(),
		registry: newTaskRegistry(),
		reads:    newIDQueue(),
		writes:   newIDQueue(),
		onError:  c.ErrorHandler,
		logger:   c.Logger,
		metrics:  c.Metrics,
		history:  newExecutionHistory(c.HistoryCapacity),
		clock:    c.Clock,
		budget:   c.FrameBudget,
		deadline: c.FrameDeadline,
		strict:   c.Strict,
	}
	if mh, ok := host.(MicrotaskHost); ok && c.UseMicrotasks {
		s.microHost = mh
	}
	s.frameFn = s.onFrame
	s.microtaskFn = s.onMicrotask
	return s
}

// Name returns the name used in logs and metrics.
func (s *Scheduler) Name() string { return s.name }

// Host returns the host the scheduler requests frames from.
func (s *Scheduler) Host() Host { return s.host }

// Mode returns the current flush phase.
func (s *Scheduler) Mode() Mode { return s.mode }

// SetErrorHandler replaces the handler receiving task failures.
// A nil handler makes failures propagate to the host.
func (s *Scheduler) SetErrorHandler(h ErrorHandler) {
	s.onError = h
}

// Catch is an alias for SetErrorHandler.
func (s *Scheduler) Catch(h ErrorHandler) { s.SetErrorHandler(h) }

// =============================================================================
// Submission
// =============================================================================

// Read schedules a task that observes rendered state.
func (s *Scheduler) Read(task Task) TaskID {
	return s.submit(KindRead, task, "")
}

// Measure is an alias for Read.
func (s *Scheduler) Measure(task Task) TaskID {
	return s.submit(KindRead, task, "")
}

// ReadNamed is Read with a name for history and logs.
func (s *Scheduler) ReadNamed(name string, task Task) TaskID {
	return s.submit(KindRead, task, name)
}

// Write schedules a task that mutates rendered state.
func (s *Scheduler) Write(task Task) TaskID {
	return s.submit(KindWrite, task, "")
}

// Mutate is an alias for Write.
func (s *Scheduler) Mutate(task Task) TaskID {
	return s.submit(KindWrite, task, "")
}

// WriteNamed is Write with a name for history and logs.
func (s *Scheduler) WriteNamed(name string, task Task) TaskID {
	return s.submit(KindWrite, task, name)
}

// Defer runs task after frames frame boundaries. Zero means the next frame.
// Deferrals landing on an occupied frame move to the next free one.
// It panics with ErrNegativeFrames when frames is negative.
func (s *Scheduler) Defer(frames int, task Task) TaskID {
	return s.deferNamed(frames, task, "")
}

func (s *Scheduler) deferNamed(frames int, task Task, name string) TaskID {
	if task == nil {
		panic(ErrNilTask)
	}
	if frames < 0 {
		panic(ErrNegativeFrames)
	}
	if frames == 0 {
		frames = 1
	}

	e := s.registry.add(KindDefer, task, name)
	s.deferred.insert(frames-1, e.id)
	s.syncQueueCounters()

	// A running flush reschedules on its way out.
	if s.mode == ModeIdle && !s.inFrame {
		s.requestFrame()
	}
	return e.id
}

func (s *Scheduler) submit(kind TaskKind, task Task, name string) TaskID {
	if task == nil {
		panic(ErrNilTask)
	}

	e := s.registry.add(kind, task, name)
	switch kind {
	case KindRead:
		s.reads.push(e.id)
	case KindWrite:
		s.writes.push(e.id)
	}
	s.syncQueueCounters()

	s.requestFlush(kind)
	return e.id
}

// =============================================================================
// Cancellation
// =============================================================================

// Clear cancels a pending task. It reports whether a task was cancelled;
// unknown, finished and already cleared ids are ignored.
func (s *Scheduler) Clear(id TaskID) bool {
	e, ok := s.registry.get(id)
	if !ok {
		return false
	}
	s.registry.remove(id)

	switch e.kind {
	case KindRead:
		s.reads.remove(id)
	case KindWrite:
		s.writes.remove(id)
	case KindDefer:
		s.deferred.remove(id)
	}
	if e.owner != nil {
		e.owner.untrack(id)
	}

	s.syncQueueCounters()
	s.counters.cancelled.Add(1)
	return true
}

// Pending returns the number of tasks waiting to run.
func (s *Scheduler) Pending() int {
	return s.registry.len()
}

// =============================================================================
// Frame scheduling
// =============================================================================

func (s *Scheduler) requestFlush(kind TaskKind) {
	if s.inFrame || !needsFrame(s.mode, kind) {
		return
	}
	if kind == KindRead && s.microHost != nil && s.mode == ModeIdle && s.writes.len() == 0 {
		s.requestMicrotask()
		return
	}
	s.requestFrame()
}

func (s *Scheduler) requestFrame() {
	if s.framePending {
		return
	}
	s.framePending = true
	s.counters.framePending.Store(true)
	s.logger.Debug("frame requested",
		F("scheduler", s.name),
		F("mode", s.mode),
		F("reads", s.reads.len()),
		F("writes", s.writes.len()),
	)
	s.host.RequestFrame(s.frameFn)
}

func (s *Scheduler) requestMicrotask() {
	if s.microtaskPending {
		return
	}
	s.microtaskPending = true
	s.microHost.QueueMicrotask(s.microtaskFn)
}

// =============================================================================
// Observability
// =============================================================================

// Stats returns a snapshot of the scheduler state. It is safe to call from
// any goroutine.
func (s *Scheduler) Stats() SchedulerStats {
	return s.counters.snapshot(s.name)
}

// RecentTasks returns up to limit executions, newest first. It is safe to
// call from any goroutine.
func (s *Scheduler) RecentTasks(limit int) []TaskExecutionRecord {
	return s.history.Recent(limit)
}

// LastTask returns the most recent execution.
func (s *Scheduler) LastTask() (TaskExecutionRecord, bool) {
	return s.history.Last()
}

func (s *Scheduler) setMode(m Mode) {
	s.mode = m
	s.counters.mode.Store(int32(m))
}

func (s *Scheduler) syncQueueCounters() {
	s.counters.pendingReads.Store(int64(s.reads.len()))
	s.counters.pendingWrites.Store(int64(s.writes.len()))
	s.counters.pendingDeferred.Store(int64(s.deferred.len()))
}
