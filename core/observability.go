package core

import (
	"sync/atomic"
	"time"
)

// TaskExecutionRecord captures a completed task execution event.
type TaskExecutionRecord struct {
	TaskID     TaskID
	Name       string
	Scheduler  string
	Kind       TaskKind
	Frame      uint64
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Panicked   bool
}

// SchedulerStats represents runtime observability state for a Scheduler.
type SchedulerStats struct {
	Name            string
	Mode            Mode
	PendingReads    int
	PendingWrites   int
	PendingDeferred int
	FramePending    bool
	Frames          uint64
	Flushes         uint64
	TasksRun        uint64
	TaskErrors      uint64
	Cancelled       uint64
}

// LoopStats represents runtime observability state for a FrameLoop.
type LoopStats struct {
	Name          string
	Queued        int
	FramesPending int
	FramesRun     uint64
	Panics        uint64
	Closed        bool
}

// schedulerCounters mirrors Scheduler state for readers on other goroutines.
type schedulerCounters struct {
	mode            atomic.Int32
	pendingReads    atomic.Int64
	pendingWrites   atomic.Int64
	pendingDeferred atomic.Int64
	framePending    atomic.Bool
	frames          atomic.Uint64
	flushes         atomic.Uint64
	tasksRun        atomic.Uint64
	taskErrors      atomic.Uint64
	cancelled       atomic.Uint64
}

func (c *schedulerCounters) snapshot(name string) SchedulerStats {
	return SchedulerStats{
		Name:            name,
		Mode:            Mode(c.mode.Load()),
		PendingReads:    int(c.pendingReads.Load()),
		PendingWrites:   int(c.pendingWrites.Load()),
		PendingDeferred: int(c.pendingDeferred.Load()),
		FramePending:    c.framePending.Load(),
		Frames:          c.frames.Load(),
		Flushes:         c.flushes.Load(),
		TasksRun:        c.tasksRun.Load(),
		TaskErrors:      c.taskErrors.Load(),
		Cancelled:       c.cancelled.Load(),
	}
}
