package core

import (
	"context"
	"sync"
	"testing"
	"time"
)

func noopTask(ctx context.Context) {}

// recorder collects labels in execution order.
type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) add(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, label)
}

func (r *recorder) task(label string) Task {
	return func(ctx context.Context) { r.add(label) }
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// fakeClock advances only when told to.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// newTestScheduler returns a scheduler on a ManualHost.
func newTestScheduler(t *testing.T, cfg *Config) (*Scheduler, *ManualHost) {
	t.Helper()
	host := NewManualHost()
	return NewScheduler(host, cfg), host
}

// recordingMetrics is a Metrics that counts calls.
type recordingMetrics struct {
	mu        sync.Mutex
	durations map[TaskKind]int
	panics    map[TaskKind]int
	depths    map[TaskKind]int
	flushes   int
	partial   int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		durations: make(map[TaskKind]int),
		panics:    make(map[TaskKind]int),
		depths:    make(map[TaskKind]int),
	}
}

func (m *recordingMetrics) RecordTaskDuration(scheduler string, kind TaskKind, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[kind]++
}

func (m *recordingMetrics) RecordTaskPanic(scheduler string, kind TaskKind, panicInfo any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panics[kind]++
}

func (m *recordingMetrics) RecordQueueDepth(scheduler string, kind TaskKind, depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.depths[kind] = depth
}

func (m *recordingMetrics) RecordFlush(scheduler string, duration time.Duration, tasks int, complete bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
	if !complete {
		m.partial++
	}
}
