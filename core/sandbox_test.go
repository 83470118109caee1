package core

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSandbox_ClearAll verifies a sandbox cancels only its own tasks
// Given: A sandbox with a read, a write and a deferral, plus a parent read
// When: ClearAll runs before the frame
// Then: Only the parent read runs and ClearAll reports three cancellations
func TestSandbox_ClearAll(t *testing.T) {
	// Arrange
	s, host := newTestScheduler(t, nil)
	sb := s.Sandbox()
	rec := &recorder{}

	sb.Read(rec.task("sandbox-read"))
	sb.Write(rec.task("sandbox-write"))
	sb.Defer(1, rec.task("sandbox-defer"))
	s.Read(rec.task("parent-read"))
	require.Equal(t, 3, sb.Len())

	// Act
	n := sb.ClearAll()
	host.TickN(2)

	// Assert
	assert.Equal(t, 3, n)
	assert.Equal(t, 0, sb.Len())
	assert.Equal(t, []string{"parent-read"}, rec.got())
	assert.Equal(t, uint64(3), s.Stats().Cancelled)
}

// TestSandbox_UntracksOnRun verifies tasks leave the sandbox once they start
// Given: A sandbox with a read and a write
// When: The frame runs
// Then: The sandbox is empty and ClearAll has nothing left to cancel
func TestSandbox_UntracksOnRun(t *testing.T) {
	s, host := newTestScheduler(t, nil)
	sb := s.Sandbox()
	var lenDuringWrite int

	sb.Read(noopTask)
	sb.Write(func(ctx context.Context) { lenDuringWrite = sb.Len() })
	host.Tick()

	assert.Equal(t, 0, lenDuringWrite)
	assert.Equal(t, 0, sb.Len())
	assert.Equal(t, 0, sb.ClearAll())
}

// TestSandbox_ClearFromOwnTask verifies a running sandbox task can cancel its siblings
// Given: A sandbox read that clears its sandbox, and a sandbox write
// When: The frame runs
// Then: The write is cancelled
func TestSandbox_ClearFromOwnTask(t *testing.T) {
	s, host := newTestScheduler(t, nil)
	sb := s.Sandbox()
	rec := &recorder{}

	sb.Measure(func(ctx context.Context) {
		rec.add("measure")
		assert.Equal(t, 1, sb.ClearAll())
	})
	sb.Mutate(rec.task("mutate"))
	host.Tick()

	assert.Equal(t, []string{"measure"}, rec.got())
}

// TestSandbox_ParentClearUntracks verifies clearing through the parent updates the sandbox
func TestSandbox_ParentClearUntracks(t *testing.T) {
	s, _ := newTestScheduler(t, nil)
	sb := s.Sandbox()

	id := sb.Write(noopTask)
	require.True(t, s.Clear(id))

	assert.Equal(t, 0, sb.Len())
	assert.Equal(t, 0, sb.ClearAll())
}

// TestSandbox_Clear verifies single-task cancellation through the sandbox
func TestSandbox_Clear(t *testing.T) {
	s, host := newTestScheduler(t, nil)
	sb := s.Sandbox()
	rec := &recorder{}

	id := sb.Read(rec.task("cleared"))
	sb.Read(rec.task("kept"))

	assert.True(t, sb.Clear(id))
	assert.False(t, sb.Clear(id))
	host.Tick()

	assert.Equal(t, []string{"kept"}, rec.got())
}

// TestSandbox_Independent verifies sandboxes do not affect each other
func TestSandbox_Independent(t *testing.T) {
	s, host := newTestScheduler(t, nil)
	a, b := s.Sandbox(), s.Sandbox()
	rec := &recorder{}

	a.Write(rec.task("a"))
	b.Write(rec.task("b"))
	a.ClearAll()
	host.Tick()

	assert.Equal(t, []string{"b"}, rec.got())
	assert.NotEqual(t, a.ID(), b.ID())
	_, err := uuid.Parse(a.ID())
	assert.NoError(t, err)
	assert.Same(t, s, a.Scheduler())
}

// TestSandbox_TaskNames verifies history records the wrapped task's name
func TestSandbox_TaskNames(t *testing.T) {
	s, host := newTestScheduler(t, nil)
	sb := s.Sandbox()

	sb.Read(noopTask)
	host.Tick()

	last, ok := s.LastTask()
	require.True(t, ok)
	assert.Contains(t, last.Name, "noopTask")
}
