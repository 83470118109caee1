package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestManualHost_FrameBatch verifies frames requested during a tick wait for the next one
// Given: A frame callback that requests another frame
// When: The host ticks twice
// Then: Each tick runs exactly one of them
func TestManualHost_FrameBatch(t *testing.T) {
	h := NewManualHost()
	var ran []int

	h.RequestFrame(func() {
		ran = append(ran, h.Ticks())
		h.RequestFrame(func() { ran = append(ran, h.Ticks()) })
	})

	h.Tick()
	assert.Equal(t, []int{1}, ran)
	assert.Equal(t, 1, h.PendingFrames())

	h.Tick()
	assert.Equal(t, []int{1, 2}, ran)
	assert.Equal(t, 2, h.Requests())
}

// TestManualHost_MicrotasksFirst verifies microtasks drain before and between frame callbacks
func TestManualHost_MicrotasksFirst(t *testing.T) {
	h := NewManualHost()
	var order []string

	h.RequestFrame(func() {
		order = append(order, "frame1")
		h.QueueMicrotask(func() { order = append(order, "micro2") })
	})
	h.RequestFrame(func() { order = append(order, "frame2") })
	h.QueueMicrotask(func() { order = append(order, "micro1") })

	h.Tick()

	assert.Equal(t, []string{"micro1", "frame1", "micro2", "frame2"}, order)
}

// TestManualHost_PanicKeepsRest verifies a panicking callback leaves the rest of its frame queued
func TestManualHost_PanicKeepsRest(t *testing.T) {
	h := NewManualHost()
	ran := false

	h.RequestFrame(func() { panic("first") })
	h.RequestFrame(func() { ran = true })

	assert.PanicsWithValue(t, "first", h.Tick)
	assert.False(t, ran)
	assert.Equal(t, 1, h.PendingFrames())

	h.Tick()
	assert.True(t, ran)
}
