package core

// ManualHost is a Host driven by explicit Tick calls.
// It is meant for tests and for embedding the Scheduler in an existing
// render loop. It is not safe for concurrent use.
type ManualHost struct {
	frames     []func()
	microtasks []func()
	requests   int
	ticks      int
}

var _ MicrotaskHost = (*ManualHost)(nil)

// NewManualHost creates a ManualHost with nothing scheduled.
func NewManualHost() *ManualHost {
	return &ManualHost{}
}

// RequestFrame records fn to run on the next Tick.
func (h *ManualHost) RequestFrame(fn func()) {
	h.requests++
	h.frames = append(h.frames, fn)
}

// QueueMicrotask records fn to run before the next frame.
func (h *ManualHost) QueueMicrotask(fn func()) {
	h.microtasks = append(h.microtasks, fn)
}

// Requests returns how many frames have been requested so far.
func (h *ManualHost) Requests() int { return h.requests }

// Ticks returns how many frames have been run.
func (h *ManualHost) Ticks() int { return h.ticks }

// PendingFrames returns the number of frame callbacks waiting for Tick.
func (h *ManualHost) PendingFrames() int { return len(h.frames) }

// PendingMicrotasks returns the number of queued microtasks.
func (h *ManualHost) PendingMicrotasks() int { return len(h.microtasks) }

// RunMicrotasks drains the microtask queue, including microtasks queued
// while draining.
func (h *ManualHost) RunMicrotasks() {
	for len(h.microtasks) > 0 {
		fn := h.microtasks[0]
		h.microtasks[0] = nil
		h.microtasks = h.microtasks[1:]
		fn()
	}
}

// Tick runs pending microtasks, then one frame: every frame callback
// requested before the frame started. Callbacks requested during the frame
// wait for the next Tick. A panicking callback propagates to the caller;
// callbacks of the same frame that did not run yet stay queued.
func (h *ManualHost) Tick() {
	h.RunMicrotasks()

	batch := h.frames
	h.frames = nil
	h.ticks++

	for len(batch) > 0 {
		fn := batch[0]
		batch = batch[1:]
		h.runFrameCallback(fn, batch)
		h.RunMicrotasks()
	}
}

// TickN runs n frames.
func (h *ManualHost) TickN(n int) {
	for range n {
		h.Tick()
	}
}

func (h *ManualHost) runFrameCallback(fn func(), rest []func()) {
	defer func() {
		if r := recover(); r != nil {
			h.frames = append(append([]func(){}, rest...), h.frames...)
			panic(r)
		}
	}()
	fn()
}
