package core

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// FrameLoop binds a dedicated Goroutine to run frame callbacks and posted
// functions sequentially. It is the Host a Scheduler normally runs on.
//
// Frames are aligned to FrameInterval from the loop's start, like a display
// refresh. Work posted with Post or QueueMicrotask runs in FIFO order between
// frames. Everything runs on the same goroutine (Thread Affinity), so a
// Scheduler driven by the loop needs no locking.
type FrameLoop struct {
	// Work queue: unbounded FIFO so the loop can post to itself
	mu     sync.Mutex
	work   []func()
	wakeup chan struct{}

	// Frame requests collected until the next frame fires
	frameMu        sync.Mutex
	frameCallbacks []func()
	frameTimer     *time.Timer

	// Lifecycle control
	ctx    context.Context
	cancel context.CancelFunc

	// For graceful shutdown
	stopped      chan struct{}
	once         sync.Once
	closed       atomic.Bool
	shutdownChan chan struct{}
	shutdownOnce sync.Once

	name         string
	interval     time.Duration
	epoch        time.Time
	panicHandler PanicHandler
	logger       Logger

	framesRun atomic.Uint64
	panics    atomic.Uint64
}

var _ MicrotaskHost = (*FrameLoop)(nil)

// NewFrameLoop creates and starts a FrameLoop. cfg may be nil.
// It immediately spawns a dedicated goroutine for callback execution.
func NewFrameLoop(cfg *Config) *FrameLoop {
	c := cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	l := &FrameLoop{
		wakeup:       make(chan struct{}, 1),
		ctx:          ctx,
		cancel:       cancel,
		stopped:      make(chan struct{}),
		shutdownChan: make(chan struct{}),
		name:         c.Name,
		interval:     c.FrameInterval,
		epoch:        time.Now(),
		panicHandler: c.PanicHandler,
		logger:       c.Logger,
	}

	// Start the dedicated message loop
	go l.runLoop()

	return l
}

// Name returns the name of the loop
func (l *FrameLoop) Name() string { return l.name }

// FrameInterval returns the frame period.
func (l *FrameLoop) FrameInterval() time.Duration { return l.interval }

// Post queues fn to run on the loop goroutine. It is safe to call from any
// goroutine, including the loop itself.
func (l *FrameLoop) Post(fn func()) error {
	if fn == nil {
		return ErrNilTask
	}
	if l.closed.Load() {
		return ErrLoopClosed
	}

	l.mu.Lock()
	l.work = append(l.work, fn)
	l.mu.Unlock()

	select {
	case l.wakeup <- struct{}{}:
	default:
	}
	return nil
}

// QueueMicrotask runs fn on the loop goroutine before the next frame.
func (l *FrameLoop) QueueMicrotask(fn func()) {
	if err := l.Post(fn); err != nil {
		l.logger.Warn("microtask dropped", F("loop", l.name), F("error", err))
	}
}

// RequestFrame runs fn at the next frame boundary. Callbacks requested
// while a frame runs wait for the following frame.
func (l *FrameLoop) RequestFrame(fn func()) {
	if fn == nil || l.closed.Load() {
		return
	}

	l.frameMu.Lock()
	defer l.frameMu.Unlock()

	l.frameCallbacks = append(l.frameCallbacks, fn)
	if l.frameTimer != nil {
		return
	}

	// time.AfterFunc fires on its own goroutine; the frame itself is
	// posted back onto the loop.
	l.frameTimer = time.AfterFunc(l.untilNextFrame(), func() {
		if err := l.Post(l.runFrame); err != nil {
			l.logger.Debug("frame dropped", F("loop", l.name), F("error", err))
		}
	})
}

func (l *FrameLoop) untilNextFrame() time.Duration {
	elapsed := time.Since(l.epoch)
	return l.interval - elapsed%l.interval
}

func (l *FrameLoop) runFrame() {
	l.frameMu.Lock()
	batch := l.frameCallbacks
	l.frameCallbacks = nil
	l.frameTimer = nil
	l.frameMu.Unlock()

	l.framesRun.Add(1)
	for _, fn := range batch {
		l.safeExecute(fn)
	}
}

// Shutdown marks the loop as closed and signals shutdown waiters.
// Unlike Stop(), this method does NOT wait for the loop goroutine,
// so it can be called from a callback running on the loop.
func (l *FrameLoop) Shutdown() {
	l.shutdownOnce.Do(func() {
		l.closed.Store(true)
		l.stopFrameTimer()
		l.cancel()
		close(l.shutdownChan)
	})
}

// IsClosed returns true if the loop has been shut down or stopped
func (l *FrameLoop) IsClosed() bool {
	return l.closed.Load()
}

// Stop stops the loop and waits for the running callback to finish.
// It must not be called from the loop goroutine.
func (l *FrameLoop) Stop() {
	l.once.Do(func() {
		l.Shutdown()
		<-l.stopped
	})
}

func (l *FrameLoop) stopFrameTimer() {
	l.frameMu.Lock()
	defer l.frameMu.Unlock()
	if l.frameTimer != nil {
		l.frameTimer.Stop()
		l.frameTimer = nil
	}
	l.frameCallbacks = nil
}

// runLoop is the core of this loop, it occupies a dedicated goroutine
func (l *FrameLoop) runLoop() {
	defer close(l.stopped)

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-l.wakeup:
		}

		for {
			if l.ctx.Err() != nil {
				return
			}
			fn, ok := l.pop()
			if !ok {
				break
			}
			l.safeExecute(fn)
		}
	}
}

func (l *FrameLoop) pop() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.work) == 0 {
		return nil, false
	}
	fn := l.work[0]
	l.work[0] = nil
	l.work = l.work[1:]
	if len(l.work) == 0 {
		l.work = nil
	}
	return fn, true
}

func (l *FrameLoop) safeExecute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.panics.Add(1)
			l.logger.Error("frame loop callback panicked", F("loop", l.name), F("panic", r))
			l.panicHandler.HandlePanic(l.name, r, debug.Stack())
		}
	}()
	fn()
}

// Stats returns a snapshot of the loop state.
func (l *FrameLoop) Stats() LoopStats {
	l.mu.Lock()
	queued := len(l.work)
	l.mu.Unlock()

	l.frameMu.Lock()
	frames := len(l.frameCallbacks)
	l.frameMu.Unlock()

	return LoopStats{
		Name:          l.name,
		Queued:        queued,
		FramesPending: frames,
		FramesRun:     l.framesRun.Load(),
		Panics:        l.panics.Load(),
		Closed:        l.closed.Load(),
	}
}

// =============================================================================
// Synchronization Methods
// =============================================================================

// WaitIdle blocks until everything posted before the call has run.
// This is implemented by posting a barrier and waiting for it to execute.
//
// Note: frames requested but not yet due are not waited for; use WaitFrame.
func (l *FrameLoop) WaitIdle(ctx context.Context) error {
	done := make(chan struct{})
	if err := l.Post(func() { close(done) }); err != nil {
		return fmt.Errorf("wait idle: %w", err)
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitFrame blocks until the next frame boundary has been processed.
func (l *FrameLoop) WaitFrame(ctx context.Context) error {
	done := make(chan struct{})
	if err := l.Post(func() {
		l.RequestFrame(func() { close(done) })
	}); err != nil {
		return fmt.Errorf("wait frame: %w", err)
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitShutdown blocks until Shutdown() is called on this loop.
//
// Example:
//
//	loop.Post(func() {
//	    s.Write(func(ctx context.Context) {
//	        render()
//	        loop.Shutdown()
//	    })
//	})
//
//	loop.WaitShutdown(context.Background())
func (l *FrameLoop) WaitShutdown(ctx context.Context) error {
	select {
	case <-l.shutdownChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
