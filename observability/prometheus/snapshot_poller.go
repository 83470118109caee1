package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-fastdom/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// SchedulerSnapshotProvider provides current scheduler stats snapshots.
type SchedulerSnapshotProvider interface {
	Stats() core.SchedulerStats
}

// LoopSnapshotProvider provides current frame loop stats snapshots.
type LoopSnapshotProvider interface {
	Stats() core.LoopStats
}

var (
	_ SchedulerSnapshotProvider = (*core.Scheduler)(nil)
	_ LoopSnapshotProvider      = (*core.FrameLoop)(nil)
)

// SnapshotPoller periodically exports scheduler and loop Stats() snapshots
// into Prometheus gauges. Stats() is goroutine-safe, so polling never touches
// the loop goroutine.
type SnapshotPoller struct {
	interval time.Duration

	schedulersMu sync.RWMutex
	schedulers   map[string]SchedulerSnapshotProvider

	loopsMu sync.RWMutex
	loops   map[string]LoopSnapshotProvider

	schedulerPending      *prom.GaugeVec
	schedulerMode         *prom.GaugeVec
	schedulerFramePending *prom.GaugeVec
	schedulerFrames       *prom.GaugeVec
	schedulerTasksRun     *prom.GaugeVec
	schedulerTaskErrors   *prom.GaugeVec
	schedulerCancelled    *prom.GaugeVec

	loopQueued        *prom.GaugeVec
	loopFramesPending *prom.GaugeVec
	loopFramesRun     *prom.GaugeVec
	loopPanics        *prom.GaugeVec
	loopClosed        *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	gauge := func(name, help string, labels ...string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: defaultNamespace,
			Name:      name,
			Help:      help,
		}, labels)
	}

	p := &SnapshotPoller{
		interval:   interval,
		schedulers: make(map[string]SchedulerSnapshotProvider),
		loops:      make(map[string]LoopSnapshotProvider),

		schedulerPending:      gauge("scheduler_pending", "Pending tasks per scheduler and kind.", "scheduler", "kind"),
		schedulerMode:         gauge("scheduler_mode", "Current flush phase (0=idle, 1=reading, 2=writing).", "scheduler"),
		schedulerFramePending: gauge("scheduler_frame_pending", "Whether a frame is requested (1) or not (0).", "scheduler"),
		schedulerFrames:       gauge("scheduler_frames", "Frames run by the scheduler.", "scheduler"),
		schedulerTasksRun:     gauge("scheduler_tasks_run", "Tasks run by the scheduler.", "scheduler"),
		schedulerTaskErrors:   gauge("scheduler_task_errors", "Tasks that panicked.", "scheduler"),
		schedulerCancelled:    gauge("scheduler_cancelled", "Tasks cancelled before running.", "scheduler"),

		loopQueued:        gauge("loop_queued", "Functions posted to the loop and not yet run.", "loop"),
		loopFramesPending: gauge("loop_frames_pending", "Frame callbacks waiting for the next frame.", "loop"),
		loopFramesRun:     gauge("loop_frames_run", "Frames run by the loop.", "loop"),
		loopPanics:        gauge("loop_panics", "Callbacks that panicked on the loop.", "loop"),
		loopClosed:        gauge("loop_closed", "Loop closed state (1=closed, 0=open).", "loop"),
	}

	for _, g := range []**prom.GaugeVec{
		&p.schedulerPending, &p.schedulerMode, &p.schedulerFramePending, &p.schedulerFrames,
		&p.schedulerTasksRun, &p.schedulerTaskErrors, &p.schedulerCancelled,
		&p.loopQueued, &p.loopFramesPending, &p.loopFramesRun, &p.loopPanics, &p.loopClosed,
	} {
		registered, err := registerCollector(reg, *g)
		if err != nil {
			return nil, err
		}
		*g = registered
	}
	return p, nil
}

// AddScheduler adds or replaces a scheduler snapshot provider by name.
func (p *SnapshotPoller) AddScheduler(name string, provider SchedulerSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "scheduler")
	p.schedulersMu.Lock()
	p.schedulers[name] = provider
	p.schedulersMu.Unlock()
}

// AddLoop adds or replaces a loop snapshot provider by name.
func (p *SnapshotPoller) AddLoop(name string, provider LoopSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "loop")
	p.loopsMu.Lock()
	p.loops[name] = provider
	p.loopsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx, p.done)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

// Run polls until ctx is done. It suits errgroup-managed lifecycles.
func (p *SnapshotPoller) Run(ctx context.Context) error {
	p.Start(ctx)
	<-ctx.Done()
	p.Stop()
	return nil
}

func (p *SnapshotPoller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.CollectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.CollectOnce()
		}
	}
}

// CollectOnce exports the current snapshots immediately.
func (p *SnapshotPoller) CollectOnce() {
	p.schedulersMu.RLock()
	for name, provider := range p.schedulers {
		stats := provider.Stats()
		p.schedulerPending.WithLabelValues(name, core.KindRead.String()).Set(float64(stats.PendingReads))
		p.schedulerPending.WithLabelValues(name, core.KindWrite.String()).Set(float64(stats.PendingWrites))
		p.schedulerPending.WithLabelValues(name, core.KindDefer.String()).Set(float64(stats.PendingDeferred))
		p.schedulerMode.WithLabelValues(name).Set(float64(stats.Mode))
		p.schedulerFramePending.WithLabelValues(name).Set(boolGauge(stats.FramePending))
		p.schedulerFrames.WithLabelValues(name).Set(float64(stats.Frames))
		p.schedulerTasksRun.WithLabelValues(name).Set(float64(stats.TasksRun))
		p.schedulerTaskErrors.WithLabelValues(name).Set(float64(stats.TaskErrors))
		p.schedulerCancelled.WithLabelValues(name).Set(float64(stats.Cancelled))
	}
	p.schedulersMu.RUnlock()

	p.loopsMu.RLock()
	for name, provider := range p.loops {
		stats := provider.Stats()
		p.loopQueued.WithLabelValues(name).Set(float64(stats.Queued))
		p.loopFramesPending.WithLabelValues(name).Set(float64(stats.FramesPending))
		p.loopFramesRun.WithLabelValues(name).Set(float64(stats.FramesRun))
		p.loopPanics.WithLabelValues(name).Set(float64(stats.Panics))
		p.loopClosed.WithLabelValues(name).Set(boolGauge(stats.Closed))
	}
	p.loopsMu.RUnlock()
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
