package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/Swind/go-fastdom/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

const defaultNamespace = "fastdom"

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	// DurationBuckets for task durations. Defaults to buckets sized for frame work.
	DurationBuckets []float64
	// FlushBuckets for flush durations. Defaults to DurationBuckets.
	FlushBuckets []float64
}

// frameBuckets spans 50µs to about 100ms; a 60Hz frame is ~16.7ms.
var frameBuckets = prom.ExponentialBuckets(0.00005, 2, 12)

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	taskDurationSeconds  *prom.HistogramVec
	taskPanicTotal       *prom.CounterVec
	queueDepth           *prom.GaugeVec
	flushDurationSeconds *prom.HistogramVec
	flushTasks           *prom.CounterVec
	flushIncompleteTotal *prom.CounterVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
// Registering twice on the same registry reuses the existing collectors.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = frameBuckets
	}
	flushBuckets := opts.FlushBuckets
	if len(flushBuckets) == 0 {
		flushBuckets = buckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"scheduler", "kind"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_panic_total",
		Help:      "Total number of task panics.",
	}, []string{"scheduler", "kind"})
	queueDepthVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Tasks left in a queue after the last flush.",
	}, []string{"scheduler", "kind"})
	flushVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "flush_duration_seconds",
		Help:      "Flush duration in seconds.",
		Buckets:   flushBuckets,
	}, []string{"scheduler"})
	flushTasksVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "flush_tasks_total",
		Help:      "Total number of read and write tasks run by flushes.",
	}, []string{"scheduler"})
	incompleteVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "flush_incomplete_total",
		Help:      "Total number of flushes cut short by the frame budget.",
	}, []string{"scheduler"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}
	if queueDepthVec, err = registerCollector(reg, queueDepthVec); err != nil {
		return nil, err
	}
	if flushVec, err = registerCollector(reg, flushVec); err != nil {
		return nil, err
	}
	if flushTasksVec, err = registerCollector(reg, flushTasksVec); err != nil {
		return nil, err
	}
	if incompleteVec, err = registerCollector(reg, incompleteVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		taskDurationSeconds:  durationVec,
		taskPanicTotal:       panicVec,
		queueDepth:           queueDepthVec,
		flushDurationSeconds: flushVec,
		flushTasks:           flushTasksVec,
		flushIncompleteTotal: incompleteVec,
	}, nil
}

// RecordTaskDuration records task execution duration.
func (m *MetricsExporter) RecordTaskDuration(scheduler string, kind core.TaskKind, duration time.Duration) {
	if m == nil {
		return
	}
	m.taskDurationSeconds.WithLabelValues(normalizeLabel(scheduler, "unknown"), kind.String()).Observe(duration.Seconds())
}

// RecordTaskPanic records task panic events.
func (m *MetricsExporter) RecordTaskPanic(scheduler string, kind core.TaskKind, panicInfo any) {
	if m == nil {
		return
	}
	m.taskPanicTotal.WithLabelValues(normalizeLabel(scheduler, "unknown"), kind.String()).Inc()
}

// RecordQueueDepth records queue depth.
func (m *MetricsExporter) RecordQueueDepth(scheduler string, kind core.TaskKind, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(normalizeLabel(scheduler, "unknown"), kind.String()).Set(float64(depth))
}

// RecordFlush records one flush.
func (m *MetricsExporter) RecordFlush(scheduler string, duration time.Duration, tasks int, complete bool) {
	if m == nil {
		return
	}
	name := normalizeLabel(scheduler, "unknown")
	m.flushDurationSeconds.WithLabelValues(name).Observe(duration.Seconds())
	m.flushTasks.WithLabelValues(name).Add(float64(tasks))
	if !complete {
		m.flushIncompleteTotal.WithLabelValues(name).Inc()
	}
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
