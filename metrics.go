package umapsgd

import (
	"sync/atomic"
	"time"
)

// EpochStats describes one completed epoch.
type EpochStats struct {
	Epoch       int
	Alpha       float64
	Sampled     int64 // Edges that applied an attractive update
	Negative    int64 // Negative samples that applied a repulsive update
	SkippedSelf int64 // Coincident self samples that were skipped
	Duration    time.Duration
}

// MetricsCollector is an interface for collecting operational metrics.
// Implementations can export metrics to Prometheus, StatsD, etc.
type MetricsCollector interface {
	// RecordPrune records edge thresholding before a run.
	RecordPrune(before, after int)

	// RecordEpoch records one completed epoch.
	RecordEpoch(stats EpochStats)

	// RecordRun records the outcome of a whole run.
	RecordRun(epochs int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPrune(int, int)                {}
func (NoopMetricsCollector) RecordEpoch(EpochStats)              {}
func (NoopMetricsCollector) RecordRun(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Thread-safe using atomic operations.
type BasicMetricsCollector struct {
	EdgesPruned   atomic.Int64
	EdgesActive   atomic.Int64
	EpochCount    atomic.Int64
	EpochNanos    atomic.Int64
	SampledCount  atomic.Int64
	NegativeCount atomic.Int64
	SkippedCount  atomic.Int64
	RunCount      atomic.Int64
	RunErrors     atomic.Int64
	RunNanos      atomic.Int64
	lastEpoch     atomic.Int64
}

// RecordPrune records edge thresholding before a run.
func (m *BasicMetricsCollector) RecordPrune(before, after int) {
	m.EdgesPruned.Add(int64(before - after))
	m.EdgesActive.Store(int64(after))
}

// RecordEpoch records one completed epoch.
func (m *BasicMetricsCollector) RecordEpoch(stats EpochStats) {
	m.EpochCount.Add(1)
	m.EpochNanos.Add(stats.Duration.Nanoseconds())
	m.SampledCount.Add(stats.Sampled)
	m.NegativeCount.Add(stats.Negative)
	m.SkippedCount.Add(stats.SkippedSelf)
	m.lastEpoch.Store(int64(stats.Epoch))
}

// RecordRun records the outcome of a whole run.
func (m *BasicMetricsCollector) RecordRun(_ int, duration time.Duration, err error) {
	m.RunCount.Add(1)
	m.RunNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (m *BasicMetricsCollector) GetStats() MetricsStats {
	epochs := m.EpochCount.Load()
	var avgEpoch int64
	if epochs > 0 {
		avgEpoch = m.EpochNanos.Load() / epochs
	}

	return MetricsStats{
		EdgesPruned:   m.EdgesPruned.Load(),
		EdgesActive:   m.EdgesActive.Load(),
		EpochCount:    epochs,
		EpochAvgNanos: avgEpoch,
		SampledCount:  m.SampledCount.Load(),
		NegativeCount: m.NegativeCount.Load(),
		SkippedCount:  m.SkippedCount.Load(),
		LastEpoch:     m.lastEpoch.Load(),
		RunCount:      m.RunCount.Load(),
		RunErrors:     m.RunErrors.Load(),
		RunTotalNanos: m.RunNanos.Load(),
	}
}

// MetricsStats is a snapshot of metrics at a point in time.
type MetricsStats struct {
	EdgesPruned   int64
	EdgesActive   int64
	EpochCount    int64
	EpochAvgNanos int64
	SampledCount  int64
	NegativeCount int64
	SkippedCount  int64
	LastEpoch     int64
	RunCount      int64
	RunErrors     int64
	RunTotalNanos int64
}
