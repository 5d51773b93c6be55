// Package prometheus exports layout optimization metrics to Prometheus.
//
//	c := prometheus.NewCollector(prom.DefaultRegisterer)
//	umapsgd.Embed(ctx, graph, emb, params, umapsgd.WithMetricsCollector(c))
//	http.Handle("/metrics", promhttp.Handler())
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/umapsgd"
)

// Collector implements umapsgd.MetricsCollector with Prometheus metrics.
type Collector struct {
	edgesPruned  prometheus.Counter
	edgesActive  prometheus.Gauge
	epochs       prometheus.Counter
	epochLatency prometheus.Histogram
	samples      *prometheus.CounterVec
	lastEpoch    prometheus.Gauge
	learningRate prometheus.Gauge
	runs         *prometheus.CounterVec
	runLatency   prometheus.Histogram
	epochsPerRun prometheus.Histogram
}

var _ umapsgd.MetricsCollector = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
// A nil reg leaves the metrics unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		edgesPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "umapsgd_edges_pruned_total",
			Help: "Edges removed by weight thresholding",
		}),
		edgesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "umapsgd_edges_active",
			Help: "Edges optimized by the current run",
		}),
		epochs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "umapsgd_epochs_total",
			Help: "Completed optimization epochs",
		}),
		epochLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "umapsgd_epoch_duration_seconds",
			Help:    "Wall time of one epoch",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "umapsgd_samples_total",
			Help: "Updates applied by the edge kernel",
		}, []string{"kind"}),
		lastEpoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "umapsgd_last_epoch",
			Help: "Index of the most recently completed epoch",
		}),
		learningRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "umapsgd_learning_rate",
			Help: "Learning rate of the most recently completed epoch",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "umapsgd_runs_total",
			Help: "Finished optimization runs",
		}, []string{"status"}),
		runLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "umapsgd_run_duration_seconds",
			Help:    "Wall time of a whole optimization run",
			Buckets: prometheus.DefBuckets,
		}),
		epochsPerRun: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "umapsgd_run_epochs",
			Help:    "Epochs completed per run",
			Buckets: []float64{10, 50, 100, 200, 500, 1000},
		}),
	}

	if reg != nil {
		reg.MustRegister(
			c.edgesPruned,
			c.edgesActive,
			c.epochs,
			c.epochLatency,
			c.samples,
			c.lastEpoch,
			c.learningRate,
			c.runs,
			c.runLatency,
			c.epochsPerRun,
		)
	}
	return c
}

// RecordPrune records edge thresholding before a run.
func (c *Collector) RecordPrune(before, after int) {
	c.edgesPruned.Add(float64(before - after))
	c.edgesActive.Set(float64(after))
}

// RecordEpoch records one completed epoch.
func (c *Collector) RecordEpoch(stats umapsgd.EpochStats) {
	c.epochs.Inc()
	c.epochLatency.Observe(stats.Duration.Seconds())
	c.samples.WithLabelValues("attractive").Add(float64(stats.Sampled))
	c.samples.WithLabelValues("negative").Add(float64(stats.Negative))
	c.samples.WithLabelValues("skipped_self").Add(float64(stats.SkippedSelf))
	c.lastEpoch.Set(float64(stats.Epoch))
	c.learningRate.Set(stats.Alpha)
}

// RecordRun records the outcome of a whole run.
func (c *Collector) RecordRun(epochs int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.runs.WithLabelValues(status).Inc()
	c.runLatency.Observe(d.Seconds())
	c.epochsPerRun.Observe(float64(epochs))
}
