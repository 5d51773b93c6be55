package umapsgd

import (
	"log/slog"
	"time"

	"github.com/hupe1980/umapsgd/resource"
)

// SeedSource yields the PRNG seed for one epoch.
type SeedSource func(epoch int) uint64

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	seedSource       SeedSource
	workers          int
	resources        *resource.Controller
	checkNonFinite   bool
}

// Option configures optimizer runs.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring runs.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &umapsgd.BasicMetricsCollector{}
//	res, _ := umapsgd.Embed(ctx, graph, emb, params, umapsgd.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Epochs: %d, Avg latency: %dns\n", stats.EpochCount, stats.EpochAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for runs.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := umapsgd.NewJSONLogger(slog.LevelDebug)
//	res, _ := umapsgd.Embed(ctx, graph, emb, params, umapsgd.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithSeed makes negative sampling reproducible. Each epoch draws from a seed
// derived from seed and the epoch index. Bit-identical results additionally
// require WithWorkers(1).
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seedSource = func(epoch int) uint64 {
			return mixSeed(seed, uint64(epoch))
		}
	}
}

// WithSeedSource installs a custom per-epoch seed source.
func WithSeedSource(src SeedSource) Option {
	return func(o *options) {
		o.seedSource = src
	}
}

// WithWorkers sets the number of kernel workers. n <= 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithResourceController bounds concurrent runs and run-scoped memory.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithNonFiniteCheck scans the embedding at every epoch boundary and aborts
// the run with ErrNonFinite once a NaN or Inf appears.
func WithNonFiniteCheck(enabled bool) Option {
	return func(o *options) {
		o.checkNonFinite = enabled
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.seedSource == nil {
		o.seedSource = ClockSeedSource()
	}
	return o
}

// ClockSeedSource returns a SeedSource drawing one base seed from the wall
// clock. Runs are not reproducible with it.
func ClockSeedSource() SeedSource {
	base := uint64(time.Now().UnixNano())
	return func(epoch int) uint64 {
		return mixSeed(base, uint64(epoch))
	}
}

// mixSeed is the splitmix64 finalizer over seed and epoch.
func mixSeed(seed, epoch uint64) uint64 {
	z := seed + (epoch+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
