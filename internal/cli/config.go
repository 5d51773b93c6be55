package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/hupe1980/umapsgd"
	"github.com/hupe1980/umapsgd/checkpoint"
	"github.com/hupe1980/umapsgd/resource"
)

// Config is the TOML run configuration. Command-line flags override it.
//
//	seed = 42
//	workers = 8
//
//	[params]
//	n_components = 2
//	n_epochs = 200
//
//	[curve]
//	spread = 1.0
//	min_dist = 0.1
//
//	[checkpoint]
//	uri = "s3://bucket/runs"
//	prefix = "mnist"
//	every = 50
//	interval = "30s"
//	compression = "zstd"
//
//	[resources]
//	max_concurrent_runs = 1
//	io_limit_bytes_per_sec = 10485760
type Config struct {
	Seed        uint64           `toml:"seed"`
	Workers     int              `toml:"workers"`
	MetricsAddr string           `toml:"metrics_addr"`
	Params      umapsgd.Params   `toml:"params"`
	Curve       CurveConfig      `toml:"curve"`
	Checkpoint  CheckpointConfig `toml:"checkpoint"`
	Resources   ResourceConfig   `toml:"resources"`

	// HasSeed reports whether seed was set. Without a seed runs draw one
	// from the clock.
	HasSeed bool `toml:"-"`
}

// CurveConfig fits params.a and params.b when Spread is positive.
type CurveConfig struct {
	Spread  float64 `toml:"spread"`
	MinDist float64 `toml:"min_dist"`
}

// CheckpointConfig configures checkpoint.Writer.
type CheckpointConfig struct {
	URI         string        `toml:"uri"`
	Prefix      string        `toml:"prefix"`
	Every       int           `toml:"every"`
	Interval    time.Duration `toml:"interval"`
	Keep        int           `toml:"keep"`
	Compression string        `toml:"compression"`
}

// ResourceConfig maps onto resource.Config.
type ResourceConfig struct {
	MemoryLimitBytes   int64 `toml:"memory_limit_bytes"`
	MaxConcurrentRuns  int64 `toml:"max_concurrent_runs"`
	IOLimitBytesPerSec int64 `toml:"io_limit_bytes_per_sec"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	def := checkpoint.DefaultOptions()
	return Config{
		Params: umapsgd.DefaultParams(),
		Checkpoint: CheckpointConfig{
			Prefix:      "run",
			Every:       def.Every,
			Compression: def.Compression.String(),
		},
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig. Unknown keys are
// rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return parseConfig(string(data), cfg)
}

func parseConfig(data string, cfg Config) (Config, error) {
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	cfg.HasSeed = md.IsDefined("seed")
	return cfg, nil
}

// resolveParams fits a/b from the curve section when requested and
// validates the result.
func (cfg *Config) resolveParams() (umapsgd.Params, error) {
	p := cfg.Params
	if cfg.Curve.Spread > 0 {
		a, b, err := umapsgd.FindABParams(cfg.Curve.Spread, cfg.Curve.MinDist)
		if err != nil {
			return p, err
		}
		p.A, p.B = a, b
	}
	return p, p.Validate()
}

// resources builds a controller, or nil when no limit is set.
func (cfg *Config) resources() *resource.Controller {
	r := cfg.Resources
	if r == (ResourceConfig{}) {
		return nil
	}
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   r.MemoryLimitBytes,
		MaxConcurrentRuns:  r.MaxConcurrentRuns,
		IOLimitBytesPerSec: r.IOLimitBytesPerSec,
	})
}

// options translates the run settings into optimizer options.
func (cfg *Config) options(c *CLI, rc *resource.Controller, mc umapsgd.MetricsCollector) []umapsgd.Option {
	opts := []umapsgd.Option{
		umapsgd.WithLogger(c.slogger()),
		umapsgd.WithResourceController(rc),
		umapsgd.WithWorkers(cfg.Workers),
	}
	if cfg.HasSeed {
		opts = append(opts, umapsgd.WithSeed(cfg.Seed))
	}
	if mc != nil {
		opts = append(opts, umapsgd.WithMetricsCollector(mc))
	}
	return opts
}
