package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrRunLimit is returned by TryAcquireRun when every run slot is taken.
var ErrRunLimit = errors.New("concurrent run limit reached")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for run-scoped buffers (schedule
	// state, pruned edge lists).
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentRuns is the maximum number of optimizer runs in flight.
	// If 0, defaults to 1.
	MaxConcurrentRuns int64

	// IOLimitBytesPerSec is the maximum checkpoint IO throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages resources shared by concurrent optimizer runs
// (memory, run slots, checkpoint IO).
//
// A nil *Controller is valid and imposes no limits.
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Concurrency
	runSem *semaphore.Weighted

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentRuns <= 0 {
		cfg.MaxConcurrentRuns = 1
	}

	c := &Controller{
		cfg:    cfg,
		runSem: semaphore.NewWeighted(cfg.MaxConcurrentRuns),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireMemory attempts to reserve memory.
// If a hard limit is configured and usage would exceed it,
// this blocks until memory is available or ctx is canceled.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory attempts to reserve memory without blocking.
// Returns true if acquired, false if limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil {
		return true
	}
	if bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireRun reserves a run slot.
// Blocks if all slots are busy.
func (c *Controller) AcquireRun(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.runSem.Acquire(ctx, 1)
}

// TryAcquireRun reserves a run slot without blocking.
func (c *Controller) TryAcquireRun() error {
	if c == nil {
		return nil
	}
	if !c.runSem.TryAcquire(1) {
		return ErrRunLimit
	}
	return nil
}

// ReleaseRun releases a run slot.
func (c *Controller) ReleaseRun() {
	if c == nil {
		return
	}
	c.runSem.Release(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the burst are split into burst-sized waits.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
