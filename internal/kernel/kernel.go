package kernel

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/cpu"

	"github.com/hupe1980/umapsgd/internal/atomicf"
	"github.com/hupe1980/umapsgd/internal/gradient"
	"github.com/hupe1980/umapsgd/internal/philox"
	"github.com/hupe1980/umapsgd/internal/schedule"
)

// ErrFailure is returned when a worker could not complete its edge range.
var ErrFailure = errors.New("kernel execution failed")

// Args is the read-only parameter snapshot broadcast to all workers of one epoch.
type Args struct {
	Head  []float32 // Head embedding, row-major HeadN x Dim
	Tail  []float32 // Tail embedding, row-major TailN x Dim (aliases Head in fit mode)
	HeadN int
	TailN int
	Dim   int

	Rows     []int32 // Head vertex per edge
	Cols     []int32 // Tail vertex per edge
	Schedule *schedule.State

	// MoveOther applies the reciprocal attractive update to the tail row.
	MoveOther bool

	// Epoch is the 0-based epoch index. Edges are scheduled on epoch end
	// times: an edge is due when its next-sample epoch is <= Epoch+1.
	Epoch int
	Alpha float64

	A, B  float64
	Gamma float64
	Seed  uint64
}

// Stats counts what one epoch did.
type Stats struct {
	Sampled     int64 // Edges that applied an attractive update
	Negative    int64 // Negative samples that applied a repulsive update
	SkippedSelf int64 // Negative samples skipped as coincident self samples
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Sampled += o.Sampled
	s.Negative += o.Negative
	s.SkippedSelf += o.SkippedSelf
}

type workerStats struct {
	Stats
	_ cpu.CacheLinePad
}

// Runner executes epochs with a fixed degree of parallelism.
type Runner struct {
	workers int
}

// NewRunner returns a Runner with the given number of workers.
// workers <= 0 selects runtime.GOMAXPROCS(0).
func NewRunner(workers int) *Runner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{workers: workers}
}

// Workers returns the configured degree of parallelism.
func (r *Runner) Workers() int { return r.workers }

// Run executes one epoch over all edges and returns once every edge update of
// the epoch has been applied.
func (r *Runner) Run(args *Args) (Stats, error) {
	nnz := len(args.Rows)
	if nnz == 0 {
		return Stats{}, nil
	}

	workers := min(r.workers, nnz)
	chunk := (nnz + workers - 1) / workers
	stats := make([]workerStats, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, nnz)
		if lo >= hi {
			break
		}
		st := &stats[w].Stats
		g.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("%w: edges [%d,%d) epoch %d: %v", ErrFailure, lo, hi, args.Epoch, rec)
				}
			}()
			newWorker(args, st).run(lo, hi)
			return nil
		})
	}

	err := g.Wait()

	var total Stats
	for i := range stats {
		total.Add(stats[i].Stats)
	}
	return total, err
}

type worker struct {
	args  *Args
	stats *Stats
	gen   philox.Generator
	cur   []float32
	oth   []float32
}

func newWorker(args *Args, stats *Stats) *worker {
	return &worker{
		args:  args,
		stats: stats,
		cur:   make([]float32, args.Dim),
		oth:   make([]float32, args.Dim),
	}
}

func (w *worker) run(lo, hi int) {
	for e := lo; e < hi; e++ {
		w.edge(e)
	}
}

func (w *worker) edge(e int) {
	a := w.args
	s := a.Schedule
	clock := a.Epoch + 1

	if !s.Due(e, clock) {
		return
	}

	dim := a.Dim
	j := int(a.Rows[e])
	k := int(a.Cols[e])
	current := a.Head[j*dim : (j+1)*dim]
	other := a.Tail[k*dim : (k+1)*dim]

	atomicf.LoadRow(w.cur, current)
	atomicf.LoadRow(w.oth, other)

	d2 := gradient.SquaredDistance(w.cur, w.oth)
	coeff := gradient.AttractiveCoeff(d2, a.A, a.B)

	for d := 0; d < dim; d++ {
		grad := gradient.ClipGrad(coeff * (float64(w.cur[d]) - float64(w.oth[d])))
		atomicf.Add(&current[d], float32(grad*a.Alpha))
		if a.MoveOther {
			atomicf.Add(&other[d], float32(-grad*a.Alpha))
		}
	}
	w.stats.Sampled++

	s.AdvanceSample(e)

	nNeg := s.NegativeSamplesDue(e, clock)
	w.gen.Reset(a.Seed, uint64(e))
	for p := 0; p < nNeg; p++ {
		t := w.gen.Intn(a.TailN)
		negative := a.Tail[t*dim : (t+1)*dim]

		atomicf.LoadRow(w.cur, current)
		atomicf.LoadRow(w.oth, negative)
		d2 = gradient.SquaredDistance(w.cur, w.oth)

		var rc float64
		if d2 > 0 {
			rc = gradient.RepulsiveCoeff(d2, a.Gamma, a.A, a.B)
		} else if t == j {
			w.stats.SkippedSelf++
			continue
		}

		for d := 0; d < dim; d++ {
			grad := gradient.RepulsiveFallback
			if rc > 0 {
				grad = gradient.ClipGrad(rc * (float64(w.cur[d]) - float64(w.oth[d])))
			}
			atomicf.Add(&current[d], float32(grad*a.Alpha))
		}
		w.stats.Negative++
	}

	s.AdvanceNegative(e, nNeg)
}
