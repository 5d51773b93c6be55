package umapsgd

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/umapsgd/coo"
	"github.com/hupe1980/umapsgd/internal/kernel"
	"github.com/hupe1980/umapsgd/internal/schedule"
)

// OptimizeLayout runs params.NEpochs epochs of UMAP stochastic gradient
// descent over the edges of graph, updating head in place.
//
// If head and tail are the same *Embedding the run is in fit mode and
// attraction moves both endpoints. Otherwise only head moves and tail is a
// fixed reference. epochsPerSample holds one entry per edge of graph, as built
// by the launcher; NEpochs is used as is, so 0 runs no epochs.
//
// Epochs are a strict barrier: every update of epoch n is applied before
// epoch n+1 starts and before params.Callback sees the embedding.
// Cancellation of ctx is observed between epochs.
func OptimizeLayout(ctx context.Context, head, tail *Embedding, graph *coo.Matrix, epochsPerSample []float64, params Params, optFns ...Option) error {
	o := applyOptions(optFns)

	start := time.Now()
	epochs, err := optimizeLayout(ctx, head, tail, graph, epochsPerSample, params, &o)
	duration := time.Since(start)

	o.metricsCollector.RecordRun(epochs, duration, err)
	o.logger.LogRun(ctx, epochs, duration, err)

	return err
}

func optimizeLayout(ctx context.Context, head, tail *Embedding, graph *coo.Matrix, epochsPerSample []float64, params Params, o *options) (int, error) {
	if err := params.Validate(); err != nil {
		return 0, err
	}
	if err := checkLayoutInputs(head, tail, graph, epochsPerSample, params.NComponents); err != nil {
		return 0, err
	}

	if err := o.resources.AcquireRun(ctx); err != nil {
		return 0, err
	}
	defer o.resources.ReleaseRun()

	nnz := graph.NNZ()
	stateBytes := schedule.SizeBytes(nnz)
	if err := o.resources.AcquireMemory(ctx, stateBytes); err != nil {
		return 0, err
	}
	defer o.resources.ReleaseMemory(stateBytes)

	state := schedule.New(epochsPerSample, params.NegativeSampleRate)
	moveOther := head == tail
	runner := kernel.NewRunner(o.workers)
	nEpochs := params.NEpochs

	logger := o.logger.WithRun(head.Len(), nnz, head.Dim())

	for epoch := 0; epoch < nEpochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return epoch, err
		}

		epochStart := time.Now()
		args := &kernel.Args{
			Head:      head.data,
			Tail:      tail.data,
			HeadN:     head.Len(),
			TailN:     tail.Len(),
			Dim:       head.Dim(),
			Rows:      graph.Rows,
			Cols:      graph.Cols,
			Schedule:  state,
			MoveOther: moveOther,
			Epoch:     epoch,
			Alpha:     learningRate(params.InitialAlpha, epoch, nEpochs),
			A:         params.A,
			B:         params.B,
			Gamma:     params.RepulsionStrength,
			Seed:      o.seedSource(epoch),
		}

		ks, err := runner.Run(args)
		if err != nil {
			return epoch, translateError(err)
		}

		stats := EpochStats{
			Epoch:       epoch,
			Alpha:       args.Alpha,
			Sampled:     ks.Sampled,
			Negative:    ks.Negative,
			SkippedSelf: ks.SkippedSelf,
			Duration:    time.Since(epochStart),
		}
		o.metricsCollector.RecordEpoch(stats)
		logger.LogEpoch(ctx, stats)

		if o.checkNonFinite {
			if i := head.firstNonFinite(); i >= 0 {
				return epoch + 1, fmt.Errorf("%w: epoch %d vertex %d", ErrNonFinite, epoch, i/head.Dim())
			}
			if !moveOther {
				if i := tail.firstNonFinite(); i >= 0 {
					return epoch + 1, fmt.Errorf("%w: epoch %d tail vertex %d", ErrNonFinite, epoch, i/tail.Dim())
				}
			}
		}

		if params.Callback != nil {
			if err := params.Callback.OnEpochEnd(ctx, epoch, head); err != nil {
				return epoch + 1, fmt.Errorf("epoch %d callback: %w", epoch, err)
			}
		}
	}

	return nEpochs, nil
}

// learningRate returns the step size of epoch, decaying linearly from
// initial at epoch 0 towards 0 at nEpochs.
func learningRate(initial float64, epoch, nEpochs int) float64 {
	return initial * (1 - float64(epoch)/float64(nEpochs))
}

func checkLayoutInputs(head, tail *Embedding, graph *coo.Matrix, epochsPerSample []float64, dim int) error {
	if head == nil || tail == nil {
		return &ParamError{Field: "embedding", Value: nil}
	}
	if graph == nil {
		return &ParamError{Field: "graph", Value: nil}
	}
	if head.Dim() != dim {
		return &DimensionMismatchError{Expected: dim, Actual: head.Dim()}
	}
	if tail.Dim() != dim {
		return &DimensionMismatchError{Expected: dim, Actual: tail.Dim()}
	}

	nnz := graph.NNZ()
	if len(graph.Rows) != nnz || len(graph.Cols) != nnz {
		return fmt.Errorf("%w: %d rows, %d cols, %d values", coo.ErrInvalidMatrix, len(graph.Rows), len(graph.Cols), nnz)
	}
	if len(epochsPerSample) != nnz {
		return &DimensionMismatchError{Expected: nnz, Actual: len(epochsPerSample)}
	}

	for e := 0; e < nnz; e++ {
		if r := graph.Rows[e]; r < 0 || int(r) >= head.Len() {
			return &VertexRangeError{Edge: e, Vertex: r, Limit: head.Len()}
		}
		if c := graph.Cols[e]; c < 0 || int(c) >= tail.Len() {
			return &VertexRangeError{Edge: e, Vertex: c, Limit: tail.Len()}
		}
	}
	return nil
}
