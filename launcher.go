package umapsgd

import (
	"context"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/umapsgd/coo"
	"github.com/hupe1980/umapsgd/internal/schedule"
)

// Result reports what a launcher run did.
type Result struct {
	// NEpochs is the effective epoch count after defaulting.
	NEpochs int

	// Threshold is the weight below which edges were pruned.
	Threshold float64

	// Pruned holds the indices (into the input graph) of removed edges.
	Pruned *roaring.Bitmap

	// ActiveEdges is the number of edges that took part in the optimization.
	ActiveEdges int

	// Duration is the wall time of the whole run.
	Duration time.Duration
}

// Embed optimizes emb in place as the layout of the symmetric graph (fit mode).
//
// Edges whose weight is strictly below max_weight/n_epochs are dropped first.
// When nothing is left the embedding is returned unchanged. graph is not
// modified.
func Embed(ctx context.Context, graph *coo.Matrix, emb *Embedding, params Params, optFns ...Option) (*Result, error) {
	return launch(ctx, graph, emb, emb, params, optFns)
}

// Transform optimizes head in place against the fixed reference embedding
// tail. graph has one row per head vertex and one column per tail vertex.
func Transform(ctx context.Context, graph *coo.Matrix, head, tail *Embedding, params Params, optFns ...Option) (*Result, error) {
	return launch(ctx, graph, head, tail, params, optFns)
}

func launch(ctx context.Context, graph *coo.Matrix, head, tail *Embedding, params Params, optFns []Option) (*Result, error) {
	start := time.Now()

	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := graph.Validate(); err != nil {
		return nil, err
	}
	if head == nil || tail == nil {
		return nil, &ParamError{Field: "embedding", Value: nil}
	}
	if graph.NRows != head.Len() {
		return nil, &DimensionMismatchError{Expected: head.Len(), Actual: graph.NRows}
	}
	if graph.NCols != tail.Len() {
		return nil, &DimensionMismatchError{Expected: tail.Len(), Actual: graph.NCols}
	}

	o := applyOptions(optFns)

	nEpochs := params.NEpochs
	if nEpochs == 0 {
		nEpochs = DefaultEpochs(graph.NRows)
	}

	threshold := float64(graph.MaxValue()) / float64(nEpochs)
	pruned, removed := coo.RemoveBelow(graph, threshold)

	o.metricsCollector.RecordPrune(graph.NNZ(), pruned.NNZ())
	o.logger.LogPrune(ctx, graph.NNZ(), pruned.NNZ(), threshold)

	res := &Result{
		NEpochs:     nEpochs,
		Threshold:   threshold,
		Pruned:      removed,
		ActiveEdges: pruned.NNZ(),
	}

	if pruned.NNZ() == 0 {
		res.Duration = time.Since(start)
		return res, nil
	}

	epochsPerSample := schedule.EpochsPerSample(pruned.Vals, nEpochs)
	sum := schedule.Summarize(epochsPerSample)
	o.logger.LogSchedule(ctx, sum.Min, sum.Max, sum.Never)

	params.NEpochs = nEpochs
	err := OptimizeLayout(ctx, head, tail, pruned, epochsPerSample, params, withOptions(o))
	res.Duration = time.Since(start)
	return res, err
}

// withOptions replays already resolved options.
func withOptions(resolved options) Option {
	return func(o *options) {
		*o = resolved
	}
}
