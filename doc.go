// Package umapsgd computes low-dimensional graph layouts with the UMAP
// stochastic gradient descent optimizer.
//
// Connected vertices attract, randomly sampled vertices repel. Every edge is
// visited on its own epoch schedule, so heavy edges are sampled often and
// light edges rarely, and every epoch is a parallel pass over all edges that
// updates one shared embedding with lock-free atomic adds.
//
// # Quick Start
//
// Fit a layout for a symmetric weighted graph:
//
//	graph, _ := coo.New(rows, cols, weights, n, n)
//	emb := umapsgd.NewEmbedding(n, 2)
//	// ... initialise emb, e.g. spectrally or uniformly in [-10, 10)
//	res, err := umapsgd.Embed(ctx, graph, emb, umapsgd.DefaultParams())
//
// Project new points against a fixed reference layout:
//
//	res, err := umapsgd.Transform(ctx, graph, head, reference, params)
//
// # Parameters
//
// Params.A and Params.B shape the membership curve. DefaultParams matches
// spread 1 and min_dist 0.1; FindABParams fits them for other settings:
//
//	a, b, _ := umapsgd.FindABParams(1.0, 0.5)
//
// NEpochs 0 selects 500 epochs for graphs with at most 10000 vertices and 200
// otherwise. Edges lighter than max_weight/NEpochs are dropped before the run
// and reported in Result.Pruned.
//
// # Reproducibility
//
// Negative sampling uses a counter-based Philox generator keyed by a
// per-epoch seed and the edge index. Without WithSeed the seed comes from the
// wall clock. Concurrent float additions make results depend on scheduling,
// so bit-identical runs need both WithSeed and WithWorkers(1):
//
//	umapsgd.Embed(ctx, graph, emb, params, umapsgd.WithSeed(42), umapsgd.WithWorkers(1))
//
// # Observability
//
// Runs accept a *Logger (log/slog), a MetricsCollector (see package
// metrics/prometheus for a Prometheus implementation) and a ProgressCallback
// invoked at every epoch boundary. Package checkpoint provides a callback that
// snapshots the embedding into a blobstore.Store.
package umapsgd
