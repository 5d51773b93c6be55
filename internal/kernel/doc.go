// Package kernel runs one epoch of UMAP stochastic gradient descent over all
// edges in parallel.
//
// Edges are partitioned into contiguous ranges, one goroutine per range, and
// the epoch ends when every range is done (errgroup.Wait is the barrier).
// Every worker may write any embedding row it touches; writes are combined with
// atomic float adds, reads go through atomic loads. Schedule counters of an
// edge are owned by the worker holding that edge.
//
// A worker panic (for example an out-of-range vertex index) aborts the epoch
// with ErrFailure. There is no retry.
package kernel
