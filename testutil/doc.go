// Package testutil provides testing utilities for umapsgd.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded random embeddings and small graphs with known shape.
//
// # Random Embeddings
//
//	rng := testutil.NewRNG(seed)
//	data := rng.UniformEmbedding(n, 2) // uniform [-10, 10)
//
// # Graphs
//
//	ring := testutil.Ring(100)
//	star := testutil.Star(50)
//	g := rng.RandomGraph(500, 8)
package testutil
