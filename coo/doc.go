// Package coo provides the sparse coordinate (COO) edge list consumed by the
// layout optimizer.
//
// A Matrix holds one record per directed edge as three parallel arrays. The
// upstream graph builder is expected to deliver it deduplicated and
// symmetrized; this package only validates, thresholds and compacts it.
//
// # Compaction
//
//	compacted, removed := coo.RemoveZeros(m)
//
// removed is a roaring bitmap of the original entry indices that were dropped,
// which callers use for reporting and to map results back to the input.
package coo
