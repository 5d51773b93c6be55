// Package philox implements the Philox4x32-10 counter-based random number
// generator (Salmon et al., "Parallel Random Numbers: As Easy as 1, 2, 3").
//
// A counter-based generator is a pure function of (key, counter), so any
// worker can draw the i-th number of any stream without shared state. The
// layout kernel keys it with the epoch seed and uses the edge index as the
// stream, which makes negative sampling reproducible per (seed, edge, draw).
//
// The 128-bit counter is split into a 64-bit block index (low words) and a
// 64-bit stream id (high words). Each block yields four 32-bit outputs.
package philox
