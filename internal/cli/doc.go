// Package cli implements the umapsgd command-line interface.
//
// # Commands
//
//   - embed: optimize a layout for a weighted edge list
//   - transform: place new points against a fixed reference layout
//   - checkpoint list|export: inspect and export saved snapshots
//   - fit-ab: fit the a/b curve parameters from spread and min_dist
//
// # Input Formats
//
// Edge lists are whitespace separated "row col weight" lines; blank lines and
// lines starting with '#' are ignored. Embeddings are CSV files with one row
// per vertex.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The
// charmbracelet/log logger also serves as the slog handler of the optimizer,
// so epoch and schedule events appear in the same stream.
package cli
