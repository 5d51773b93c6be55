package coo

import (
	"errors"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// ErrInvalidMatrix is returned for structurally invalid COO input.
var ErrInvalidMatrix = errors.New("invalid coo matrix")

// Matrix is a sparse matrix in coordinate format.
type Matrix struct {
	Rows  []int32   // Row (head vertex) indices
	Cols  []int32   // Column (tail vertex) indices
	Vals  []float32 // Edge weights
	NRows int       // Number of rows
	NCols int       // Number of columns
}

// New builds a Matrix from parallel arrays and validates it.
// The slices are used directly, not copied.
func New(rows, cols []int32, vals []float32, nRows, nCols int) (*Matrix, error) {
	m := &Matrix{Rows: rows, Cols: cols, Vals: vals, NRows: nRows, NCols: nCols}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int {
	if m == nil {
		return 0
	}
	return len(m.Vals)
}

// Validate checks array lengths, index bounds and that every weight is a
// finite, non-negative number.
func (m *Matrix) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil matrix", ErrInvalidMatrix)
	}
	if len(m.Rows) != len(m.Vals) || len(m.Cols) != len(m.Vals) {
		return fmt.Errorf("%w: length mismatch rows=%d cols=%d vals=%d",
			ErrInvalidMatrix, len(m.Rows), len(m.Cols), len(m.Vals))
	}
	if m.NRows < 0 || m.NCols < 0 {
		return fmt.Errorf("%w: negative shape %dx%d", ErrInvalidMatrix, m.NRows, m.NCols)
	}
	for i := range m.Vals {
		if r := m.Rows[i]; r < 0 || int(r) >= m.NRows {
			return fmt.Errorf("%w: entry %d row %d out of range [0,%d)", ErrInvalidMatrix, i, r, m.NRows)
		}
		if c := m.Cols[i]; c < 0 || int(c) >= m.NCols {
			return fmt.Errorf("%w: entry %d col %d out of range [0,%d)", ErrInvalidMatrix, i, c, m.NCols)
		}
		v := float64(m.Vals[i])
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: entry %d has weight %v", ErrInvalidMatrix, i, m.Vals[i])
		}
	}
	return nil
}

// MaxValue returns the largest stored weight, or 0 for an empty matrix.
func (m *Matrix) MaxValue() float32 {
	var maxVal float32
	for i, v := range m.Vals {
		if i == 0 || v > maxVal {
			maxVal = v
		}
	}
	return maxVal
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{
		Rows:  append([]int32(nil), m.Rows...),
		Cols:  append([]int32(nil), m.Cols...),
		Vals:  append([]float32(nil), m.Vals...),
		NRows: m.NRows,
		NCols: m.NCols,
	}
}

// ZeroBelow sets every weight strictly below threshold to zero in place and
// returns how many entries it zeroed. Weights are compared in float64.
func (m *Matrix) ZeroBelow(threshold float64) int {
	zeroed := 0
	for i, v := range m.Vals {
		if float64(v) < threshold && v != 0 {
			m.Vals[i] = 0
			zeroed++
		}
	}
	return zeroed
}

// RemoveZeros returns a new matrix without the zero-weight entries of m and a
// bitmap of the removed entry indices. m is not modified.
func RemoveZeros(m *Matrix) (*Matrix, *roaring.Bitmap) {
	return RemoveBelow(m, 0)
}

// RemoveBelow returns a new matrix keeping only entries whose weight is
// non-zero and not strictly below threshold, plus a bitmap of the removed
// entry indices. It is ZeroBelow followed by RemoveZeros without mutating m.
func RemoveBelow(m *Matrix, threshold float64) (*Matrix, *roaring.Bitmap) {
	removed := roaring.New()
	for i, v := range m.Vals {
		if v == 0 || float64(v) < threshold {
			removed.Add(uint32(i))
		}
	}

	keep := len(m.Vals) - int(removed.GetCardinality())
	out := &Matrix{
		Rows:  make([]int32, 0, keep),
		Cols:  make([]int32, 0, keep),
		Vals:  make([]float32, 0, keep),
		NRows: m.NRows,
		NCols: m.NCols,
	}
	for i, v := range m.Vals {
		if removed.Contains(uint32(i)) {
			continue
		}
		out.Rows = append(out.Rows, m.Rows[i])
		out.Cols = append(out.Cols, m.Cols[i])
		out.Vals = append(out.Vals, v)
	}
	return out, removed
}

// ActiveVertices returns the set of vertices that appear as head or tail of
// at least one stored entry.
func (m *Matrix) ActiveVertices() *roaring.Bitmap {
	bm := roaring.New()
	for i := range m.Vals {
		bm.Add(uint32(m.Rows[i]))
		bm.Add(uint32(m.Cols[i]))
	}
	return bm
}
