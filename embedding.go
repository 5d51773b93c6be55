package umapsgd

import (
	"fmt"
	"math"
)

// Embedding is a mutable n x dim float32 matrix stored row-major in one flat
// slice. The optimizer updates it in place.
type Embedding struct {
	data []float32
	n    int
	dim  int
}

// NewEmbedding allocates a zeroed n x dim embedding.
func NewEmbedding(n, dim int) *Embedding {
	return &Embedding{
		data: make([]float32, n*dim),
		n:    n,
		dim:  dim,
	}
}

// NewEmbeddingFrom wraps data without copying. len(data) must be a multiple
// of dim.
func NewEmbeddingFrom(data []float32, dim int) (*Embedding, error) {
	if dim <= 0 {
		return nil, &ParamError{Field: "dim", Value: dim}
	}
	if len(data)%dim != 0 {
		return nil, &DimensionMismatchError{Expected: dim, Actual: len(data) % dim}
	}
	return &Embedding{
		data: data,
		n:    len(data) / dim,
		dim:  dim,
	}, nil
}

// Len returns the number of rows.
func (e *Embedding) Len() int { return e.n }

// Dim returns the number of components per row.
func (e *Embedding) Dim() int { return e.dim }

// Row returns row i as a sub-slice of the backing data.
func (e *Embedding) Row(i int) []float32 {
	return e.data[i*e.dim : (i+1)*e.dim]
}

// Data returns the backing row-major slice.
func (e *Embedding) Data() []float32 { return e.data }

// Clone returns a deep copy.
func (e *Embedding) Clone() *Embedding {
	data := make([]float32, len(e.data))
	copy(data, e.data)
	return &Embedding{data: data, n: e.n, dim: e.dim}
}

// firstNonFinite returns the index of the first NaN or Inf coordinate, or -1.
func (e *Embedding) firstNonFinite() int {
	for i, v := range e.data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return i
		}
	}
	return -1
}

func (e *Embedding) String() string {
	return fmt.Sprintf("Embedding(%dx%d)", e.n, e.dim)
}
