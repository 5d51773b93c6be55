package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/umapsgd/coo"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// FillGaussian fills dst with values from a standard normal distribution.
func (r *RNG) FillGaussian(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = float32(r.rand.NormFloat64())
	}
}

// UniformEmbedding returns a flat n x dim row-major embedding with values in
// [-10, 10), the usual random initialisation for layouts.
func (r *RNG) UniformEmbedding(n, dim int) []float32 {
	data := make([]float32, n*dim)
	r.FillUniformRange(data, -10, 10)
	return data
}

// ClusteredEmbedding returns a flat n x dim embedding whose rows are spread
// around `clusters` centroids placed on a circle of radius 10 in the first two
// components. Row i belongs to cluster i % clusters.
func (r *RNG) ClusteredEmbedding(n, dim, clusters int, noise float32) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, n*dim)
	for i := range n {
		c := i % clusters
		angle := 2 * math.Pi * float64(c) / float64(clusters)
		row := data[i*dim : (i+1)*dim]
		for d := range row {
			var center float64
			switch d {
			case 0:
				center = 10 * math.Cos(angle)
			case 1:
				center = 10 * math.Sin(angle)
			}
			row[d] = float32(center) + float32(r.rand.NormFloat64())*noise
		}
	}
	return data
}

// RandomGraph returns a symmetric graph over n vertices where every vertex is
// joined to `degree` random other vertices with weights in (0, 1].
// Both directions of an edge carry the same weight.
func (r *RNG) RandomGraph(n, degree int) *coo.Matrix {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := &coo.Matrix{NRows: n, NCols: n}
	for i := range n {
		for range degree {
			j := r.rand.Intn(n - 1)
			if j >= i {
				j++
			}
			w := 1 - r.rand.Float32()
			m.Rows = append(m.Rows, int32(i), int32(j))
			m.Cols = append(m.Cols, int32(j), int32(i))
			m.Vals = append(m.Vals, w, w)
		}
	}
	return m
}

// Ring returns the symmetric cycle 0-1-...-(n-1)-0 with unit weights.
func Ring(n int) *coo.Matrix {
	m := &coo.Matrix{NRows: n, NCols: n}
	for i := range n {
		j := (i + 1) % n
		m.Rows = append(m.Rows, int32(i), int32(j))
		m.Cols = append(m.Cols, int32(j), int32(i))
		m.Vals = append(m.Vals, 1, 1)
	}
	return m
}

// Star returns the symmetric star with vertex 0 at the center and n-1
// leaves. Leaf i has weight i/(n-1), so the lightest leaves fall below the
// pruning threshold of short runs.
func Star(n int) *coo.Matrix {
	m := &coo.Matrix{NRows: n, NCols: n}
	for i := 1; i < n; i++ {
		w := float32(i) / float32(n-1)
		m.Rows = append(m.Rows, 0, int32(i))
		m.Cols = append(m.Cols, int32(i), 0)
		m.Vals = append(m.Vals, w, w)
	}
	return m
}

// Bipartite returns a transform graph joining each of nHead query vertices to
// `k` consecutive reference vertices out of nTail, with unit weights.
func Bipartite(nHead, nTail, k int) *coo.Matrix {
	m := &coo.Matrix{NRows: nHead, NCols: nTail}
	for i := range nHead {
		for j := range k {
			m.Rows = append(m.Rows, int32(i))
			m.Cols = append(m.Cols, int32((i+j)%nTail))
			m.Vals = append(m.Vals, 1)
		}
	}
	return m
}

// SquaredDistance returns the squared Euclidean distance between rows i and j
// of a flat dim-wide embedding.
func SquaredDistance(data []float32, dim, i, j int) float64 {
	var sum float64
	for d := range dim {
		diff := float64(data[i*dim+d]) - float64(data[j*dim+d])
		sum += diff * diff
	}
	return sum
}

// MeanEdgeDistance returns the mean Euclidean length of the edges of g in a
// flat dim-wide embedding.
func MeanEdgeDistance(g *coo.Matrix, data []float32, dim int) float64 {
	if g.NNZ() == 0 {
		return 0
	}
	var sum float64
	for e := range g.Rows {
		sum += math.Sqrt(SquaredDistance(data, dim, int(g.Rows[e]), int(g.Cols[e])))
	}
	return sum / float64(g.NNZ())
}
