package umapsgd

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/umapsgd/coo"
	"github.com/hupe1980/umapsgd/testutil"
)

func TestEmbed_ThresholdScenario(t *testing.T) {
	g, err := coo.New(
		[]int32{0, 1, 2},
		[]int32{1, 2, 0},
		[]float32{0.01, 0.5, 1.0},
		3, 3,
	)
	require.NoError(t, err)

	emb, err := NewEmbeddingFrom([]float32{0, 0, 1, 0, 0, 1}, 2)
	require.NoError(t, err)

	res, err := Embed(context.Background(), g, emb, layoutParams(100), WithSeed(1))
	require.NoError(t, err)

	assert.Equal(t, 100, res.NEpochs)
	assert.InDelta(t, 0.01, res.Threshold, 1e-12)
	assert.Equal(t, 2, res.ActiveEdges)
	assert.Equal(t, []uint32{0}, res.Pruned.ToArray())

	// The input graph is left untouched.
	assert.Equal(t, []float32{0.01, 0.5, 1.0}, g.Vals)
}

func TestTransform_SingleEdgeScenario(t *testing.T) {
	g, err := coo.New([]int32{0}, []int32{1}, []float32{1}, 1, 2)
	require.NoError(t, err)

	head, err := NewEmbeddingFrom([]float32{0, 0}, 2)
	require.NoError(t, err)
	tail, err := NewEmbeddingFrom([]float32{-10, 0, 10, 0}, 2)
	require.NoError(t, err)

	p := layoutParams(1)
	p.NegativeSampleRate = 1

	res, err := Transform(context.Background(), g, head, tail, p, WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, 1, res.ActiveEdges)

	assert.Greater(t, head.Row(0)[0], float32(0))
	assert.InDelta(t, 0.17717788, head.Row(0)[0], 1e-5)
	assert.Zero(t, head.Row(0)[1])
	assert.Equal(t, []float32{-10, 0, 10, 0}, tail.Data())
}

func TestEmbed_NoEdges(t *testing.T) {
	g, err := coo.New(nil, nil, nil, 2, 2)
	require.NoError(t, err)

	emb, err := NewEmbeddingFrom([]float32{1, 2, 3, 4}, 2)
	require.NoError(t, err)

	res, err := Embed(context.Background(), g, emb, layoutParams(50))
	require.NoError(t, err)

	assert.Equal(t, 0, res.ActiveEdges)
	assert.Equal(t, []float32{1, 2, 3, 4}, emb.Data())
}

func TestEmbed_AllZeroWeights(t *testing.T) {
	g, err := coo.New([]int32{0, 1}, []int32{1, 0}, []float32{0, 0}, 2, 2)
	require.NoError(t, err)

	emb, err := NewEmbeddingFrom([]float32{1, 2, 3, 4}, 2)
	require.NoError(t, err)

	res, err := Embed(context.Background(), g, emb, layoutParams(10))
	require.NoError(t, err)

	assert.Equal(t, 0, res.ActiveEdges)
	assert.Equal(t, uint64(2), res.Pruned.GetCardinality())
	assert.Equal(t, []float32{1, 2, 3, 4}, emb.Data())
}

func TestEmbed_PrunedVertexNeverMoves(t *testing.T) {
	// Vertex 5 is attached only through zero-weight edges. Negative samples
	// never move their target, so its row must stay put.
	g := testutil.Star(5)
	g.NRows, g.NCols = 6, 6
	g.Rows = append(g.Rows, 0, 5)
	g.Cols = append(g.Cols, 5, 0)
	g.Vals = append(g.Vals, 0, 0)

	rng := testutil.NewRNG(8)
	emb, err := NewEmbeddingFrom(rng.UniformEmbedding(6, 2), 2)
	require.NoError(t, err)
	isolated := append([]float32(nil), emb.Row(5)...)

	res, err := Embed(context.Background(), g, emb, layoutParams(50), WithSeed(2))
	require.NoError(t, err)

	assert.True(t, res.Pruned.Contains(8))
	assert.True(t, res.Pruned.Contains(9))
	assert.Equal(t, isolated, emb.Row(5))
}

func TestEmbed_DefaultEpochsFollowVertexCount(t *testing.T) {
	// 200 vertices but more than LargeGraphVertices edges.
	const n, nnz = 200, LargeGraphVertices + 1
	rows := make([]int32, nnz)
	cols := make([]int32, nnz)
	vals := make([]float32, nnz)
	for i := range nnz {
		rows[i] = int32(i % n)
		cols[i] = int32((i%n + 1 + (i/n)%(n-1)) % n)
		vals[i] = 1e-4
	}
	vals[0] = 1

	g, err := coo.New(rows, cols, vals, n, n)
	require.NoError(t, err)

	emb, err := NewEmbeddingFrom(testutil.NewRNG(9).UniformEmbedding(n, 2), 2)
	require.NoError(t, err)

	res, err := Embed(context.Background(), g, emb, DefaultParams(), WithSeed(3), WithWorkers(1))
	require.NoError(t, err)

	assert.Equal(t, DefaultEpochsSmall, res.NEpochs)
	assert.Equal(t, 500, DefaultEpochs(LargeGraphVertices))
	assert.Equal(t, 200, DefaultEpochs(LargeGraphVertices+1))
}

func TestEmbed_InvalidInput(t *testing.T) {
	t.Run("shape", func(t *testing.T) {
		g := testutil.Ring(4)
		emb := NewEmbedding(3, 2)
		_, err := Embed(context.Background(), g, emb, layoutParams(1))
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("matrix", func(t *testing.T) {
		g := &coo.Matrix{Rows: []int32{0}, Cols: []int32{1}, Vals: []float32{-1}, NRows: 2, NCols: 2}
		emb := NewEmbedding(2, 2)
		_, err := Embed(context.Background(), g, emb, layoutParams(1))
		assert.ErrorIs(t, err, coo.ErrInvalidMatrix)
	})

	t.Run("params", func(t *testing.T) {
		g := testutil.Ring(4)
		emb := NewEmbedding(4, 2)
		p := layoutParams(1)
		p.NegativeSampleRate = 0
		_, err := Embed(context.Background(), g, emb, p)
		assert.ErrorIs(t, err, ErrInvalidParams)
	})
}

func TestTransform_ReferenceIsFixed(t *testing.T) {
	rng := testutil.NewRNG(10)
	tail, err := NewEmbeddingFrom(rng.ClusteredEmbedding(40, 2, 4, 0.5), 2)
	require.NoError(t, err)
	reference := tail.Clone()

	head, err := NewEmbeddingFrom(rng.UniformEmbedding(10, 2), 2)
	require.NoError(t, err)

	// Query i is attached to reference row 4i.
	g := testutil.Bipartite(10, 40, 1)
	for i := range g.Cols {
		g.Cols[i] = int32(4 * i % 40)
	}

	before := queryDistance(g, head, tail)

	_, err = Transform(context.Background(), g, head, tail, layoutParams(100), WithSeed(4))
	require.NoError(t, err)

	assert.Equal(t, reference.Data(), tail.Data())
	assert.Less(t, queryDistance(g, head, tail), before)
}

func queryDistance(g *coo.Matrix, head, tail *Embedding) float64 {
	var sum float64
	for e := range g.Rows {
		h := head.Row(int(g.Rows[e]))
		t := tail.Row(int(g.Cols[e]))
		for d := range h {
			diff := float64(h[d]) - float64(t[d])
			sum += diff * diff
		}
	}
	return sum
}

func TestEmbed_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	g := testutil.Ring(6)
	emb := NewEmbedding(6, 2)
	copy(emb.Data(), testutil.NewRNG(11).UniformEmbedding(6, 2))

	_, err := Embed(context.Background(), g, emb, layoutParams(3), WithLogger(logger), WithSeed(5))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "edges pruned")
	assert.Contains(t, out, "epoch schedule built")
	assert.Contains(t, out, "epoch completed")
	assert.Contains(t, out, "layout optimization completed")
}
