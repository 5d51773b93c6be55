package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/umapsgd/internal/schedule"
)

const (
	testA = 1.577
	testB = 0.895
)

func newArgs(head, tail []float32, dim int, rows, cols []int32, eps []float64, rate int) *Args {
	return &Args{
		Head:      head,
		Tail:      tail,
		HeadN:     len(head) / dim,
		TailN:     len(tail) / dim,
		Dim:       dim,
		Rows:      rows,
		Cols:      cols,
		Schedule:  schedule.New(eps, rate),
		MoveOther: &head[0] == &tail[0],
		Alpha:     1,
		A:         testA,
		B:         testB,
		Gamma:     1,
		Seed:      42,
	}
}

func TestRun_TransformSingleEdge(t *testing.T) {
	head := []float32{0, 0}
	tail := []float32{5, 5, 10, 0}
	args := newArgs(head, tail, 2, []int32{0}, []int32{1}, []float64{1}, 1)

	stats, err := NewRunner(1).Run(args)
	require.NoError(t, err)

	assert.Greater(t, head[0], float32(0), "head moves toward the tail vertex")
	assert.Equal(t, float32(0), head[1])
	assert.Equal(t, []float32{5, 5, 10, 0}, tail, "tail is fixed in transform mode")
	assert.Equal(t, Stats{Sampled: 1}, stats)
	assert.InDelta(t, 2.0, args.Schedule.EpochOfNextSample[0], 1e-12)
}

func TestRun_FitModeAntiSymmetric(t *testing.T) {
	emb := []float32{0, 0, 3, 4}
	args := newArgs(emb, emb, 2, []int32{0}, []int32{1}, []float64{1}, 1)
	require.True(t, args.MoveOther)

	_, err := NewRunner(1).Run(args)
	require.NoError(t, err)

	headDelta := []float64{float64(emb[0]) - 0, float64(emb[1]) - 0}
	tailDelta := []float64{float64(emb[2]) - 3, float64(emb[3]) - 4}

	for d := range headDelta {
		assert.NotZero(t, headDelta[d])
		assert.InDelta(t, -headDelta[d], tailDelta[d], 1e-6)
	}
	// Attraction pulls the pair together.
	assert.Greater(t, headDelta[0], 0.0)
	assert.Greater(t, headDelta[1], 0.0)
}

func TestRun_EdgeNotDue(t *testing.T) {
	emb := []float32{0, 0, 3, 4}
	args := newArgs(emb, emb, 2, []int32{0}, []int32{1}, []float64{2.5}, 5)

	stats, err := NewRunner(1).Run(args)
	require.NoError(t, err)

	assert.Equal(t, []float32{0, 0, 3, 4}, emb)
	assert.Equal(t, Stats{}, stats)
	assert.InDelta(t, 2.5, args.Schedule.EpochOfNextSample[0], 1e-12)
}

func TestRun_DueAtEpochEnd(t *testing.T) {
	emb := []float32{0, 0, 3, 4}
	args := newArgs(emb, emb, 2, []int32{0}, []int32{1}, []float64{2}, 5)

	// Epoch 0 ends at time 1, before the first sample at time 2.
	stats, err := NewRunner(1).Run(args)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)

	args.Epoch = 1
	stats, err = NewRunner(1).Run(args)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Sampled)
	assert.InDelta(t, 4.0, args.Schedule.EpochOfNextSample[0], 1e-12)
}

func TestRun_NeverSampledEdge(t *testing.T) {
	emb := []float32{0, 0, 3, 4}
	args := newArgs(emb, emb, 2, []int32{0}, []int32{1}, []float64{schedule.Never}, 5)

	for epoch := 0; epoch < 5; epoch++ {
		args.Epoch = epoch
		_, err := NewRunner(1).Run(args)
		require.NoError(t, err)
	}
	assert.Equal(t, []float32{0, 0, 3, 4}, emb)
}

func TestRun_SkipsCoincidentSelfSample(t *testing.T) {
	emb := []float32{2, 2}
	// Self loop on the only vertex; every negative sample draws vertex 0.
	args := newArgs(emb, emb, 2, []int32{0}, []int32{0}, []float64{1}, 5)

	stats, err := NewRunner(1).Run(args)
	require.NoError(t, err)

	assert.Equal(t, []float32{2, 2}, emb)
	assert.Equal(t, int64(4), stats.SkippedSelf)
	assert.Equal(t, int64(0), stats.Negative)
}

func TestRun_RepulsiveFallback(t *testing.T) {
	head := []float32{9, 9, 1, 1}
	tail := []float32{1, 1}
	// Head vertex 1 coincides with tail vertex 0, a different index.
	args := newArgs(head, tail, 2, []int32{1}, []int32{0}, []float64{1}, 2)
	args.Alpha = 0.1

	stats, err := NewRunner(1).Run(args)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.Negative)
	assert.InDelta(t, 1.4, head[2], 1e-6)
	assert.InDelta(t, 1.4, head[3], 1e-6)
	assert.Equal(t, []float32{9, 9}, head[:2])
	assert.Equal(t, []float32{1, 1}, tail)
}

func TestRun_ClipsRepulsion(t *testing.T) {
	head := []float32{0, 0}
	tail := []float32{0.01, 0}
	args := newArgs(head, tail, 2, []int32{0}, []int32{0}, []float64{1}, 2)

	_, err := NewRunner(1).Run(args)
	require.NoError(t, err)

	// Attraction adds ~0.074, the unclipped repulsion would add ~22.
	assert.InDelta(t, 4.0742, head[0], 1e-3)
	assert.Equal(t, float32(0), head[1])
}

func TestRun_ReproducibleWithSeed(t *testing.T) {
	run := func(seed uint64) []float32 {
		emb := ringEmbedding(16)
		rows, cols, eps := ring(16)
		args := newArgs(emb, emb, 2, rows, cols, eps, 5)
		args.Seed = seed
		args.Alpha = 0.5
		for epoch := 0; epoch < 5; epoch++ {
			args.Epoch = epoch
			_, err := NewRunner(1).Run(args)
			require.NoError(t, err)
		}
		return emb
	}

	assert.Equal(t, run(7), run(7))
	assert.NotEqual(t, run(7), run(8))
}

func TestRun_Parallel(t *testing.T) {
	const n = 200
	emb := ringEmbedding(n)
	rows, cols, eps := ring(n)
	args := newArgs(emb, emb, 2, rows, cols, eps, 5)

	var total Stats
	for epoch := 0; epoch < 10; epoch++ {
		args.Epoch = epoch
		args.Alpha = 1 - float64(epoch)/10
		stats, err := NewRunner(8).Run(args)
		require.NoError(t, err)
		total.Add(stats)
	}

	assert.Equal(t, int64(2*n*10), total.Sampled)
	assert.Positive(t, total.Negative)
	for _, v := range emb {
		require.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0))
	}
}

func TestRun_WorkerPanicIsFatal(t *testing.T) {
	emb := []float32{0, 0, 1, 1}
	args := newArgs(emb, emb, 2, []int32{0, 7}, []int32{1, 0}, []float64{1, 1}, 1)

	_, err := NewRunner(2).Run(args)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFailure)
}

func TestRun_NoEdges(t *testing.T) {
	emb := []float32{0, 0, 1, 1}
	args := newArgs(emb, emb, 2, nil, nil, nil, 5)

	stats, err := NewRunner(4).Run(args)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
	assert.Equal(t, []float32{0, 0, 1, 1}, emb)
}

func TestNewRunner_DefaultWorkers(t *testing.T) {
	assert.Positive(t, NewRunner(0).Workers())
	assert.Equal(t, 3, NewRunner(3).Workers())
}

// ring returns a symmetric ring graph with unit weights.
func ring(n int) (rows, cols []int32, eps []float64) {
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		rows = append(rows, int32(i), int32(j))
		cols = append(cols, int32(j), int32(i))
	}
	eps = make([]float64, len(rows))
	for i := range eps {
		eps[i] = 1
	}
	return rows, cols, eps
}

func ringEmbedding(n int) []float32 {
	emb := make([]float32, 2*n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		emb[2*i] = float32(10 * math.Cos(angle))
		emb[2*i+1] = float32(10 * math.Sin(angle))
	}
	return emb
}
