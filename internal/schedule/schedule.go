// Package schedule derives how often each edge of the graph is sampled.
//
// Instead of weighting every edge's gradient by its affinity, each edge is
// visited every EpochsPerSample epochs, where the strongest edge is visited
// every epoch and weaker edges proportionally less often. Negative samples are
// drawn negative_sample_rate times per positive visit.
package schedule

import "math"

// Never marks an edge that must never be sampled.
const Never = -1.0

// EpochsPerSample returns, for each weight, the number of epochs between two
// visits of that edge over a budget of nEpochs. Non-positive weights map to
// Never.
func EpochsPerSample(weights []float32, nEpochs int) []float64 {
	result := make([]float64, len(weights))
	if len(weights) == 0 {
		return result
	}

	var weightMax float32
	for _, w := range weights {
		if w > weightMax {
			weightMax = w
		}
	}

	n := float64(nEpochs)
	for i, w := range weights {
		result[i] = Never
		if weightMax <= 0 {
			continue
		}
		v := n * (float64(w) / float64(weightMax))
		if v > 0 {
			result[i] = n / v
		}
	}
	return result
}

// State is the mutable per-edge schedule of one optimization run.
//
// Each edge's counters are read and written by exactly one worker per epoch,
// so State needs no synchronization as long as edges are partitioned.
type State struct {
	EpochsPerSample           []float64
	EpochsPerNegativeSample   []float64
	EpochOfNextSample         []float64
	EpochOfNextNegativeSample []float64
}

// New initializes the schedule state from precomputed epochs-per-sample values.
// negativeSampleRate must be positive.
func New(epochsPerSample []float64, negativeSampleRate int) *State {
	n := len(epochsPerSample)
	s := &State{
		EpochsPerSample:           epochsPerSample,
		EpochsPerNegativeSample:   make([]float64, n),
		EpochOfNextSample:         make([]float64, n),
		EpochOfNextNegativeSample: make([]float64, n),
	}

	rate := float64(negativeSampleRate)
	for i, eps := range epochsPerSample {
		s.EpochsPerNegativeSample[i] = eps / rate
	}
	copy(s.EpochOfNextSample, s.EpochsPerSample)
	copy(s.EpochOfNextNegativeSample, s.EpochsPerNegativeSample)
	return s
}

// Len returns the number of edges in the schedule.
func (s *State) Len() int { return len(s.EpochsPerSample) }

// Due reports whether edge is due for a positive sample at epoch.
// Edges marked Never are never due.
func (s *State) Due(edge, epoch int) bool {
	if s.EpochsPerSample[edge] <= 0 {
		return false
	}
	return s.EpochOfNextSample[edge] <= float64(epoch)
}

// AdvanceSample moves edge's next positive sample one period forward.
func (s *State) AdvanceSample(edge int) {
	s.EpochOfNextSample[edge] += s.EpochsPerSample[edge]
}

// NegativeSamplesDue returns how many negative samples edge owes at epoch.
func (s *State) NegativeSamplesDue(edge, epoch int) int {
	per := s.EpochsPerNegativeSample[edge]
	if per <= 0 {
		return 0
	}
	n := math.Floor((float64(epoch) - s.EpochOfNextNegativeSample[edge]) / per)
	if n <= 0 {
		return 0
	}
	return int(n)
}

// AdvanceNegative moves edge's negative counter forward by n periods.
func (s *State) AdvanceNegative(edge, n int) {
	s.EpochOfNextNegativeSample[edge] += float64(n) * s.EpochsPerNegativeSample[edge]
}

// SizeBytes returns the memory held by the four per-edge arrays.
func (s *State) SizeBytes() int64 {
	return SizeBytes(s.Len())
}

// SizeBytes returns the memory a State over nnz edges holds.
func SizeBytes(nnz int) int64 {
	return int64(nnz) * 4 * 8
}

// Summary describes a set of epochs-per-sample values.
type Summary struct {
	Min, Max float64
	Never    int
}

// Summarize returns the range of sampled periods and the number of edges
// marked Never.
func Summarize(epochsPerSample []float64) Summary {
	sum := Summary{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, eps := range epochsPerSample {
		if eps <= 0 {
			sum.Never++
			continue
		}
		sum.Min = math.Min(sum.Min, eps)
		sum.Max = math.Max(sum.Max, eps)
	}
	if sum.Never == len(epochsPerSample) {
		sum.Min, sum.Max = 0, 0
	}
	return sum
}
