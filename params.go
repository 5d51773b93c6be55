package umapsgd

import "math"

const (
	// DefaultEpochsSmall is the epoch count used for graphs of at most
	// LargeGraphVertices vertices when Params.NEpochs is 0.
	DefaultEpochsSmall = 500

	// DefaultEpochsLarge is the epoch count used for larger graphs.
	DefaultEpochsLarge = 200

	// LargeGraphVertices is the vertex count above which DefaultEpochsLarge
	// applies.
	LargeGraphVertices = 10000
)

// Params configures the layout optimizer.
type Params struct {
	// A and B shape the low-dimensional membership curve 1/(1+a*d^(2b)).
	A float64 `toml:"a"`
	B float64 `toml:"b"`

	// NComponents is the embedding dimension.
	NComponents int `toml:"n_components"`

	// NegativeSampleRate is the number of negative samples per positive sample.
	NegativeSampleRate int `toml:"negative_sample_rate"`

	// RepulsionStrength (gamma) weights repulsive updates.
	RepulsionStrength float64 `toml:"repulsion_strength"`

	// InitialAlpha is the learning rate of the first epoch. It decays
	// linearly towards 0 over NEpochs.
	InitialAlpha float64 `toml:"learning_rate"`

	// NEpochs is the number of epochs. 0 selects a default from the vertex count.
	NEpochs int `toml:"n_epochs"`

	// Callback, if set, runs at each epoch boundary.
	Callback ProgressCallback `toml:"-"`
}

// DefaultParams returns the usual UMAP settings for spread 1 and min_dist 0.1.
func DefaultParams() Params {
	return Params{
		A:                  1.577,
		B:                  0.895,
		NComponents:        2,
		NegativeSampleRate: 5,
		RepulsionStrength:  1.0,
		InitialAlpha:       1.0,
	}
}

// DefaultEpochs returns the epoch count used when NEpochs is 0 for a graph
// with nVertices head vertices.
func DefaultEpochs(nVertices int) int {
	if nVertices <= LargeGraphVertices {
		return DefaultEpochsSmall
	}
	return DefaultEpochsLarge
}

// Validate checks that p describes a runnable optimization.
func (p Params) Validate() error {
	switch {
	case !positive(p.A):
		return &ParamError{Field: "a", Value: p.A}
	case !positive(p.B):
		return &ParamError{Field: "b", Value: p.B}
	case p.NComponents < 1:
		return &ParamError{Field: "n_components", Value: p.NComponents}
	case p.NegativeSampleRate < 1:
		return &ParamError{Field: "negative_sample_rate", Value: p.NegativeSampleRate}
	case !finite(p.RepulsionStrength) || p.RepulsionStrength < 0:
		return &ParamError{Field: "repulsion_strength", Value: p.RepulsionStrength}
	case !finite(p.InitialAlpha) || p.InitialAlpha < 0:
		return &ParamError{Field: "learning_rate", Value: p.InitialAlpha}
	case p.NEpochs < 0:
		return &ParamError{Field: "n_epochs", Value: p.NEpochs}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return finite(v) && v > 0
}
