package gradient

import "math"

const (
	// ClipBound bounds every per-dimension gradient before scaling by alpha.
	ClipBound = 4.0

	// RepulsiveFallback is the per-dimension displacement applied when a
	// negative sample coincides with the current point but is a different vertex.
	RepulsiveFallback = 4.0

	// repulsiveEps keeps the repulsive coefficient finite at tiny distances.
	repulsiveEps = 0.001
)

// SquaredDistance returns the squared Euclidean distance between x and y.
// Assumes len(x) == len(y).
func SquaredDistance(x, y []float32) float64 {
	var sum float64
	for i := range x {
		d := float64(x[i]) - float64(y[i])
		sum += d * d
	}
	return sum
}

// Clip clamps v to [lo, hi].
func Clip(v, lo, hi float64) float64 {
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

// ClipGrad clamps v to [-ClipBound, ClipBound].
func ClipGrad(v float64) float64 {
	return Clip(v, -ClipBound, ClipBound)
}

// AttractiveCoeff returns the attractive gradient coefficient for a squared
// distance d2. Coincident points (d2 <= 0) exert no force.
func AttractiveCoeff(d2, a, b float64) float64 {
	if d2 <= 0 {
		return 0
	}
	coeff := -2.0 * a * b * math.Pow(d2, b-1.0)
	return coeff / (a*math.Pow(d2, b) + 1.0)
}

// RepulsiveCoeff returns the repulsive gradient coefficient for a squared
// distance d2 with repulsion strength gamma. It is 0 for d2 <= 0; callers
// decide whether to apply RepulsiveFallback in that case.
func RepulsiveCoeff(d2, gamma, a, b float64) float64 {
	if d2 <= 0 {
		return 0
	}
	coeff := 2.0 * gamma * b
	return coeff / ((repulsiveEps + d2) * (a*math.Pow(d2, b) + 1))
}
