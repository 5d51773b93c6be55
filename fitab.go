package umapsgd

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

const fitSamples = 300

// FindABParams fits the a and b parameters of the membership curve
// 1/(1+a*x^(2b)) to the target curve that is 1 below minDist and decays as
// exp(-(x-minDist)/spread) above it, by least squares over [0, 3*spread].
func FindABParams(spread, minDist float64) (a, b float64, err error) {
	if !positive(spread) {
		return 0, 0, &ParamError{Field: "spread", Value: spread}
	}
	if !finite(minDist) || minDist < 0 || minDist > spread {
		return 0, 0, &ParamError{Field: "min_dist", Value: minDist}
	}

	xv := make([]float64, fitSamples)
	floats.Span(xv, 0, 3*spread)
	yv := make([]float64, fitSamples)
	for i, x := range xv {
		if x < minDist {
			yv[i] = 1
		} else {
			yv[i] = math.Exp(-(x - minDist) / spread)
		}
	}

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			if p[0] <= 0 || p[1] <= 0 {
				// Residuals are bounded by 1, so this is worse than any valid point.
				return 2 * fitSamples
			}
			var sse float64
			for i, x := range xv {
				r := 1/(1+p[0]*math.Pow(x, 2*p[1])) - yv[i]
				sse += r * r
			}
			return sse
		},
	}

	res, err := optimize.Minimize(problem, []float64{1, 1}, nil, &optimize.NelderMead{})
	if err != nil {
		return 0, 0, fmt.Errorf("fit a/b: %w", err)
	}
	if res == nil || len(res.X) != 2 {
		return 0, 0, errors.New("fit a/b: no solution")
	}
	return res.X[0], res.X[1], nil
}
