package inference

import (
	"fmt"
	"math"

	"choicelab/domain/core"
	"choicelab/domain/stats"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Pearson computes the product-moment correlation of x and y with a two-tailed
// p-value from the t distribution with n-2 degrees of freedom. Pairs where
// either value is NaN are dropped.
func Pearson(x, y []float64) (stats.CorrelationResult, error) {
	if len(x) != len(y) {
		return stats.CorrelationResult{}, fmt.Errorf("%w: %d vs %d", core.ErrLengthMismatch, len(x), len(y))
	}

	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}

	n := len(xs)
	if n < 3 {
		return stats.CorrelationResult{}, fmt.Errorf("%w: pearson needs at least 3 complete pairs (got %d)",
			core.ErrInsufficientData, n)
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return stats.CorrelationResult{}, fmt.Errorf("%w: constant input has no correlation", core.ErrInsufficientData)
	}

	res := stats.CorrelationResult{Test: stats.TestPearson, R: r, N: n}
	df := float64(n - 2)
	if math.Abs(r) >= 1 {
		res.R = math.Copysign(1, r)
		res.PValue = 0
	} else {
		t := r * math.Sqrt(df/(1-r*r))
		tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		res.PValue = 2 * tDist.CDF(-math.Abs(t))
	}
	res.PAdjusted = res.PValue
	return res, nil
}
