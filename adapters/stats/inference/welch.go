package inference

import (
	"fmt"
	"math"

	"choicelab/domain/core"
	"choicelab/domain/stats"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// WelchTTest compares the means of two independent samples without assuming
// equal variances. NaN values are skipped. Each sample needs at least two
// observations.
func WelchTTest(a, b []float64) (stats.WelchResult, error) {
	a, b = DropNaN(a), DropNaN(b)
	if len(a) < 2 || len(b) < 2 {
		return stats.WelchResult{}, fmt.Errorf("%w: welch t-test needs n>=2 per group (got %d and %d)",
			core.ErrInsufficientData, len(a), len(b))
	}

	n1, n2 := float64(len(a)), float64(len(b))
	mean1, _ := mstats.Mean(a)
	mean2, _ := mstats.Mean(b)
	var1, _ := mstats.VarS(a)
	var2, _ := mstats.VarS(b)

	res := stats.WelchResult{
		Test:  stats.TestWelch,
		MeanA: mean1,
		MeanB: mean2,
		NA:    len(a),
		NB:    len(b),
	}

	// Welch's t-statistic: t = (mean1 - mean2) / sqrt(var1/n1 + var2/n2)
	q1, q2 := var1/n1, var2/n2
	se := math.Sqrt(q1 + q2)
	diff := mean1 - mean2

	if se == 0 {
		// Both samples are constant: the test is degenerate.
		res.DF = n1 + n2 - 2
		if diff == 0 {
			res.T, res.PValue = 0, 1
		} else {
			res.T, res.PValue = math.Copysign(math.Inf(1), diff), 0
		}
		return res, nil
	}

	res.T = diff / se

	// Welch-Satterthwaite degrees of freedom
	res.DF = (q1 + q2) * (q1 + q2) / (q1*q1/(n1-1) + q2*q2/(n2-1))

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: res.DF}
	res.PValue = 2 * tDist.CDF(-math.Abs(res.T))
	if res.PValue > 1 {
		res.PValue = 1
	}
	return res, nil
}
