package inference

import (
	"math"
	"testing"

	"choicelab/domain/core"
	"choicelab/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	d, err := Describe([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NoError(t, err)
	assert.Equal(t, 8, d.N)
	assert.InDelta(t, 5.0, d.Mean, 1e-12)
	assert.InDelta(t, 2.138090, d.SD, 1e-6)
	assert.InDelta(t, 2.138090/math.Sqrt(8), d.SEM, 1e-6)

	p, err := DescribePopulation([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, p.SD, 1e-12)
	assert.InDelta(t, 2.0/math.Sqrt(8), p.SEM, 1e-12)
}

func TestDescribeSkipsNaN(t *testing.T) {
	d, err := Describe([]float64{math.NaN(), 10, 20, math.NaN()})
	require.NoError(t, err)
	assert.Equal(t, 2, d.N)
	assert.InDelta(t, 15.0, d.Mean, 1e-12)
}

func TestDescribeEdgeCases(t *testing.T) {
	_, err := Describe(nil)
	assert.ErrorIs(t, err, core.ErrEmptyGroup)

	_, err = Describe([]float64{math.NaN()})
	assert.ErrorIs(t, err, core.ErrEmptyGroup)

	d, err := Describe([]float64{42})
	require.NoError(t, err)
	assert.Equal(t, 1, d.N)
	assert.Equal(t, 42.0, d.Mean)
	assert.True(t, math.IsNaN(d.SD))
	assert.True(t, math.IsNaN(d.SEM))
}

func TestWelchTTestReferenceValues(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		t    float64
		df   float64
		p    float64
	}{
		{
			name: "unequal variances",
			a:    []float64{1, 2, 3, 4, 5},
			b:    []float64{2, 4, 6, 8, 10},
			t:    -1.897367, df: 5.882353, p: 0.107531,
		},
		{
			name: "textbook sample",
			a:    []float64{27.5, 21.0, 19.0, 23.6, 17.0, 17.9, 16.9, 20.1, 21.9, 22.6, 23.1, 19.6, 19.0, 21.7, 21.4},
			b:    []float64{27.1, 22.0, 20.8, 23.4, 23.4, 23.5, 25.8, 22.0, 24.8, 20.2, 21.9, 22.1, 22.9, 20.5, 24.4},
			t:    -2.455356, df: 24.988529, p: 0.021378,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := WelchTTest(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, stats.TestWelch, res.Test)
			assert.InDelta(t, tt.t, res.T, 1e-5)
			assert.InDelta(t, tt.df, res.DF, 1e-5)
			assert.InDelta(t, tt.p, res.PValue, 1e-5)
			assert.Equal(t, len(tt.a), res.NA)
			assert.Equal(t, len(tt.b), res.NB)
		})
	}
}

func TestWelchTTestSymmetry(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{2, 4, 6, 8, 10}

	ab, err := WelchTTest(a, b)
	require.NoError(t, err)
	ba, err := WelchTTest(b, a)
	require.NoError(t, err)

	assert.InDelta(t, -ab.T, ba.T, 1e-12)
	assert.InDelta(t, ab.DF, ba.DF, 1e-12)
	assert.InDelta(t, ab.PValue, ba.PValue, 1e-12)
}

func TestWelchTTestIdenticalGroups(t *testing.T) {
	a := []float64{40, 55, 62, 71, 48}
	b := []float64{71, 48, 40, 62, 55}

	res, err := WelchTTest(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.T, 1e-12)
	assert.InDelta(t, 1.0, res.PValue, 1e-12)
}

func TestWelchTTestDegenerate(t *testing.T) {
	res, err := WelchTTest([]float64{50, 50, 50}, []float64{50, 50})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.T)
	assert.Equal(t, 1.0, res.PValue)

	res, err = WelchTTest([]float64{60, 60}, []float64{50, 50})
	require.NoError(t, err)
	assert.True(t, math.IsInf(res.T, 1))
	assert.Equal(t, 0.0, res.PValue)

	_, err = WelchTTest([]float64{1}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, core.ErrInsufficientData)

	_, err = WelchTTest([]float64{1, math.NaN()}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestPearson(t *testing.T) {
	res, err := Pearson([]float64{1, 2, 3, 4, 5, 6}, []float64{2, 1, 4, 3, 7, 5})
	require.NoError(t, err)
	assert.Equal(t, stats.TestPearson, res.Test)
	assert.Equal(t, 6, res.N)
	assert.InDelta(t, 0.791795, res.R, 1e-5)
	assert.InDelta(t, 0.060511, res.PValue, 1e-5)
}

func TestPearsonPerfectLinear(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{3, 5, 7, 9, 11}

	res, err := Pearson(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.R, 1e-12)
	assert.InDelta(t, 0.0, res.PValue, 1e-9)

	neg := []float64{10, 8, 6, 4, 2}
	res, err = Pearson(x, neg)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, res.R, 1e-12)
}

func TestPearsonDropsIncompletePairs(t *testing.T) {
	x := []float64{1, 2, math.NaN(), 3, 4, 5, 6}
	y := []float64{2, 1, 9, 4, 3, 7, 5}

	res, err := Pearson(x, y)
	require.NoError(t, err)
	assert.Equal(t, 6, res.N)
	assert.InDelta(t, 0.791795, res.R, 1e-5)
}

func TestPearsonErrors(t *testing.T) {
	_, err := Pearson([]float64{1, 2, 3}, []float64{1, 2})
	assert.ErrorIs(t, err, core.ErrLengthMismatch)

	_, err = Pearson([]float64{1, 2}, []float64{1, 2})
	assert.ErrorIs(t, err, core.ErrInsufficientData)

	_, err = Pearson([]float64{1, 1, 1, 1}, []float64{1, 2, 3, 4})
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestBonferroni(t *testing.T) {
	adj := Bonferroni([]float64{0.01, 0.02, 0.4, 0.0})
	assert.InDeltaSlice(t, []float64{0.04, 0.08, 1.0, 0.0}, adj, 1e-12)
	assert.Empty(t, Bonferroni(nil))
}
