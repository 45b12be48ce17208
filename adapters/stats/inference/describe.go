// Package inference implements the descriptive statistics and hypothesis tests
// used to compare participant groups.
package inference

import (
	"fmt"
	"math"

	"choicelab/domain/core"
	"choicelab/domain/stats"

	mstats "github.com/montanaflynn/stats"
)

// Describe summarises a sample with the sample standard deviation (n-1).
// NaN values are treated as missing and skipped.
func Describe(xs []float64) (stats.Description, error) {
	return describe(xs, mstats.StandardDeviationSample)
}

// DescribePopulation is Describe with the population standard deviation (n),
// which is what the parameter comparison reports as its error bar basis.
func DescribePopulation(xs []float64) (stats.Description, error) {
	return describe(xs, mstats.StandardDeviationPopulation)
}

func describe(xs []float64, sd func(mstats.Float64Data) (float64, error)) (stats.Description, error) {
	data := DropNaN(xs)
	if len(data) == 0 {
		return stats.Description{}, core.ErrEmptyGroup
	}

	mean, err := mstats.Mean(data)
	if err != nil {
		return stats.Description{}, fmt.Errorf("mean: %w", err)
	}

	d := stats.Description{N: len(data), Mean: mean, SD: math.NaN(), SEM: math.NaN()}
	if len(data) < 2 {
		return d, nil
	}

	s, err := sd(data)
	if err != nil {
		return stats.Description{}, fmt.Errorf("standard deviation: %w", err)
	}
	d.SD = s
	d.SEM = s / math.Sqrt(float64(len(data)))
	return d, nil
}

// DropNaN returns the non-NaN values of xs in their original order
func DropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}
