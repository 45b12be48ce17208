package wsls

import (
	"fmt"

	"choicelab/adapters/stats/inference"
	"choicelab/domain/strategy"
)

// Compare runs a Welch t-test on each metric's defined rates, group A against
// group B, and returns one row per metric in reporting order.
func Compare(a, b strategy.GroupSummary) ([]strategy.ComparisonRow, error) {
	rows := make([]strategy.ComparisonRow, 0, len(strategy.Metrics))
	for _, m := range strategy.Metrics {
		res, err := inference.WelchTTest(definedRates(a.Outcomes, m), definedRates(b.Outcomes, m))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
		rows = append(rows, strategy.ComparisonRow{
			Metric: m,
			GroupA: a.Metrics[m],
			GroupB: b.Metrics[m],
			Test:   res,
		})
	}
	return rows, nil
}

func definedRates(outcomes []strategy.Outcome, m strategy.Metric) []float64 {
	values := make([]float64, 0, len(outcomes))
	for _, o := range outcomes {
		if r := o.Rate(m); r.Defined {
			values = append(values, r.Percent)
		}
	}
	return values
}
