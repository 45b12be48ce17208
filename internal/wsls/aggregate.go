package wsls

import (
	"errors"
	"fmt"

	"choicelab/adapters/stats/inference"
	"choicelab/domain/core"
	"choicelab/domain/stats"
	"choicelab/domain/strategy"
)

// Aggregate builds a group summary from per-participant outcomes. A
// participant whose rate is undefined for a metric is left out of that
// metric's statistics and listed in Exclusions with the reason.
//
// An error wrapping core.ErrEmptyGroup is returned when a metric has no
// defined rate at all; the summary is still returned with the metrics that
// could be computed.
func Aggregate(label, source string, outcomes []strategy.Outcome) (strategy.GroupSummary, error) {
	summary := strategy.GroupSummary{
		Label:      label,
		Source:     source,
		Outcomes:   outcomes,
		Exclusions: []strategy.Exclusion{},
		Metrics:    make(map[strategy.Metric]stats.Description, len(strategy.Metrics)),
	}

	var errs []error
	for _, m := range strategy.Metrics {
		values := make([]float64, 0, len(outcomes))
		for _, o := range outcomes {
			r := o.Rate(m)
			if !r.Defined {
				summary.Exclusions = append(summary.Exclusions, strategy.Exclusion{
					Participant: o.Participant,
					Metric:      m,
					Reason:      exclusionReason(o, m),
				})
				continue
			}
			values = append(values, r.Percent)
		}

		d, err := inference.Describe(values)
		if err != nil {
			errs = append(errs, fmt.Errorf("group %q %s: %w", label, m, err))
			continue
		}
		summary.Metrics[m] = d
	}

	if len(errs) > 0 {
		return summary, errors.Join(errs...)
	}
	return summary, nil
}

func exclusionReason(o strategy.Outcome, m strategy.Metric) string {
	if o.Trials < 2 {
		return strategy.ReasonNoTransitions
	}
	if m == strategy.MetricLoseShift {
		return strategy.ReasonNoLosses
	}
	return strategy.ReasonNoWins
}

// ErrEmpty reports whether err came from a group with no usable rates
func ErrEmpty(err error) bool {
	return errors.Is(err, core.ErrEmptyGroup)
}
