// Package strategy holds the win-stay / lose-shift outcome of a participant
// and the group-level summaries built from those outcomes.
package strategy

import (
	"encoding/json"
	"math"

	"choicelab/domain/core"
	"choicelab/domain/stats"
)

// Metric names one of the two tallied behaviours
type Metric string

const (
	MetricWinStay   Metric = "win_stay"
	MetricLoseShift Metric = "lose_shift"
)

// Metrics is the fixed reporting order
var Metrics = []Metric{MetricWinStay, MetricLoseShift}

// Label is the human-readable form used in summary tables
func (m Metric) Label() string {
	switch m {
	case MetricWinStay:
		return "Win-Stay"
	case MetricLoseShift:
		return "Lose-Shift"
	default:
		return string(m)
	}
}

// Rate is a percentage that may be undefined (zero denominator). An undefined
// rate is never treated as zero.
type Rate struct {
	Percent float64
	Defined bool
}

// NewRate returns 100*num/den, or an undefined rate when den is zero
func NewRate(num, den int) Rate {
	if den == 0 {
		return Rate{}
	}
	return Rate{Percent: 100 * float64(num) / float64(den), Defined: true}
}

// Float returns the percentage or NaN when undefined
func (r Rate) Float() float64 {
	if !r.Defined {
		return math.NaN()
	}
	return r.Percent
}

// MarshalJSON writes null for an undefined rate
func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(r.Percent)
}

// UnmarshalJSON reads null as undefined
func (r *Rate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Rate{}
		return nil
	}
	if err := json.Unmarshal(data, &r.Percent); err != nil {
		return err
	}
	r.Defined = true
	return nil
}

// Outcome is the tally for one participant.
//
// TotalWinCases counts every pure-win trial, including a final trial that has
// no successor and so can never produce a stay. TotalLossCases likewise.
type Outcome struct {
	Participant    core.ParticipantID `json:"participant"`
	Trials         int                `json:"trials"`
	WinStay        int                `json:"win_stay"`
	LoseShift      int                `json:"lose_shift"`
	TotalWinCases  int                `json:"total_win_cases"`
	TotalLossCases int                `json:"total_loss_cases"`
	WinStayRate    Rate               `json:"win_stay_percentage"`
	LoseShiftRate  Rate               `json:"lose_shift_percentage"`
}

// Rate returns the outcome's rate for a metric
func (o Outcome) Rate(m Metric) Rate {
	if m == MetricLoseShift {
		return o.LoseShiftRate
	}
	return o.WinStayRate
}

// Exclusion records why a participant was left out of a metric's group statistics
type Exclusion struct {
	Participant core.ParticipantID `json:"participant"`
	Metric      Metric             `json:"metric"`
	Reason      string             `json:"reason"`
}

// Exclusion reasons
const (
	ReasonNoTransitions = "no transitions (fewer than two trials)"
	ReasonNoWins        = "no pure-win trials"
	ReasonNoLosses      = "no pure-loss trials"
)

// GroupSummary aggregates one group's outcomes
type GroupSummary struct {
	Label      string                       `json:"label"`
	Source     string                       `json:"source"`
	Outcomes   []Outcome                    `json:"outcomes"`
	Exclusions []Exclusion                  `json:"exclusions"`
	Metrics    map[Metric]stats.Description `json:"metrics"`
}

// ComparisonRow is one line of the two-row group comparison table
type ComparisonRow struct {
	Metric Metric            `json:"metric"`
	GroupA stats.Description `json:"group_a"`
	GroupB stats.Description `json:"group_b"`
	Test   stats.WelchResult `json:"test"`
}
