// Package analysis defines the reports produced by each kind of analysis run.
// Reports are what gets recorded, rendered and served.
package analysis

import (
	"choicelab/domain/core"
	"choicelab/domain/run"
	"choicelab/domain/stats"
	"choicelab/domain/strategy"
)

// StrategyReport is the win-stay / lose-shift comparison of two groups
type StrategyReport struct {
	RunID      core.RunID               `json:"run_id"`
	CreatedAt  core.Timestamp           `json:"created_at"`
	Inputs     []run.Input              `json:"inputs"`
	GroupA     strategy.GroupSummary    `json:"group_a"`
	GroupB     strategy.GroupSummary    `json:"group_b"`
	Comparison []strategy.ComparisonRow `json:"comparison"`
}

// CurvePoint is the RT summary across participants for one trial number
type CurvePoint struct {
	Trial int               `json:"trial"`
	RT    stats.Description `json:"rt"`
}

// RTGroup summarises one group's reaction times. Overall describes the
// per-participant mean RTs.
type RTGroup struct {
	Label        string            `json:"label"`
	Source       string            `json:"source"`
	Participants int               `json:"participants"`
	Overall      stats.Description `json:"overall"`
	Curve        []CurvePoint      `json:"curve"`
}

// ReactionTimeReport compares reaction times between two groups
type ReactionTimeReport struct {
	RunID     core.RunID        `json:"run_id"`
	CreatedAt core.Timestamp    `json:"created_at"`
	Inputs    []run.Input       `json:"inputs"`
	GroupA    RTGroup           `json:"group_a"`
	GroupB    RTGroup           `json:"group_b"`
	Test      stats.WelchResult `json:"test"`
}

// ParameterRow compares one model parameter between the two groups
type ParameterRow struct {
	Parameter string            `json:"parameter"`
	GroupA    stats.Description `json:"group_a"`
	GroupB    stats.Description `json:"group_b"`
	Test      stats.WelchResult `json:"test"`
}

// ParameterReport compares fitted model parameters between two groups found
// in one table. Descriptions use the population SD.
type ParameterReport struct {
	RunID       core.RunID     `json:"run_id"`
	CreatedAt   core.Timestamp `json:"created_at"`
	Inputs      []run.Input    `json:"inputs"`
	GroupColumn string         `json:"group_column"`
	GroupA      string         `json:"group_a"`
	GroupB      string         `json:"group_b"`
	Rows        []ParameterRow `json:"rows"`
}

// ColumnPair names two columns to correlate
type ColumnPair struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// CorrelationReport holds Pearson correlations for a family of column pairs,
// Bonferroni-adjusted across the family.
type CorrelationReport struct {
	RunID     core.RunID                `json:"run_id"`
	CreatedAt core.Timestamp            `json:"created_at"`
	Inputs    []run.Input               `json:"inputs"`
	Results   []stats.CorrelationResult `json:"results"`
}
