package app

import (
	"context"
	"fmt"
	"strings"

	"choicelab/adapters/stats/inference"
	"choicelab/adapters/tabular"
	"choicelab/domain/analysis"
	"choicelab/domain/core"
	"choicelab/domain/run"
	"choicelab/domain/stats"
	"choicelab/internal"
	apperrors "choicelab/internal/errors"
	"choicelab/ports"
)

// DefaultParameters are the fitted model parameters of the learning model:
// reward and punishment learning rates, reward and punishment sensitivities.
var DefaultParameters = []string{"Arew", "Apun", "R", "P"}

// DefaultGroupColumn is the group column of the parameter export
const DefaultGroupColumn = "Group"

// ParameterRequest selects the groups and parameters to compare. Empty
// GroupA/GroupB take the first two groups in file order.
type ParameterRequest struct {
	File        FileInput
	GroupColumn string
	GroupA      string
	GroupB      string
	Parameters  []string
}

// CorrelationRequest lists the column pairs to correlate within one table
type CorrelationRequest struct {
	File  FileInput
	Pairs []analysis.ColumnPair
}

// ParameterService analyses per-participant model parameter tables
type ParameterService struct {
	reader   ports.TableReader
	recorder ports.RunRecorder
	log      *internal.Logger
}

func NewParameterService(reader ports.TableReader, recorder ports.RunRecorder, log *internal.Logger) *ParameterService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &ParameterService{reader: reader, recorder: recorder, log: log}
}

// CompareGroups describes each parameter per group (population SD) and runs
// Welch's t-test per parameter, Bonferroni-adjusted across the parameters.
func (s *ParameterService) CompareGroups(ctx context.Context, req ParameterRequest) (*analysis.ParameterReport, error) {
	if req.GroupColumn == "" {
		req.GroupColumn = DefaultGroupColumn
	}
	if len(req.Parameters) == 0 {
		req.Parameters = DefaultParameters
	}

	table, hash, err := loadTable(s.reader, req.File.Path, req.File.Content)
	if err != nil {
		return nil, apperrors.Wrap(err, "load parameters")
	}
	if err := tabular.RequireColumns(table, append([]string{req.GroupColumn}, req.Parameters...)...); err != nil {
		return nil, apperrors.Wrap(err, "parameter table")
	}

	groups, _ := tabular.StringColumn(table, req.GroupColumn)
	groupA, groupB, err := pickGroups(groups, req.GroupA, req.GroupB)
	if err != nil {
		return nil, apperrors.Wrap(err, "parameter table")
	}

	report := &analysis.ParameterReport{
		Inputs:      []run.Input{runInput("parameters", req.File.Path, "", hash)},
		GroupColumn: req.GroupColumn,
		GroupA:      groupA,
		GroupB:      groupB,
		Rows:        make([]analysis.ParameterRow, 0, len(req.Parameters)),
	}

	ps := make([]float64, 0, len(req.Parameters))
	for _, param := range req.Parameters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values, _ := tabular.FloatColumn(table, param)
		var xa, xb []float64
		for i, g := range groups {
			switch g {
			case groupA:
				xa = append(xa, values[i])
			case groupB:
				xb = append(xb, values[i])
			}
		}

		row, err := compareParameter(param, xa, xb)
		if err != nil {
			return nil, apperrors.Wrapf(err, "parameter %s", param)
		}
		report.Rows = append(report.Rows, row)
		ps = append(ps, row.Test.PValue)
	}

	for i, adj := range inference.Bonferroni(ps) {
		report.Rows[i].Test.PAdjusted = adj
	}

	record(ctx, s.recorder, s.log, run.KindParameters, report.Inputs, func(id core.RunID, at core.Timestamp) interface{} {
		report.RunID, report.CreatedAt = id, at
		return report
	})
	s.log.Info("[Parameters] compared %d parameters between %q and %q", len(report.Rows), groupA, groupB)
	return report, nil
}

func compareParameter(param string, a, b []float64) (analysis.ParameterRow, error) {
	da, err := inference.DescribePopulation(a)
	if err != nil {
		return analysis.ParameterRow{}, err
	}
	db, err := inference.DescribePopulation(b)
	if err != nil {
		return analysis.ParameterRow{}, err
	}
	test, err := inference.WelchTTest(a, b)
	if err != nil {
		return analysis.ParameterRow{}, err
	}
	return analysis.ParameterRow{Parameter: param, GroupA: da, GroupB: db, Test: test}, nil
}

// pickGroups validates explicit group names or takes the first two distinct
// non-empty values
func pickGroups(column []string, a, b string) (string, string, error) {
	var seen []string
	present := make(map[string]bool)
	for _, g := range column {
		if g == "" || present[g] {
			continue
		}
		present[g] = true
		seen = append(seen, g)
	}

	if a == "" && b == "" {
		if len(seen) != 2 {
			return "", "", fmt.Errorf("%w: want exactly two groups, found %d (%s); name them explicitly",
				core.ErrInvalidValue, len(seen), strings.Join(seen, ", "))
		}
		return seen[0], seen[1], nil
	}
	if a == "" || b == "" || a == b {
		return "", "", fmt.Errorf("%w: two distinct group names are required", core.ErrInvalidValue)
	}
	for _, g := range []string{a, b} {
		if !present[g] {
			return "", "", fmt.Errorf("%w: group %q not found (have: %s)", core.ErrInvalidValue, g, strings.Join(seen, ", "))
		}
	}
	return a, b, nil
}

// Correlate computes Pearson's r for each pair, Bonferroni-adjusted across
// the pairs
func (s *ParameterService) Correlate(ctx context.Context, req CorrelationRequest) (*analysis.CorrelationReport, error) {
	if len(req.Pairs) == 0 {
		return nil, apperrors.InvalidInput("no column pairs to correlate")
	}

	table, hash, err := loadTable(s.reader, req.File.Path, req.File.Content)
	if err != nil {
		return nil, apperrors.Wrap(err, "load table")
	}

	results := make([]stats.CorrelationResult, 0, len(req.Pairs))
	for _, pair := range req.Pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := tabular.RequireColumns(table, pair.X, pair.Y); err != nil {
			return nil, apperrors.Wrap(err, "correlation table")
		}
		x, _ := tabular.FloatColumn(table, pair.X)
		y, _ := tabular.FloatColumn(table, pair.Y)

		res, err := inference.Pearson(x, y)
		if err != nil {
			return nil, apperrors.Wrapf(err, "correlate %s with %s", pair.X, pair.Y)
		}
		res.X, res.Y = pair.X, pair.Y
		results = append(results, res)
	}

	ps := make([]float64, len(results))
	for i, r := range results {
		ps[i] = r.PValue
	}
	for i, adj := range inference.Bonferroni(ps) {
		results[i].PAdjusted = adj
	}

	report := &analysis.CorrelationReport{
		Inputs:  []run.Input{runInput("table", req.File.Path, "", hash)},
		Results: results,
	}
	record(ctx, s.recorder, s.log, run.KindCorrelation, report.Inputs, func(id core.RunID, at core.Timestamp) interface{} {
		report.RunID, report.CreatedAt = id, at
		return report
	})
	s.log.Info("[Correlation] %d pairs correlated", len(results))
	return report, nil
}

// ParsePairs reads "x:y" pair specs
func ParsePairs(specs []string) ([]analysis.ColumnPair, error) {
	pairs := make([]analysis.ColumnPair, 0, len(specs))
	for _, spec := range specs {
		x, y, ok := strings.Cut(spec, ":")
		x, y = strings.TrimSpace(x), strings.TrimSpace(y)
		if !ok || x == "" || y == "" {
			return nil, apperrors.InvalidInput(fmt.Sprintf("bad column pair %q (want x:y)", spec))
		}
		pairs = append(pairs, analysis.ColumnPair{X: x, Y: y})
	}
	return pairs, nil
}
