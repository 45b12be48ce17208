package app

import (
	"context"

	"choicelab/adapters/tabular"
	"choicelab/domain/analysis"
	"choicelab/domain/core"
	"choicelab/domain/run"
	"choicelab/domain/strategy"
	"choicelab/domain/trial"
	"choicelab/internal"
	apperrors "choicelab/internal/errors"
	"choicelab/internal/wsls"
	"choicelab/ports"

	"golang.org/x/sync/errgroup"
)

// StrategyService runs the win-stay / lose-shift comparison of two groups
type StrategyService struct {
	reader   ports.TableReader
	sources  *trial.Registry
	recorder ports.RunRecorder
	workers  int
	log      *internal.Logger
}

func NewStrategyService(reader ports.TableReader, sources *trial.Registry, recorder ports.RunRecorder, workers int, log *internal.Logger) *StrategyService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &StrategyService{
		reader:   reader,
		sources:  sources,
		recorder: recorder,
		workers:  workers,
		log:      log,
	}
}

// groupResult is one group's decoded and aggregated data
type groupResult struct {
	input   run.Input
	summary strategy.GroupSummary
}

// Analyze tallies both groups, aggregates each and compares them metric by
// metric. The report is recorded when a recorder is configured; a failed
// recording is logged and does not fail the analysis.
func (s *StrategyService) Analyze(ctx context.Context, a, b GroupInput) (*analysis.StrategyReport, error) {
	var results [2]groupResult
	g, gctx := errgroup.WithContext(ctx)
	for i, in := range []GroupInput{a, b} {
		i, in := i, in
		g.Go(func() error {
			res, err := s.group(gctx, in)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows, err := wsls.Compare(results[0].summary, results[1].summary)
	if err != nil {
		return nil, apperrors.Wrap(err, "compare groups")
	}

	report := &analysis.StrategyReport{
		Inputs:     []run.Input{results[0].input, results[1].input},
		GroupA:     results[0].summary,
		GroupB:     results[1].summary,
		Comparison: rows,
	}
	record(ctx, s.recorder, s.log, run.KindStrategy, report.Inputs, func(id core.RunID, at core.Timestamp) interface{} {
		report.RunID, report.CreatedAt = id, at
		return report
	})

	for _, row := range rows {
		s.log.Info("[Strategy] %s: %s %.2f vs %s %.2f, t=%.3f df=%.2f p=%.4f",
			row.Metric.Label(), a.Label, row.GroupA.Mean, b.Label, row.GroupB.Mean,
			row.Test.T, row.Test.DF, row.Test.PValue)
	}
	return report, nil
}

func (s *StrategyService) group(ctx context.Context, in GroupInput) (groupResult, error) {
	src, err := s.sources.Lookup(in.Source)
	if err != nil {
		return groupResult{}, apperrors.Wrapf(err, "group %q", in.Label)
	}

	table, hash, err := loadTable(s.reader, in.Path, in.Content)
	if err != nil {
		return groupResult{}, apperrors.Wrapf(err, "group %q", in.Label)
	}
	seqs, err := tabular.DecodeSequences(table, src)
	if err != nil {
		return groupResult{}, apperrors.Wrapf(err, "group %q: decode %s", in.Label, in.Path)
	}

	outcomes, err := wsls.TallyAll(ctx, seqs, src.LossEncoding, s.workers)
	if err != nil {
		return groupResult{}, apperrors.Wrapf(err, "group %q: tally", in.Label)
	}

	summary, err := wsls.Aggregate(in.Label, src.Name, outcomes)
	if err != nil {
		return groupResult{}, apperrors.Wrapf(err, "group %q: aggregate", in.Label)
	}
	s.log.Debug("[Strategy] group %q: %d participants, %d exclusions", in.Label, len(outcomes), len(summary.Exclusions))

	return groupResult{input: runInput(in.Label, in.Path, src.Name, hash), summary: summary}, nil
}
