package app

import (
	"context"
	"fmt"
	"sort"

	"choicelab/adapters/stats/inference"
	"choicelab/adapters/tabular"
	"choicelab/domain/analysis"
	"choicelab/domain/core"
	"choicelab/domain/run"
	"choicelab/domain/trial"
	"choicelab/internal"
	apperrors "choicelab/internal/errors"
	"choicelab/ports"
)

// ReactionTimeService compares reaction times between two groups
type ReactionTimeService struct {
	reader   ports.TableReader
	sources  *trial.Registry
	recorder ports.RunRecorder
	log      *internal.Logger
}

func NewReactionTimeService(reader ports.TableReader, sources *trial.Registry, recorder ports.RunRecorder, log *internal.Logger) *ReactionTimeService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &ReactionTimeService{reader: reader, sources: sources, recorder: recorder, log: log}
}

// Analyze builds each group's RT-by-trial curve (mean and SEM across the
// trials sharing a trial number) and runs Welch's t-test on the
// per-participant mean RTs. Missing RTs are skipped; participants without
// any RT do not count toward the test.
func (s *ReactionTimeService) Analyze(ctx context.Context, a, b GroupInput) (*analysis.ReactionTimeReport, error) {
	groupA, inA, err := s.group(a)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	groupB, inB, err := s.group(b)
	if err != nil {
		return nil, err
	}

	test, err := inference.WelchTTest(groupA.means, groupB.means)
	if err != nil {
		return nil, apperrors.Wrap(err, "compare reaction times")
	}

	report := &analysis.ReactionTimeReport{
		Inputs: []run.Input{inA, inB},
		GroupA: groupA.RTGroup,
		GroupB: groupB.RTGroup,
		Test:   test,
	}
	record(ctx, s.recorder, s.log, run.KindReactionTime, report.Inputs, func(id core.RunID, at core.Timestamp) interface{} {
		report.RunID, report.CreatedAt = id, at
		return report
	})

	s.log.Info("[RT] %s %.2fms vs %s %.2fms, t=%.3f df=%.2f p=%.4f",
		a.Label, groupA.Overall.Mean, b.Label, groupB.Overall.Mean, test.T, test.DF, test.PValue)
	return report, nil
}

type rtGroup struct {
	analysis.RTGroup
	means []float64
}

func (s *ReactionTimeService) group(in GroupInput) (rtGroup, run.Input, error) {
	src, err := s.sources.Lookup(in.Source)
	if err != nil {
		return rtGroup{}, run.Input{}, apperrors.Wrapf(err, "group %q", in.Label)
	}
	if src.RTColumn == "" {
		return rtGroup{}, run.Input{}, apperrors.InvalidInput(fmt.Sprintf("group %q: source %q has no reaction time column", in.Label, src.Name))
	}

	table, hash, err := loadTable(s.reader, in.Path, in.Content)
	if err != nil {
		return rtGroup{}, run.Input{}, apperrors.Wrapf(err, "group %q", in.Label)
	}
	if err := tabular.RequireColumns(table, src.RTColumn); err != nil {
		return rtGroup{}, run.Input{}, apperrors.Wrapf(err, "group %q", in.Label)
	}
	seqs, err := tabular.DecodeSequences(table, src)
	if err != nil {
		return rtGroup{}, run.Input{}, apperrors.Wrapf(err, "group %q: decode %s", in.Label, in.Path)
	}

	g, err := summariseRT(in.Label, src.Name, seqs)
	if err != nil {
		return rtGroup{}, run.Input{}, apperrors.Wrapf(err, "group %q", in.Label)
	}
	return g, runInput(in.Label, in.Path, src.Name, hash), nil
}

// summariseRT computes the per-trial curve and per-participant mean RTs
func summariseRT(label, source string, seqs []trial.Sequence) (rtGroup, error) {
	byTrial := make(map[int][]float64)
	means := make([]float64, 0, len(seqs))

	for _, seq := range seqs {
		var rts []float64
		for _, t := range seq.Trials {
			if !t.HasRT() {
				continue
			}
			rts = append(rts, t.RT)
			byTrial[t.Index] = append(byTrial[t.Index], t.RT)
		}
		if len(rts) == 0 {
			continue
		}
		d, err := inference.Describe(rts)
		if err != nil {
			return rtGroup{}, err
		}
		means = append(means, d.Mean)
	}

	overall, err := inference.Describe(means)
	if err != nil {
		return rtGroup{}, fmt.Errorf("reaction times: %w", err)
	}

	trials := make([]int, 0, len(byTrial))
	for idx := range byTrial {
		trials = append(trials, idx)
	}
	sort.Ints(trials)

	curve := make([]analysis.CurvePoint, 0, len(trials))
	for _, idx := range trials {
		d, err := inference.Describe(byTrial[idx])
		if err != nil {
			return rtGroup{}, err
		}
		curve = append(curve, analysis.CurvePoint{Trial: idx, RT: d})
	}

	return rtGroup{
		RTGroup: analysis.RTGroup{
			Label:        label,
			Source:       source,
			Participants: len(seqs),
			Overall:      overall,
			Curve:        curve,
		},
		means: means,
	}, nil
}
