package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"choicelab/adapters/recorder"
	"choicelab/adapters/tabular"
	"choicelab/domain/analysis"
	"choicelab/domain/core"
	"choicelab/domain/run"
	"choicelab/domain/trial"
	"choicelab/internal"
	apperrors "choicelab/internal/errors"
	"choicelab/internal/testkit"
	"choicelab/internal/wsls"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordRun(ctx context.Context, rec *run.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockRecorder) GetRun(ctx context.Context, id core.RunID) (*run.Record, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(*run.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecorder) ListRuns(ctx context.Context, limit int) ([]run.Record, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]run.Record), args.Error(1)
}

func (m *mockRecorder) Close() error { return nil }

func quietLog() *internal.Logger {
	return internal.NewLogger(io.Discard, internal.LogLevelError, false)
}

func generate(t *testing.T, prefix string, enc trial.LossEncoding, seed int64) []trial.Sequence {
	t.Helper()
	cfg := testkit.DefaultTaskConfig()
	cfg.IDPrefix = prefix
	cfg.Encoding = enc
	cfg.Seed = seed
	gen, err := testkit.NewTaskGenerator(cfg)
	require.NoError(t, err)
	return gen.Generate()
}

func writeTrials(t *testing.T, name string, src trial.Source, seqs []trial.Sequence) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, tabular.WriteTrials(&buf, src, seqs))
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func newStrategyService(rec *mockRecorder) *StrategyService {
	return NewStrategyService(tabular.NewReader(quietLog()), trial.NewRegistry(), rec, 4, quietLog())
}

func TestStrategyAnalyzeAcrossEncodings(t *testing.T) {
	seqsA := generate(t, "a", trial.LossPositive, 1)
	seqsB := generate(t, "s", trial.LossNegative, 2)
	pathA := writeTrials(t, "anhedonic.csv", trial.OriginalSource, seqsA)
	pathB := writeTrials(t, "simulated.csv", trial.SimulatedSource, seqsB)

	rec := &mockRecorder{}
	rec.On("RecordRun", mock.Anything, mock.MatchedBy(func(r *run.Record) bool {
		return r.Kind == run.KindStrategy && len(r.Inputs) == 2
	})).Return(nil).Once()

	report, err := newStrategyService(rec).Analyze(context.Background(),
		GroupInput{Label: "Anhedonic", Path: pathA, Source: "original"},
		GroupInput{Label: "Simulated", Path: pathB, Source: "simulated"},
	)
	require.NoError(t, err)
	rec.AssertExpectations(t)

	assert.False(t, report.RunID.IsEmpty())
	require.Len(t, report.GroupA.Outcomes, len(seqsA))
	require.Len(t, report.GroupB.Outcomes, len(seqsB))
	for i, seq := range seqsA {
		assert.Equal(t, wsls.Tally(seq, trial.LossPositive), report.GroupA.Outcomes[i])
	}
	for i, seq := range seqsB {
		assert.Equal(t, wsls.Tally(seq, trial.LossNegative), report.GroupB.Outcomes[i])
	}

	require.Len(t, report.Comparison, 2)
	assert.Equal(t, "win_stay", string(report.Comparison[0].Metric))
	assert.Equal(t, "lose_shift", string(report.Comparison[1].Metric))
	assert.Equal(t, len(seqsA), report.Comparison[0].Test.NA)

	dataA, err := os.ReadFile(pathA)
	require.NoError(t, err)
	assert.Equal(t, core.NewHash(dataA), report.Inputs[0].Hash)
	assert.Equal(t, "anhedonic.csv", report.Inputs[0].Path)
	assert.Equal(t, "simulated", report.Inputs[1].Source)
}

func TestStrategyAnalyzeUploadedContent(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, tabular.WriteTrials(&a, trial.OriginalSource, generate(t, "a", trial.LossPositive, 3)))
	require.NoError(t, tabular.WriteTrials(&b, trial.OriginalSource, generate(t, "b", trial.LossPositive, 4)))

	report, err := NewStrategyService(tabular.NewReader(quietLog()), trial.NewRegistry(), nil, 0, quietLog()).
		Analyze(context.Background(),
			GroupInput{Label: "A", Path: "a.csv", Source: "original", Content: a.Bytes()},
			GroupInput{Label: "B", Path: "b.csv", Source: "original", Content: b.Bytes()},
		)
	require.NoError(t, err)
	assert.Equal(t, core.NewHash(b.Bytes()), report.Inputs[1].Hash)
	assert.False(t, report.RunID.IsEmpty())
}

func TestStrategyAnalyzeRejectsMismatchedEncoding(t *testing.T) {
	// Loss written as -1 but declared as the original (+1) export
	pathA := writeTrials(t, "a.csv", trial.OriginalSource, generate(t, "a", trial.LossPositive, 1))
	pathB := writeTrials(t, "b.csv", trial.OriginalSource, generate(t, "b", trial.LossNegative, 2))

	_, err := newStrategyService(&mockRecorder{}).Analyze(context.Background(),
		GroupInput{Label: "A", Path: pathA, Source: "original"},
		GroupInput{Label: "B", Path: pathB, Source: "original"},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidEncoding)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestStrategyAnalyzeMissingColumns(t *testing.T) {
	pathA := writeTrials(t, "a.csv", trial.OriginalSource, generate(t, "a", trial.LossPositive, 1))
	pathB := writeTrials(t, "b.csv", trial.SimulatedSource, generate(t, "b", trial.LossNegative, 2))

	_, err := newStrategyService(&mockRecorder{}).Analyze(context.Background(),
		GroupInput{Label: "A", Path: pathA, Source: "original"},
		GroupInput{Label: "B", Path: pathB, Source: "original"},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMissingColumn)
	assert.Contains(t, err.Error(), "Participant.Public.ID")
}

func TestStrategyAnalyzeUnknownSource(t *testing.T) {
	pathA := writeTrials(t, "a.csv", trial.OriginalSource, generate(t, "a", trial.LossPositive, 1))
	pathB := writeTrials(t, "b.csv", trial.OriginalSource, generate(t, "b", trial.LossPositive, 2))

	_, err := newStrategyService(&mockRecorder{}).Analyze(context.Background(),
		GroupInput{Label: "A", Path: pathA, Source: "nope"},
		GroupInput{Label: "B", Path: pathB, Source: "original"},
	)
	assert.ErrorIs(t, err, core.ErrUnknownSource)
}

func TestStrategyAnalyzeEmptyGroup(t *testing.T) {
	// Every participant has a single trial, so no rate is defined
	one := []trial.Sequence{
		testkit.Sequence("x1", [3]string{"arm1", "1", "0"}),
		testkit.Sequence("x2", [3]string{"arm2", "0", "1"}),
	}
	pathA := writeTrials(t, "a.csv", trial.OriginalSource, generate(t, "a", trial.LossPositive, 1))
	pathB := writeTrials(t, "b.csv", trial.OriginalSource, one)

	_, err := newStrategyService(&mockRecorder{}).Analyze(context.Background(),
		GroupInput{Label: "A", Path: pathA, Source: "original"},
		GroupInput{Label: "B", Path: pathB, Source: "original"},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrEmptyGroup)
	assert.Equal(t, apperrors.CodeValidationError, apperrors.GetCode(err))
}

func TestStrategyAnalyzeRecorderFailureIsNotFatal(t *testing.T) {
	pathA := writeTrials(t, "a.csv", trial.OriginalSource, generate(t, "a", trial.LossPositive, 1))
	pathB := writeTrials(t, "b.csv", trial.OriginalSource, generate(t, "b", trial.LossPositive, 2))

	rec := &mockRecorder{}
	rec.On("RecordRun", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	report, err := newStrategyService(rec).Analyze(context.Background(),
		GroupInput{Label: "A", Path: pathA, Source: "original"},
		GroupInput{Label: "B", Path: pathB, Source: "original"},
	)
	require.NoError(t, err)
	assert.Len(t, report.Comparison, 2)
	rec.AssertNumberOfCalls(t, "RecordRun", 1)
}

func TestStrategyRunRoundTripsThroughSQLRecorder(t *testing.T) {
	ctx := context.Background()
	store, err := recorder.Open(ctx, "sqlite", ":memory:", quietLog())
	require.NoError(t, err)
	defer store.Close()

	pathA := writeTrials(t, "a.csv", trial.OriginalSource, generate(t, "a", trial.LossPositive, 1))
	pathB := writeTrials(t, "b.csv", trial.OriginalSource, generate(t, "b", trial.LossPositive, 2))

	svc := NewStrategyService(tabular.NewReader(quietLog()), trial.NewRegistry(), store, 2, quietLog())
	report, err := svc.Analyze(ctx,
		GroupInput{Label: "A", Path: pathA, Source: "original"},
		GroupInput{Label: "B", Path: pathB, Source: "original"},
	)
	require.NoError(t, err)

	got, err := store.GetRun(ctx, report.RunID)
	require.NoError(t, err)
	var decoded analysis.StrategyReport
	require.NoError(t, got.Decode(&decoded))
	assert.Equal(t, report.RunID, decoded.RunID)
	assert.Equal(t, report.GroupA.Outcomes, decoded.GroupA.Outcomes)
	assert.InDelta(t, report.Comparison[0].Test.PValue, decoded.Comparison[0].Test.PValue, 1e-12)
}
