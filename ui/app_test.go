package ui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"choicelab/adapters/recorder"
	"choicelab/domain/analysis"
	"choicelab/domain/run"
	"choicelab/domain/stats"
	"choicelab/domain/strategy"
	"choicelab/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, *recorder.SQLRecorder) {
	t.Helper()
	log := internal.NewLogger(io.Discard, internal.LogLevelError, false)
	store, err := recorder.Open(context.Background(), "sqlite", ":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	app, err := NewApp(store, log)
	require.NoError(t, err)
	return app, store
}

func TestIndexEmpty(t *testing.T) {
	app, _ := newTestApp(t)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No runs recorded yet")
}

func TestIndexAndRunPage(t *testing.T) {
	app, store := newTestApp(t)

	rep := &analysis.StrategyReport{
		GroupA: strategy.GroupSummary{Label: "Anhedonic"},
		GroupB: strategy.GroupSummary{Label: "Non-Anhedonic"},
		Comparison: []strategy.ComparisonRow{{
			Metric: strategy.MetricWinStay,
			GroupA: stats.Description{N: 3, Mean: 60, SD: 5, SEM: 2.9},
			GroupB: stats.Description{N: 3, Mean: 70, SD: 5, SEM: 2.9},
			Test:   stats.WelchResult{T: -2.45, DF: 4, PValue: 0.07},
		}},
	}
	inputs := []run.Input{{Label: "Anhedonic", Path: "a.csv"}, {Label: "Non-Anhedonic", Path: "b.csv"}}
	rec, err := run.NewRecord(run.KindStrategy, inputs, rep)
	require.NoError(t, err)
	require.NoError(t, store.RecordRun(context.Background(), rec))

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/runs/"+rec.ID.String())
	assert.Contains(t, w.Body.String(), "Anhedonic / Non-Anhedonic")

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/"+rec.ID.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "Win-Stay")
	assert.Contains(t, body, "60.00 (5.00)")
}

func TestRunNotFound(t *testing.T) {
	app, _ := newTestApp(t)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIndexBadLimit(t *testing.T) {
	app, _ := newTestApp(t)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
