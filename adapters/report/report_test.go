package report

import (
	"math"
	"strings"
	"testing"

	"choicelab/domain/analysis"
	"choicelab/domain/run"
	"choicelab/domain/stats"
	"choicelab/domain/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStrategy() *analysis.StrategyReport {
	return &analysis.StrategyReport{
		RunID:  "run-1",
		Inputs: []run.Input{{Label: "Anhedonic", Path: "a.csv", Source: "original", Hash: "0123456789abcdef"}},
		GroupA: strategy.GroupSummary{
			Label: "Anhedonic",
			Outcomes: []strategy.Outcome{
				{Participant: "p1", Trials: 10, WinStay: 3, TotalWinCases: 4, WinStayRate: strategy.NewRate(3, 4)},
			},
			Exclusions: []strategy.Exclusion{{Participant: "p1", Metric: strategy.MetricLoseShift, Reason: strategy.ReasonNoLosses}},
		},
		GroupB: strategy.GroupSummary{Label: "Non-Anhedonic"},
		Comparison: []strategy.ComparisonRow{{
			Metric: strategy.MetricWinStay,
			GroupA: stats.Description{N: 5, Mean: 61.234, SD: 10.5, SEM: 4.7},
			GroupB: stats.Description{N: 1, Mean: 70, SD: math.NaN(), SEM: math.NaN()},
			Test:   stats.WelchResult{T: -1.5, DF: 8.2, PValue: 0.17},
		}},
	}
}

func TestStrategyMarkdown(t *testing.T) {
	md := Strategy(sampleStrategy())

	assert.Contains(t, md, "# Win-Stay / Lose-Shift: Anhedonic vs Non-Anhedonic")
	assert.Contains(t, md, "| Win-Stay | 61.23 (10.50) | 4.70 | 70.00 (n/a) | n/a | -1.500 | 8.20 | 0.1700 |")
	assert.Contains(t, md, "| p1 | 3 | 0 | 4 | 0 | 75.00 | n/a |")
	assert.Contains(t, md, "- p1 (Lose-Shift): no pure-loss trials")
	assert.Contains(t, md, "sha256 0123456789ab")
}

func TestMarkdownDispatch(t *testing.T) {
	md, err := Markdown(&analysis.CorrelationReport{Results: []stats.CorrelationResult{
		{X: "Arew", Y: "DARS", N: 20, R: 0.5, PValue: 0.00001, PAdjusted: 0.00004},
	}})
	require.NoError(t, err)
	assert.Contains(t, md, "| Arew | DARS | 20 | 0.500 | < 0.0001 | < 0.0001 |")

	_, err = Markdown("not a report")
	assert.Error(t, err)
}

func TestForRecord(t *testing.T) {
	rec, err := run.NewRecord(run.KindStrategy, nil, sampleStrategy())
	require.NoError(t, err)

	md, err := ForRecord(rec)
	require.NoError(t, err)
	assert.Contains(t, md, "Win-Stay")

	rec.Kind = "bogus"
	_, err = ForRecord(rec)
	assert.Error(t, err)
}

func TestReactionTimeCurvesAlign(t *testing.T) {
	r := &analysis.ReactionTimeReport{
		GroupA: analysis.RTGroup{Label: "A", Curve: []analysis.CurvePoint{
			{Trial: 1, RT: stats.Description{N: 2, Mean: 500, SEM: 10}},
			{Trial: 2, RT: stats.Description{N: 2, Mean: 480, SEM: 12}},
		}},
		GroupB: analysis.RTGroup{Label: "B", Curve: []analysis.CurvePoint{
			{Trial: 2, RT: stats.Description{N: 3, Mean: 450, SEM: 9}},
			{Trial: 3, RT: stats.Description{N: 3, Mean: 440, SEM: 8}},
		}},
	}
	md := ReactionTime(r)

	assert.Contains(t, md, "| 1 | 500.0 | 10.0 |  |  |")
	assert.Contains(t, md, "| 2 | 480.0 | 12.0 | 450.0 | 9.0 |")
	assert.Contains(t, md, "| 3 |  |  | 440.0 | 8.0 |")
}

func TestParametersMarkdown(t *testing.T) {
	md := Parameters(&analysis.ParameterReport{
		GroupA: "Anhedonic", GroupB: "Non-Anhedonic",
		Rows: []analysis.ParameterRow{{
			Parameter: "Arew",
			GroupA:    stats.Description{Mean: 0.3, SEM: 0.05},
			GroupB:    stats.Description{Mean: 0.4, SEM: 0.04},
			Test:      stats.WelchResult{T: math.Inf(1), DF: 10, PValue: 0, PAdjusted: 0},
		}},
	})
	assert.Contains(t, md, "| Arew | 0.300 | 0.050 | 0.400 | 0.040 | +Inf | 10.00 | 0.0000 | 0.0000 |")
}

func TestHTMLRendersTables(t *testing.T) {
	out := string(HTML(Strategy(sampleStrategy())))
	assert.True(t, strings.Contains(out, "<table>"), out)
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "Anhedonic")
}

func TestHTMLDropsRawHTML(t *testing.T) {
	out := string(HTML("# Title\n\n<script>alert(1)</script>\n"))
	assert.NotContains(t, out, "<script>")
}
