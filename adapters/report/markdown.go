// Package report renders analysis reports as markdown and HTML.
package report

import (
	"fmt"
	"math"
	"strings"

	"choicelab/domain/analysis"
	"choicelab/domain/run"
	"choicelab/domain/stats"
	"choicelab/domain/strategy"
)

// Markdown renders any of the analysis report types
func Markdown(report interface{}) (string, error) {
	switch r := report.(type) {
	case *analysis.StrategyReport:
		return Strategy(r), nil
	case *analysis.ReactionTimeReport:
		return ReactionTime(r), nil
	case *analysis.ParameterReport:
		return Parameters(r), nil
	case *analysis.CorrelationReport:
		return Correlation(r), nil
	default:
		return "", fmt.Errorf("no markdown renderer for %T", report)
	}
}

// ForRecord decodes a recorded run's payload and renders it
func ForRecord(rec *run.Record) (string, error) {
	var report interface{}
	switch rec.Kind {
	case run.KindStrategy:
		report = &analysis.StrategyReport{}
	case run.KindReactionTime:
		report = &analysis.ReactionTimeReport{}
	case run.KindParameters:
		report = &analysis.ParameterReport{}
	case run.KindCorrelation:
		report = &analysis.CorrelationReport{}
	default:
		return "", fmt.Errorf("unknown run kind %q", rec.Kind)
	}
	if err := rec.Decode(report); err != nil {
		return "", err
	}
	return Markdown(report)
}

// Strategy renders the win-stay / lose-shift comparison
func Strategy(r *analysis.StrategyReport) string {
	var b strings.Builder
	a, g := r.GroupA, r.GroupB

	fmt.Fprintf(&b, "# Win-Stay / Lose-Shift: %s vs %s\n\n", a.Label, g.Label)
	header(&b, r.RunID.String(), r.Inputs)

	b.WriteString("## Group comparison\n\n")
	table(&b, []string{"Strategy", a.Label + " mean (SD)", a.Label + " SEM", g.Label + " mean (SD)", g.Label + " SEM", "t", "df", "p"})
	for _, row := range r.Comparison {
		tableRow(&b,
			row.Metric.Label(),
			meanSD(row.GroupA), num(row.GroupA.SEM, 2),
			meanSD(row.GroupB), num(row.GroupB.SEM, 2),
			num(row.Test.T, 3), num(row.Test.DF, 2), pval(row.Test.PValue),
		)
	}
	b.WriteString("\n")

	for _, grp := range []strategy.GroupSummary{a, g} {
		fmt.Fprintf(&b, "## %s participants (%d)\n\n", grp.Label, len(grp.Outcomes))
		table(&b, []string{"Participant", "Win-Stay", "Lose-Shift", "Win cases", "Loss cases", "Win-Stay %", "Lose-Shift %"})
		for _, o := range grp.Outcomes {
			tableRow(&b,
				o.Participant.String(),
				fmt.Sprint(o.WinStay), fmt.Sprint(o.LoseShift),
				fmt.Sprint(o.TotalWinCases), fmt.Sprint(o.TotalLossCases),
				rate(o.WinStayRate), rate(o.LoseShiftRate),
			)
		}
		b.WriteString("\n")

		if len(grp.Exclusions) > 0 {
			b.WriteString("Excluded from group statistics:\n\n")
			for _, e := range grp.Exclusions {
				fmt.Fprintf(&b, "- %s (%s): %s\n", e.Participant, e.Metric.Label(), e.Reason)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ReactionTime renders the RT comparison and the per-trial curves
func ReactionTime(r *analysis.ReactionTimeReport) string {
	var b strings.Builder
	a, g := r.GroupA, r.GroupB

	fmt.Fprintf(&b, "# Reaction time: %s vs %s\n\n", a.Label, g.Label)
	header(&b, r.RunID.String(), r.Inputs)

	b.WriteString("## Per-participant mean RT (ms)\n\n")
	table(&b, []string{"Group", "N", "Mean (SD)", "SEM"})
	for _, grp := range []analysis.RTGroup{a, g} {
		tableRow(&b, grp.Label, fmt.Sprint(grp.Overall.N), meanSD(grp.Overall), num(grp.Overall.SEM, 2))
	}
	fmt.Fprintf(&b, "\nWelch t = %s, df = %s, p = %s\n\n", num(r.Test.T, 3), num(r.Test.DF, 2), pval(r.Test.PValue))

	b.WriteString("## RT by trial\n\n")
	table(&b, []string{"Trial", a.Label + " mean", a.Label + " SEM", g.Label + " mean", g.Label + " SEM"})
	for _, row := range mergeCurves(a.Curve, g.Curve) {
		tableRow(&b, fmt.Sprint(row.trial), cellMean(row.a), cellSEM(row.a), cellMean(row.b), cellSEM(row.b))
	}
	b.WriteString("\n")
	return b.String()
}

// Parameters renders the model-parameter group comparison
func Parameters(r *analysis.ParameterReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Model parameters: %s vs %s\n\n", r.GroupA, r.GroupB)
	header(&b, r.RunID.String(), r.Inputs)

	table(&b, []string{"Parameter", r.GroupA + " mean", r.GroupA + " SEM", r.GroupB + " mean", r.GroupB + " SEM", "t", "df", "p", "p (Bonferroni)"})
	for _, row := range r.Rows {
		tableRow(&b,
			row.Parameter,
			num(row.GroupA.Mean, 3), num(row.GroupA.SEM, 3),
			num(row.GroupB.Mean, 3), num(row.GroupB.SEM, 3),
			num(row.Test.T, 3), num(row.Test.DF, 2), pval(row.Test.PValue), pval(row.Test.PAdjusted),
		)
	}
	b.WriteString("\n")
	return b.String()
}

// Correlation renders a family of Pearson correlations
func Correlation(r *analysis.CorrelationReport) string {
	var b strings.Builder

	b.WriteString("# Correlations\n\n")
	header(&b, r.RunID.String(), r.Inputs)

	table(&b, []string{"X", "Y", "N", "r", "p", "p (Bonferroni)"})
	for _, c := range r.Results {
		tableRow(&b, c.X, c.Y, fmt.Sprint(c.N), num(c.R, 3), pval(c.PValue), pval(c.PAdjusted))
	}
	b.WriteString("\n")
	return b.String()
}

func header(b *strings.Builder, runID string, inputs []run.Input) {
	if runID != "" {
		fmt.Fprintf(b, "Run `%s`\n\n", runID)
	}
	for _, in := range inputs {
		src := ""
		if in.Source != "" {
			src = ", source " + in.Source
		}
		fmt.Fprintf(b, "- %s: `%s`%s (sha256 %s)\n", in.Label, in.Path, src, in.Hash.Short())
	}
	if len(inputs) > 0 {
		b.WriteString("\n")
	}
}

func table(b *strings.Builder, headers []string) {
	tableRow(b, headers...)
	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	tableRow(b, seps...)
}

func tableRow(b *strings.Builder, cells ...string) {
	for i, c := range cells {
		cells[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
}

func num(v float64, prec int) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	if math.IsInf(v, 1) {
		return "+Inf"
	}
	if math.IsInf(v, -1) {
		return "-Inf"
	}
	return fmt.Sprintf("%.*f", prec, v)
}

func pval(p float64) string {
	if !math.IsNaN(p) && p > 0 && p < 0.0001 {
		return "< 0.0001"
	}
	return num(p, 4)
}

func meanSD(d stats.Description) string {
	return fmt.Sprintf("%s (%s)", num(d.Mean, 2), num(d.SD, 2))
}

func rate(r strategy.Rate) string {
	if !r.Defined {
		return "n/a"
	}
	return num(r.Percent, 2)
}

type curveRow struct {
	trial int
	a, b  *stats.Description
}

// mergeCurves aligns two per-trial curves on trial number. Both curves are
// sorted by trial.
func mergeCurves(a, b []analysis.CurvePoint) []curveRow {
	var out []curveRow
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i].Trial < b[j].Trial):
			out = append(out, curveRow{trial: a[i].Trial, a: &a[i].RT})
			i++
		case i >= len(a) || b[j].Trial < a[i].Trial:
			out = append(out, curveRow{trial: b[j].Trial, b: &b[j].RT})
			j++
		default:
			out = append(out, curveRow{trial: a[i].Trial, a: &a[i].RT, b: &b[j].RT})
			i++
			j++
		}
	}
	return out
}

func cellMean(d *stats.Description) string {
	if d == nil {
		return ""
	}
	return num(d.Mean, 1)
}

func cellSEM(d *stats.Description) string {
	if d == nil {
		return ""
	}
	return num(d.SEM, 1)
}
