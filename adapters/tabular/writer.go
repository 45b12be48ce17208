package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"choicelab/domain/stats"
	"choicelab/domain/strategy"
	"choicelab/domain/trial"

	"github.com/xuri/excelize/v2"
)

// OutcomeHeaders is the per-participant table layout
var OutcomeHeaders = []string{
	"participant", "win_stay", "lose_shift", "total_win_cases", "total_loss_cases",
	"win_stay_percentage", "lose_shift_percentage",
}

// SummaryHeaders is the group comparison layout for two group labels
func SummaryHeaders(labelA, labelB string) []string {
	return []string{
		"strategy",
		labelA + " mean (SD)",
		labelB + " mean (SD)",
		"t_statistic",
		"df",
		"p_value",
	}
}

// OutcomeRecords renders outcomes as table rows; undefined rates are empty cells
func OutcomeRecords(outcomes []strategy.Outcome) [][]string {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []string{
			o.Participant.String(),
			strconv.Itoa(o.WinStay),
			strconv.Itoa(o.LoseShift),
			strconv.Itoa(o.TotalWinCases),
			strconv.Itoa(o.TotalLossCases),
			formatRate(o.WinStayRate),
			formatRate(o.LoseShiftRate),
		})
	}
	return rows
}

// SummaryRecords renders the comparison rows
func SummaryRecords(rows []strategy.ComparisonRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Metric.Label(),
			MeanSD(r.GroupA),
			MeanSD(r.GroupB),
			formatFloat(r.Test.T, 4),
			formatFloat(r.Test.DF, 2),
			formatFloat(r.Test.PValue, 4),
		})
	}
	return out
}

// MeanSD formats "mean (sd)" with two decimals
func MeanSD(d stats.Description) string {
	if d.N == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f (%s)", d.Mean, formatFloat(d.SD, 2))
}

// WriteOutcomes writes the per-participant table as CSV
func WriteOutcomes(w io.Writer, outcomes []strategy.Outcome) error {
	return writeCSV(w, OutcomeHeaders, OutcomeRecords(outcomes))
}

// WriteSummary writes the two-row comparison table as CSV
func WriteSummary(w io.Writer, labelA, labelB string, rows []strategy.ComparisonRow) error {
	return writeCSV(w, SummaryHeaders(labelA, labelB), SummaryRecords(rows))
}

// WriteTrials writes sequences back out in a source's column layout
func WriteTrials(w io.Writer, src trial.Source, seqs []trial.Sequence) error {
	headers := []string{src.ParticipantColumn}
	if src.TrialColumn != "" {
		headers = append(headers, src.TrialColumn)
	}
	headers = append(headers, src.ChoiceColumn, src.GainColumn, src.LossColumn)
	if src.RTColumn != "" {
		headers = append(headers, src.RTColumn)
	}

	var rows [][]string
	for _, seq := range seqs {
		for _, t := range seq.Trials {
			row := []string{seq.Participant.String()}
			if src.TrialColumn != "" {
				row = append(row, strconv.Itoa(t.Index))
			}
			row = append(row, t.Choice, strconv.Itoa(t.Gain), strconv.Itoa(t.Loss))
			if src.RTColumn != "" {
				rt := ""
				if t.HasRT() {
					rt = strconv.FormatFloat(t.RT, 'f', 1, 64)
				}
				row = append(row, rt)
			}
			rows = append(rows, row)
		}
	}
	return writeCSV(w, headers, rows)
}

// Sheet is one named worksheet of a workbook
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// WriteWorkbook writes sheets to an .xlsx file. Cells that parse as numbers
// are stored as numbers.
func WriteWorkbook(path string, sheets ...Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("create sheet %q: %w", s.Name, err)
		}

		if err := setRow(f, s.Name, 1, s.Headers); err != nil {
			return err
		}
		for r, row := range s.Rows {
			if err := setRow(f, s.Name, r+2, row); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []string) error {
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		if v, err := strconv.ParseFloat(c, 64); err == nil {
			values[i] = v
		} else {
			values[i] = c
		}
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func writeCSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func formatRate(r strategy.Rate) string {
	if !r.Defined {
		return ""
	}
	return strconv.FormatFloat(r.Percent, 'f', 4, 64)
}

func formatFloat(v float64, prec int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
