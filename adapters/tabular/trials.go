package tabular

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"choicelab/domain/core"
	"choicelab/domain/trial"
)

// RequireColumns fails with core.ErrMissingColumn naming every absent column
func RequireColumns(t *Table, columns ...string) error {
	var missing []string
	for _, c := range columns {
		if _, ok := t.Column(c); !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s (have: %s)", core.ErrMissingColumn,
			strings.Join(missing, ", "), strings.Join(t.Headers, ", "))
	}
	return nil
}

// DecodeSequences groups the table's rows into participant sequences.
// Participants appear in order of first appearance and each participant's
// trials keep file order. Gain must be 0 or 1 and loss must be 0 or the
// source's loss sentinel; any other value is an error naming the row.
func DecodeSequences(t *Table, src trial.Source) ([]trial.Sequence, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := RequireColumns(t, src.RequiredColumns()...); err != nil {
		return nil, err
	}

	pCol, _ := t.Column(src.ParticipantColumn)
	cCol, _ := t.Column(src.ChoiceColumn)
	gCol, _ := t.Column(src.GainColumn)
	lCol, _ := t.Column(src.LossColumn)
	tCol, hasTrial := -1, false
	if src.TrialColumn != "" {
		tCol, hasTrial = t.Column(src.TrialColumn)
	}
	rtCol, hasRT := -1, false
	if src.RTColumn != "" {
		rtCol, hasRT = t.Column(src.RTColumn)
	}

	var seqs []trial.Sequence
	pos := make(map[core.ParticipantID]int)

	for r := range t.Rows {
		line := r + 2 // 1-based, after the header
		if isBlank(t.Rows[r]) {
			continue
		}

		pid, err := core.ParseParticipantID(t.Cell(r, pCol))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w: %v", line, core.ErrInvalidValue, err)
		}

		gain, err := parseInt(t.Cell(r, gCol))
		if err != nil || (gain != 0 && gain != 1) {
			return nil, fmt.Errorf("row %d: %w: %s=%q (want 0 or 1)", line, core.ErrInvalidValue, src.GainColumn, t.Cell(r, gCol))
		}
		loss, err := parseInt(t.Cell(r, lCol))
		if err != nil || !src.LossEncoding.Accepts(loss) {
			return nil, fmt.Errorf("row %d: %w: %s=%q not valid for source %q (loss encoded as %d)",
				line, core.ErrInvalidEncoding, src.LossColumn, t.Cell(r, lCol), src.Name, src.LossEncoding.Sentinel())
		}

		tr := trial.Trial{Choice: t.Cell(r, cCol), Gain: gain, Loss: loss, RT: math.NaN()}
		if tr.Choice == "" {
			return nil, fmt.Errorf("row %d: %w: empty %s", line, core.ErrInvalidValue, src.ChoiceColumn)
		}
		if hasRT {
			if cell := t.Cell(r, rtCol); cell != "" && !strings.EqualFold(cell, "nan") {
				rt, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("row %d: %w: %s=%q", line, core.ErrInvalidValue, src.RTColumn, cell)
				}
				tr.RT = rt
			}
		}

		i, seen := pos[pid]
		if !seen {
			i = len(seqs)
			pos[pid] = i
			seqs = append(seqs, trial.Sequence{Participant: pid})
		}
		tr.Index = len(seqs[i].Trials) + 1
		if hasTrial {
			idx, err := parseInt(t.Cell(r, tCol))
			if err != nil {
				return nil, fmt.Errorf("row %d: %w: %s=%q", line, core.ErrInvalidValue, src.TrialColumn, t.Cell(r, tCol))
			}
			tr.Index = idx
		}
		seqs[i].Trials = append(seqs[i].Trials, tr)
	}

	return seqs, nil
}

// parseInt accepts integers written as floats ("1.0") as pandas exports them
func parseInt(s string) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// FloatColumn returns a numeric column with blank or unparsable cells as NaN
func FloatColumn(t *Table, name string) ([]float64, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrMissingColumn, name)
	}
	out := make([]float64, len(t.Rows))
	for r := range t.Rows {
		v, err := strconv.ParseFloat(t.Cell(r, c), 64)
		if err != nil {
			v = math.NaN()
		}
		out[r] = v
	}
	return out, nil
}

// StringColumn returns a column's trimmed cells
func StringColumn(t *Table, name string) ([]string, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrMissingColumn, name)
	}
	out := make([]string, len(t.Rows))
	for r := range t.Rows {
		out[r] = t.Cell(r, c)
	}
	return out, nil
}
