// Package wsls counts win-stay and lose-shift behaviour in participant trial
// sequences and compares the resulting rates between groups.
package wsls

import (
	"context"
	"runtime"

	"choicelab/domain/strategy"
	"choicelab/domain/trial"

	"golang.org/x/sync/errgroup"
)

// Tally scans one participant's trials in recorded order.
//
// A win-stay is counted when the previous trial was a pure win and the choice
// repeats; a lose-shift when the previous trial was a pure loss and the choice
// changes. The win and loss denominators count every pure-win and pure-loss
// trial, the last one included, so a participant whose final trial is a win
// has a slightly deflated win-stay rate.
func Tally(seq trial.Sequence, enc trial.LossEncoding) strategy.Outcome {
	out := strategy.Outcome{Participant: seq.Participant, Trials: seq.Len()}

	var prev *trial.Trial
	for i := range seq.Trials {
		cur := &seq.Trials[i]

		if enc.IsPureWin(*cur) {
			out.TotalWinCases++
		}
		if enc.IsPureLoss(*cur) {
			out.TotalLossCases++
		}

		if prev != nil {
			if enc.IsPureWin(*prev) && cur.Choice == prev.Choice {
				out.WinStay++
			}
			if enc.IsPureLoss(*prev) && cur.Choice != prev.Choice {
				out.LoseShift++
			}
		}
		prev = cur
	}

	// Without a transition neither rate means anything.
	if seq.Len() > 1 {
		out.WinStayRate = strategy.NewRate(out.WinStay, out.TotalWinCases)
		out.LoseShiftRate = strategy.NewRate(out.LoseShift, out.TotalLossCases)
	}
	return out
}

// TallyAll tallies every sequence, fanning participants out over at most
// workers goroutines. Results are returned in input order. workers <= 0 uses
// GOMAXPROCS.
func TallyAll(ctx context.Context, seqs []trial.Sequence, enc trial.LossEncoding, workers int) ([]strategy.Outcome, error) {
	if err := enc.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]strategy.Outcome, len(seqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range seqs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = Tally(seqs[i], enc)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
