// Package trial holds the per-trial records of the reward/punishment learning
// task and the source profiles that describe how a data file encodes them.
package trial

import (
	"fmt"
	"math"
	"strings"

	"choicelab/domain/core"
)

// Trial is one choice made by one participant
type Trial struct {
	Index  int     `json:"index"`
	Choice string  `json:"choice"`
	Gain   int     `json:"gain"`
	Loss   int     `json:"loss"`
	RT     float64 `json:"rt"` // NaN when the source has no reaction time column
}

// HasRT reports whether the trial carries a reaction time
func (t Trial) HasRT() bool {
	return !math.IsNaN(t.RT)
}

// Sequence is the ordered trial history of one participant. Trials are kept in
// the order they were recorded and are never re-sorted.
type Sequence struct {
	Participant core.ParticipantID `json:"participant"`
	Trials      []Trial            `json:"trials"`
}

// Len returns the number of trials
func (s Sequence) Len() int {
	return len(s.Trials)
}

// LossEncoding is the value a data source writes into the loss column when a
// loss occurred. Original task exports use 1, simulated exports use -1.
type LossEncoding int

const (
	LossPositive LossEncoding = 1
	LossNegative LossEncoding = -1
)

// Validate rejects anything other than the two known encodings
func (e LossEncoding) Validate() error {
	switch e {
	case LossPositive, LossNegative:
		return nil
	default:
		return fmt.Errorf("%w: %d (expected 1 or -1)", core.ErrInvalidEncoding, int(e))
	}
}

// Sentinel returns the loss column value that marks a loss
func (e LossEncoding) Sentinel() int {
	return int(e)
}

// Accepts reports whether v is a legal loss cell under this encoding
func (e LossEncoding) Accepts(v int) bool {
	return v == 0 || v == int(e)
}

// IsPureWin is a rewarded trial with no loss
func (e LossEncoding) IsPureWin(t Trial) bool {
	return t.Gain == 1 && t.Loss == 0
}

// IsPureLoss is an unrewarded trial that incurred a loss
func (e LossEncoding) IsPureLoss(t Trial) bool {
	return t.Gain == 0 && t.Loss == e.Sentinel()
}

// UnmarshalText lets configuration files spell the encoding as 1, -1,
// positive or negative
func (e *LossEncoding) UnmarshalText(text []byte) error {
	v, err := ParseLossEncoding(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// UnmarshalJSON accepts either a JSON number or one of the text spellings
func (e *LossEncoding) UnmarshalJSON(data []byte) error {
	return e.UnmarshalText([]byte(strings.Trim(string(data), `"`)))
}

// ParseLossEncoding parses "1", "-1", "positive" or "negative"
func ParseLossEncoding(s string) (LossEncoding, error) {
	switch s {
	case "1", "+1", "positive":
		return LossPositive, nil
	case "-1", "negative":
		return LossNegative, nil
	default:
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidEncoding, s)
	}
}
