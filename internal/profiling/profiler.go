// Package profiling inspects a trial file before analysis: participant and
// trial counts, the loss values actually present and the reaction time
// distribution.
package profiling

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"choicelab/adapters/tabular"
	"choicelab/domain/trial"

	"github.com/montanaflynn/stats"
)

// Profile describes a trial file read with a source profile's column names
type Profile struct {
	Source       string         `json:"source"`
	Rows         int            `json:"rows"`
	Participants int            `json:"participants"`
	TrialCounts  Summary        `json:"trials_per_participant"`
	GainValues   map[string]int `json:"gain_values"`
	LossValues   map[string]int `json:"loss_values"`
	// InferredEncoding is 0 when the loss column has no losses or mixes both encodings
	InferredEncoding trial.LossEncoding `json:"inferred_encoding"`
	MixedEncoding    bool               `json:"mixed_encoding"`
	RT               *RTProfile         `json:"rt,omitempty"`
}

// EncodingMatches reports whether the loss values fit the declared encoding
func (p Profile) EncodingMatches(declared trial.LossEncoding) bool {
	return !p.MixedEncoding && (p.InferredEncoding == 0 || p.InferredEncoding == declared)
}

// Summary is a five-number style summary
type Summary struct {
	N      int     `json:"n"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// RTProfile summarises the reaction time column
type RTProfile struct {
	Summary
	Missing  int `json:"missing"`
	Outliers int `json:"outliers"`
}

// ProfileTrials reads the source's columns without decoding them, so it
// also works on files that DecodeSequences rejects.
func ProfileTrials(t *tabular.Table, src trial.Source) (*Profile, error) {
	if err := tabular.RequireColumns(t, src.RequiredColumns()...); err != nil {
		return nil, err
	}

	participants, _ := tabular.StringColumn(t, src.ParticipantColumn)
	gains, _ := tabular.StringColumn(t, src.GainColumn)
	losses, _ := tabular.StringColumn(t, src.LossColumn)

	p := &Profile{
		Source:     src.Name,
		Rows:       len(t.Rows),
		GainValues: make(map[string]int),
		LossValues: make(map[string]int),
	}

	counts := make(map[string]int)
	var order []string
	for i, id := range participants {
		if id == "" {
			continue
		}
		if _, ok := counts[id]; !ok {
			order = append(order, id)
		}
		counts[id]++
		p.GainValues[normalise(gains[i])]++
		p.LossValues[normalise(losses[i])]++
	}
	p.Participants = len(order)

	perParticipant := make([]float64, 0, len(order))
	for _, id := range order {
		perParticipant = append(perParticipant, float64(counts[id]))
	}
	if len(perParticipant) > 0 {
		s, err := summarise(perParticipant)
		if err != nil {
			return nil, fmt.Errorf("trial counts: %w", err)
		}
		p.TrialCounts = s
	}

	p.InferredEncoding, p.MixedEncoding = inferEncoding(p.LossValues)

	if src.RTColumn != "" {
		if _, ok := t.Column(src.RTColumn); ok {
			rt, err := profileRT(t, src.RTColumn)
			if err != nil {
				return nil, err
			}
			p.RT = rt
		}
	}
	return p, nil
}

// normalise maps numeric spellings like "1.0" onto "1"
func normalise(v string) string {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return v
}

func inferEncoding(values map[string]int) (trial.LossEncoding, bool) {
	positive, negative := values["1"] > 0, values["-1"] > 0
	switch {
	case positive && negative:
		return 0, true
	case positive:
		return trial.LossPositive, false
	case negative:
		return trial.LossNegative, false
	default:
		return 0, false
	}
}

func profileRT(t *tabular.Table, column string) (*RTProfile, error) {
	values, err := tabular.FloatColumn(t, column)
	if err != nil {
		return nil, err
	}

	prof := &RTProfile{}
	data := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			prof.Missing++
			continue
		}
		data = append(data, v)
	}
	if len(data) == 0 {
		return prof, nil
	}

	s, err := summarise(data)
	if err != nil {
		return nil, fmt.Errorf("reaction times: %w", err)
	}
	prof.Summary = s
	prof.Outliers = detectOutliers(data, s.Q25, s.Q75)
	return prof, nil
}

func summarise(data []float64) (Summary, error) {
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	s := Summary{N: len(sorted), Min: sorted[0], Max: sorted[len(sorted)-1]}
	var err error
	if s.Mean, err = stats.Mean(sorted); err != nil {
		return Summary{}, err
	}
	if s.Median, err = stats.Median(sorted); err != nil {
		return Summary{}, err
	}
	if s.Q25, err = stats.PercentileNearestRank(sorted, 25); err != nil {
		return Summary{}, err
	}
	if s.Q75, err = stats.PercentileNearestRank(sorted, 75); err != nil {
		return Summary{}, err
	}
	return s, nil
}

// detectOutliers counts values outside 1.5 IQR of the quartiles
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lower, upper := q25-1.5*iqr, q75+1.5*iqr

	n := 0
	for _, x := range data {
		if x < lower || x > upper {
			n++
		}
	}
	return n
}
