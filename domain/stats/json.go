package stats

import (
	"encoding/json"
	"math"
)

// NaN and ±Inf are legitimate results here (single-value samples, zero
// standard error) but are not valid JSON numbers; they are written as null
// and read back as NaN.

func jsonFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func fromJSON(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

type descriptionJSON struct {
	N    int      `json:"n"`
	Mean *float64 `json:"mean"`
	SD   *float64 `json:"sd"`
	SEM  *float64 `json:"sem"`
}

func (d Description) MarshalJSON() ([]byte, error) {
	return json.Marshal(descriptionJSON{N: d.N, Mean: jsonFloat(d.Mean), SD: jsonFloat(d.SD), SEM: jsonFloat(d.SEM)})
}

func (d *Description) UnmarshalJSON(data []byte) error {
	var v descriptionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = Description{N: v.N, Mean: fromJSON(v.Mean), SD: fromJSON(v.SD), SEM: fromJSON(v.SEM)}
	return nil
}

type welchJSON struct {
	Test      TestType `json:"test"`
	T         *float64 `json:"t"`
	DF        *float64 `json:"df"`
	PValue    *float64 `json:"p_value"`
	MeanA     *float64 `json:"mean_a"`
	MeanB     *float64 `json:"mean_b"`
	NA        int      `json:"n_a"`
	NB        int      `json:"n_b"`
	PAdjusted float64  `json:"p_adjusted,omitempty"`
}

func (w WelchResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(welchJSON{
		Test: w.Test, T: jsonFloat(w.T), DF: jsonFloat(w.DF), PValue: jsonFloat(w.PValue),
		MeanA: jsonFloat(w.MeanA), MeanB: jsonFloat(w.MeanB), NA: w.NA, NB: w.NB, PAdjusted: w.PAdjusted,
	})
}

func (w *WelchResult) UnmarshalJSON(data []byte) error {
	var v welchJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*w = WelchResult{
		Test: v.Test, T: fromJSON(v.T), DF: fromJSON(v.DF), PValue: fromJSON(v.PValue),
		MeanA: fromJSON(v.MeanA), MeanB: fromJSON(v.MeanB), NA: v.NA, NB: v.NB, PAdjusted: v.PAdjusted,
	}
	return nil
}
