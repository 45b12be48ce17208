package stats

// TestType identifies the statistical test that produced a result
type TestType string

const (
	TestWelch   TestType = "welch_t"
	TestPearson TestType = "pearson_r"
)

// Description is the descriptive summary of one sample
type Description struct {
	N    int     `json:"n"`
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
	SEM  float64 `json:"sem"`
}

// WelchResult is a two-sample t-test with unequal variances.
// DF is the Welch-Satterthwaite approximation; PValue is two-tailed.
type WelchResult struct {
	Test   TestType `json:"test"`
	T      float64  `json:"t"`
	DF     float64  `json:"df"`
	PValue float64  `json:"p_value"`
	MeanA  float64  `json:"mean_a"`
	MeanB  float64  `json:"mean_b"`
	NA     int      `json:"n_a"`
	NB     int      `json:"n_b"`
	// PAdjusted is set when the test belongs to a corrected family
	PAdjusted float64 `json:"p_adjusted,omitempty"`
}

// Significant reports whether the (adjusted, if present) p-value is below alpha
func (w WelchResult) Significant(alpha float64) bool {
	if w.PAdjusted > 0 {
		return w.PAdjusted < alpha
	}
	return w.PValue < alpha
}

// CorrelationResult is a Pearson product-moment correlation
type CorrelationResult struct {
	Test      TestType `json:"test"`
	X         string   `json:"x"`
	Y         string   `json:"y"`
	R         float64  `json:"r"`
	PValue    float64  `json:"p_value"`
	PAdjusted float64  `json:"p_adjusted"`
	N         int      `json:"n"`
}
