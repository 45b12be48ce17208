package inference

// Bonferroni multiplies each p-value by the family size, capped at 1
func Bonferroni(ps []float64) []float64 {
	m := float64(len(ps))
	out := make([]float64, len(ps))
	for i, p := range ps {
		adj := p * m
		if adj > 1 {
			adj = 1
		}
		out[i] = adj
	}
	return out
}
