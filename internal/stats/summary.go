package stats

import "dilemma/internal/model"

// Summarize reduces a fitness vector to the scalars reported every epoch.
// Variance is the population variance. An empty vector yields a zero summary.
func Summarize(values []float64) model.Summary {
	if len(values) == 0 {
		return model.Summary{}
	}
	out := model.Summary{Max: values[0], Min: values[0]}
	for _, v := range values {
		out.Sum += v
		if v > out.Max {
			out.Max = v
		}
		if v < out.Min {
			out.Min = v
		}
	}
	out.Mean = out.Sum / float64(len(values))
	for _, v := range values {
		d := v - out.Mean
		out.Variance += d * d
	}
	out.Variance /= float64(len(values))
	return out
}
