// Package scoring maps raw regression output onto the published score scale.
package scoring

import "math"

// Score scale bounds.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Category labels, best first.
const (
	Excellent        = "Excellent"
	Good             = "Good"
	Average          = "Average"
	BelowAverage     = "Below Average"
	NeedsImprovement = "Needs Improvement"
)

// Clamp direction labels reported by ClampDirection.
const (
	ClampNone = ""
	ClampLow  = "low"
	ClampHigh = "high"
)

// threshold is an inclusive lower bound for a category.
type threshold struct {
	min   float64
	label string
}

var thresholds = []threshold{ //nolint:gochecknoglobals // fixed scale
	{90, Excellent},
	{80, Good},
	{70, Average},
	{60, BelowAverage},
}

// Clamp bounds x to [MinScore, MaxScore]. NaN maps to MinScore.
func Clamp(x float64) float64 {
	if math.IsNaN(x) {
		return MinScore
	}
	return math.Max(MinScore, math.Min(MaxScore, x))
}

// ClampDirection reports which bound Clamp would apply to x, if any.
func ClampDirection(x float64) string {
	switch {
	case math.IsNaN(x) || x < MinScore:
		return ClampLow
	case x > MaxScore:
		return ClampHigh
	default:
		return ClampNone
	}
}

// Category buckets a score using inclusive lower bounds.
func Category(score float64) string {
	for _, t := range thresholds {
		if score >= t.min {
			return t.label
		}
	}
	return NeedsImprovement
}

// Categories lists every label, best first.
func Categories() []string {
	out := make([]string, 0, len(thresholds)+1)
	for _, t := range thresholds {
		out = append(out, t.label)
	}
	return append(out, NeedsImprovement)
}

// Round rounds to two decimals, half away from zero.
func Round(score float64) float64 {
	return math.Round(score*100) / 100
}
