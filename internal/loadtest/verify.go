package loadtest

import (
	"fmt"
	"slices"

	"github.com/okian/scorecast/internal/domain/scoring"
)

// roundingSlack covers a score rounded across a category boundary: the
// category is assigned before rounding to two decimals.
const roundingSlack = 0.005

// Check reports every way p breaks the published score scale.
func Check(p Prediction) []string {
	var issues []string
	if p.PredictedScore < scoring.MinScore || p.PredictedScore > scoring.MaxScore {
		issues = append(issues, fmt.Sprintf("score %v outside [%v, %v]", p.PredictedScore, scoring.MinScore, scoring.MaxScore))
	}
	if !slices.Contains(scoring.Categories(), p.ScoreCategory) {
		issues = append(issues, fmt.Sprintf("unknown category %q", p.ScoreCategory))
	} else if !categoryMatches(p.PredictedScore, p.ScoreCategory) {
		issues = append(issues, fmt.Sprintf("category %q does not match score %v", p.ScoreCategory, p.PredictedScore))
	}
	if p.ModelVersion == "" {
		issues = append(issues, "empty model version")
	}
	if scoring.Round(p.PredictedScore) != p.PredictedScore {
		issues = append(issues, fmt.Sprintf("score %v has more than two decimals", p.PredictedScore))
	}
	return issues
}

func categoryMatches(score float64, category string) bool {
	return scoring.Category(score) == category ||
		scoring.Category(score-roundingSlack) == category ||
		scoring.Category(score+roundingSlack) == category
}

// Same reports whether two answers for one student are identical.
func Same(a, b Prediction) bool {
	return a == b
}
