// Package model contains domain models passed between layers.
package model

import "github.com/okian/scorecast/internal/domain/scoring"

// Prediction is the published result for one student.
type Prediction struct {
	Score        float64 // clamped to [0,100], rounded to two decimals
	Category     string  // computed on the clamped, unrounded score
	ModelVersion string
	// Raw is the unclamped regressor output.
	Raw float64
}

// NewPrediction turns a raw regressor output into a Prediction.
func NewPrediction(raw float64, version string) Prediction {
	clamped := scoring.Clamp(raw)
	return Prediction{
		Score:        scoring.Round(clamped),
		Category:     scoring.Category(clamped),
		ModelVersion: version,
		Raw:          raw,
	}
}

// Clamped reports whether the raw output fell outside the score scale.
func (p Prediction) Clamped() bool {
	return scoring.ClampDirection(p.Raw) != scoring.ClampNone
}
