// Package inference runs the feature pipeline against a loaded model artifact.
package inference

import (
	"github.com/okian/scorecast/internal/domain/features"
)

// DefaultVersion is reported when an artifact carries no version.
const DefaultVersion = "1.0.0"

// Preprocessor is the pre-fitted transform applied to raw features.
type Preprocessor interface {
	Transform(r features.RawFeatures) ([]float64, error)
	// Width is the fixed length of every Transform output.
	Width() int
}

// InteractionScaler is the pre-fitted transform applied to interaction features.
type InteractionScaler interface {
	Transform(f features.InteractionFeatures) ([]float64, error)
}

// Regressor maps a full feature vector to a score.
type Regressor interface {
	Predict(x []float64) (float64, error)
	// Inputs is the vector length the model was trained on.
	Inputs() int
}

// Artifact bundles the transforms and model produced by training.
type Artifact struct {
	Preprocessor Preprocessor
	Scaler       InteractionScaler
	Model        Regressor
	Version      string
	Name         string

	// Encoder overrides features.Encode when the artifact declares its own
	// interaction formulas.
	Encoder features.Encoder
}

// Validate checks the artifact is complete and its widths agree.
func (a *Artifact) Validate() error {
	if a == nil || a.Preprocessor == nil || a.Scaler == nil || a.Model == nil {
		return ErrNilArtifact
	}
	if want := a.Preprocessor.Width() + len(features.InteractionColumns); a.Model.Inputs() != want {
		return ErrWidthMismatch
	}
	return nil
}

// ModelVersion returns the artifact version or DefaultVersion.
func (a *Artifact) ModelVersion() string {
	if a == nil || a.Version == "" {
		return DefaultVersion
	}
	return a.Version
}

// Concat joins the primary block and the scaled interaction block, primary first.
func Concat(primary, interactions []float64) []float64 {
	out := make([]float64, 0, len(primary)+len(interactions))
	out = append(out, primary...)
	return append(out, interactions...)
}
