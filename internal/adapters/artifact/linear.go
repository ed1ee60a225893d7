package artifact

import (
	"fmt"
	"math"
	"slices"
)

// LinearRegressor computes intercept + sum(coef[i] * x[i]).
type LinearRegressor struct {
	intercept    float64
	coefficients []float64
}

// NewLinearRegressor validates spec and builds the model.
func NewLinearRegressor(spec ModelSpec) (*LinearRegressor, error) {
	if spec.Type != ModelTypeLinear {
		return nil, fmt.Errorf("%w: model type %q", ErrUnsupportedFormat, spec.Type)
	}
	if len(spec.Coefficients) == 0 {
		return nil, fmt.Errorf("%w: model has no coefficients", ErrInvalidArtifact)
	}
	for i, c := range append([]float64{spec.Intercept}, spec.Coefficients...) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("%w: model parameter %d is not finite", ErrInvalidArtifact, i)
		}
	}
	return &LinearRegressor{intercept: spec.Intercept, coefficients: slices.Clone(spec.Coefficients)}, nil
}

// Inputs is the expected vector length.
func (m *LinearRegressor) Inputs() int { return len(m.coefficients) }

// Predict evaluates the model on x.
func (m *LinearRegressor) Predict(x []float64) (float64, error) {
	if len(x) != len(m.coefficients) {
		return 0, fmt.Errorf("%w: got %d inputs, want %d", ErrInvalidArtifact, len(x), len(m.coefficients))
	}
	y := m.intercept
	for i, v := range x {
		y += m.coefficients[i] * v
	}
	return y, nil
}
