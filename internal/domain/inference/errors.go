package inference

import "errors"

// Predictor errors.
var (
	ErrModelNotLoaded = errors.New("model not loaded")
	ErrAlreadyLoaded  = errors.New("model already loaded")
	ErrNilArtifact    = errors.New("artifact is incomplete")
	ErrWidthMismatch  = errors.New("feature width mismatch")
	ErrNonFinite      = errors.New("non-finite prediction")
)

// Pipeline stages reported by PredictionError.
const (
	StageEncode     = "encode"
	StagePreprocess = "preprocess"
	StageScale      = "scale"
	StageModel      = "model"
)

// PredictionError wraps a failure inside the inference pipeline. Its message is
// generic; the cause is reachable through errors.Unwrap for logging.
type PredictionError struct {
	Stage string
	Err   error
}

func (e *PredictionError) Error() string {
	return "prediction failed"
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}
