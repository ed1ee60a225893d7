package inference

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/okian/scorecast/internal/domain/features"
)

// Predictor holds the process-wide artifact. It is installed once and read
// concurrently afterwards without locking.
type Predictor struct {
	artifact atomic.Pointer[Artifact]
	encode   features.Encoder
}

// NewPredictor constructs an empty Predictor.
func NewPredictor(opts ...Option) *Predictor {
	p := &Predictor{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Install makes a validated artifact available. It succeeds at most once.
func (p *Predictor) Install(a *Artifact) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if !p.artifact.CompareAndSwap(nil, a) {
		return ErrAlreadyLoaded
	}
	return nil
}

// Loaded reports whether an artifact is installed.
func (p *Predictor) Loaded() bool {
	return p.artifact.Load() != nil
}

// Version returns the installed model version, or DefaultVersion.
func (p *Predictor) Version() string {
	return p.artifact.Load().ModelVersion()
}

// encoder picks, in order: an explicit WithEncoder, the artifact's own
// formulas, then features.Encode.
func (p *Predictor) encoder(a *Artifact) features.Encoder {
	if p.encode != nil {
		return p.encode
	}
	if a.Encoder != nil {
		return a.Encoder
	}
	return features.Encode
}

// Predict returns the raw regressor output for r. The caller clamps it.
func (p *Predictor) Predict(ctx context.Context, r features.RawFeatures) (score float64, err error) {
	a := p.artifact.Load()
	if a == nil {
		return 0, ErrModelNotLoaded
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	stage := StageEncode
	defer func() {
		if rec := recover(); rec != nil {
			score, err = 0, &PredictionError{Stage: stage, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	inter, err := p.encoder(a)(r)
	if err != nil {
		return 0, &PredictionError{Stage: stage, Err: err}
	}

	stage = StagePreprocess
	primary, err := a.Preprocessor.Transform(r)
	if err != nil {
		return 0, &PredictionError{Stage: stage, Err: err}
	}

	stage = StageScale
	scaled, err := a.Scaler.Transform(inter)
	if err != nil {
		return 0, &PredictionError{Stage: stage, Err: err}
	}

	stage = StageModel
	x := Concat(primary, scaled)
	if len(x) != a.Model.Inputs() {
		return 0, &PredictionError{Stage: stage, Err: fmt.Errorf("%w: got %d, model expects %d", ErrWidthMismatch, len(x), a.Model.Inputs())}
	}
	score, err = a.Model.Predict(x)
	if err != nil {
		return 0, &PredictionError{Stage: stage, Err: err}
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, &PredictionError{Stage: stage, Err: ErrNonFinite}
	}
	return score, nil
}
