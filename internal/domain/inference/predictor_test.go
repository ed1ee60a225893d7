package inference_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/okian/scorecast/internal/domain/features"
	"github.com/okian/scorecast/internal/domain/inference"
	. "github.com/smartystreets/goconvey/convey"
)

type stubPreprocessor struct {
	out []float64
	err error
}

func (s stubPreprocessor) Transform(features.RawFeatures) ([]float64, error) { return s.out, s.err }
func (s stubPreprocessor) Width() int                                        { return len(s.out) }

type stubScaler struct {
	out   []float64
	err   error
	panic bool
}

func (s stubScaler) Transform(features.InteractionFeatures) ([]float64, error) {
	if s.panic {
		panic("index out of range")
	}
	return s.out, s.err
}

// weightedModel is a fixed linear model: sum(w[i]*x[i]).
type weightedModel struct {
	w    []float64
	seen *[]float64
}

func (m weightedModel) Predict(x []float64) (float64, error) {
	if m.seen != nil {
		*m.seen = append([]float64(nil), x...)
	}
	var s float64
	for i := range x {
		s += m.w[i] * x[i]
	}
	return s, nil
}
func (m weightedModel) Inputs() int { return len(m.w) }

type constModel struct {
	v   float64
	n   int
	err error
}

func (m constModel) Predict([]float64) (float64, error) { return m.v, m.err }
func (m constModel) Inputs() int                        { return m.n }

func newArtifact(model inference.Regressor) *inference.Artifact {
	return &inference.Artifact{
		Preprocessor: stubPreprocessor{out: []float64{1, 2}},
		Scaler:       stubScaler{out: []float64{10, 20, 30, 40, 50, 60}},
		Model:        model,
		Version:      "2.0.0",
	}
}

func TestPredictor_NotLoaded(t *testing.T) {
	Convey("Given a predictor without an artifact", t, func() {
		p := inference.NewPredictor()

		Convey("When predicting", func() {
			_, err := p.Predict(context.Background(), features.Example())

			Convey("Then ErrModelNotLoaded is returned", func() {
				So(errors.Is(err, inference.ErrModelNotLoaded), ShouldBeTrue)
				So(p.Loaded(), ShouldBeFalse)
				So(p.Version(), ShouldEqual, inference.DefaultVersion)
			})
		})
	})
}

func TestPredictor_Install(t *testing.T) {
	Convey("Given a predictor", t, func() {
		p := inference.NewPredictor()

		Convey("When installing an incomplete artifact", func() {
			err := p.Install(&inference.Artifact{})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, inference.ErrNilArtifact), ShouldBeTrue)
				So(p.Loaded(), ShouldBeFalse)
			})
		})

		Convey("When the model width disagrees with the transforms", func() {
			err := p.Install(newArtifact(constModel{n: 3}))

			Convey("Then it is rejected", func() {
				So(errors.Is(err, inference.ErrWidthMismatch), ShouldBeTrue)
			})
		})

		Convey("When installing twice", func() {
			So(p.Install(newArtifact(constModel{n: 8})), ShouldBeNil)
			err := p.Install(newArtifact(constModel{n: 8}))

			Convey("Then the first artifact stays", func() {
				So(errors.Is(err, inference.ErrAlreadyLoaded), ShouldBeTrue)
				So(p.Loaded(), ShouldBeTrue)
				So(p.Version(), ShouldEqual, "2.0.0")
			})
		})
	})
}

func TestPredictor_ConcatOrder(t *testing.T) {
	Convey("Given a fixed linear stub model", t, func() {
		w := []float64{1, 2, 3, 4, 5, 6, 7, 8}
		var seen []float64
		p := inference.NewPredictor()
		So(p.Install(newArtifact(weightedModel{w: w, seen: &seen})), ShouldBeNil)

		Convey("When predicting", func() {
			got, err := p.Predict(context.Background(), features.Example())
			So(err, ShouldBeNil)

			Convey("Then the model sees the primary block first", func() {
				So(seen, ShouldResemble, []float64{1, 2, 10, 20, 30, 40, 50, 60})
			})

			Convey("Then swapping the blocks would change the prediction", func() {
				swapped, _ := weightedModel{w: w}.Predict(inference.Concat([]float64{10, 20, 30, 40, 50, 60}, []float64{1, 2}))
				So(got, ShouldNotEqual, swapped)
				So(got, ShouldEqual, 1+4+30+80+150+240+350+480)
			})
		})
	})
}

func TestPredictor_Failures(t *testing.T) {
	ctx := context.Background()

	Convey("Given a transform that fails", t, func() {
		cause := errors.New("unknown category")
		a := newArtifact(constModel{n: 8})
		a.Preprocessor = stubPreprocessor{out: []float64{1, 2}, err: cause}
		p := inference.NewPredictor()
		So(p.Install(a), ShouldBeNil)

		Convey("Then a PredictionError wraps the cause", func() {
			_, err := p.Predict(ctx, features.Example())
			var perr *inference.PredictionError
			So(errors.As(err, &perr), ShouldBeTrue)
			So(perr.Stage, ShouldEqual, inference.StagePreprocess)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "prediction failed")
		})
	})

	Convey("Given a scaler that panics", t, func() {
		a := newArtifact(constModel{n: 8})
		a.Scaler = stubScaler{panic: true}
		p := inference.NewPredictor()
		So(p.Install(a), ShouldBeNil)

		Convey("Then the panic is recovered as a PredictionError", func() {
			_, err := p.Predict(ctx, features.Example())
			var perr *inference.PredictionError
			So(errors.As(err, &perr), ShouldBeTrue)
			So(perr.Stage, ShouldEqual, inference.StageScale)
			So(perr.Err.Error(), ShouldContainSubstring, "index out of range")
		})
	})

	Convey("Given a scaler that returns a short vector", t, func() {
		a := newArtifact(constModel{n: 8})
		a.Scaler = stubScaler{out: []float64{1, 2, 3}}
		p := inference.NewPredictor()
		So(p.Install(a), ShouldBeNil)

		Convey("Then the width mismatch is caught before the model", func() {
			_, err := p.Predict(ctx, features.Example())
			So(errors.Is(err, inference.ErrWidthMismatch), ShouldBeTrue)
		})
	})

	Convey("Given a model that returns NaN", t, func() {
		p := inference.NewPredictor()
		So(p.Install(newArtifact(constModel{v: math.NaN(), n: 8})), ShouldBeNil)

		Convey("Then the output is rejected", func() {
			_, err := p.Predict(ctx, features.Example())
			So(errors.Is(err, inference.ErrNonFinite), ShouldBeTrue)
		})
	})

	Convey("Given an encoder that fails", t, func() {
		p := inference.NewPredictor(inference.WithEncoder(func(features.RawFeatures) (features.InteractionFeatures, error) {
			return features.InteractionFeatures{}, features.NewValidationError("study_method", "x", "bad")
		}))
		So(p.Install(newArtifact(constModel{n: 8})), ShouldBeNil)

		Convey("Then the failure is reported at the encode stage", func() {
			_, err := p.Predict(ctx, features.Example())
			var perr *inference.PredictionError
			So(errors.As(err, &perr), ShouldBeTrue)
			So(perr.Stage, ShouldEqual, inference.StageEncode)
			So(errors.Is(err, features.ErrInvalidFeatures), ShouldBeTrue)
		})
	})

	Convey("Given a cancelled context", t, func() {
		p := inference.NewPredictor()
		So(p.Install(newArtifact(constModel{v: 50, n: 8})), ShouldBeNil)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		Convey("Then Predict returns the context error", func() {
			_, err := p.Predict(cctx, features.Example())
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestPredictor_Concurrent(t *testing.T) {
	Convey("Given an installed predictor", t, func() {
		p := inference.NewPredictor()
		So(p.Install(newArtifact(constModel{v: 77, n: 8})), ShouldBeNil)

		Convey("Then concurrent predictions agree", func() {
			var wg sync.WaitGroup
			results := make([]float64, 64)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], _ = p.Predict(context.Background(), features.Example())
				}(i)
			}
			wg.Wait()
			for _, r := range results {
				So(r, ShouldEqual, 77)
			}
		})
	})
}

func TestPredictor_EncoderPrecedence(t *testing.T) {
	Convey("Given an artifact that carries its own encoder", t, func() {
		var artifactCalls, optionCalls int
		a := newArtifact(constModel{v: 60, n: 8})
		a.Encoder = func(r features.RawFeatures) (features.InteractionFeatures, error) {
			artifactCalls++
			return features.Encode(r)
		}

		Convey("When no encoder option is set", func() {
			p := inference.NewPredictor()
			So(p.Install(a), ShouldBeNil)
			_, err := p.Predict(context.Background(), features.Example())

			Convey("Then the artifact encoder is used", func() {
				So(err, ShouldBeNil)
				So(artifactCalls, ShouldEqual, 1)
			})
		})

		Convey("When an encoder option is set", func() {
			p := inference.NewPredictor(inference.WithEncoder(func(r features.RawFeatures) (features.InteractionFeatures, error) {
				optionCalls++
				return features.Encode(r)
			}))
			So(p.Install(a), ShouldBeNil)
			_, err := p.Predict(context.Background(), features.Example())

			Convey("Then the option wins", func() {
				So(err, ShouldBeNil)
				So(optionCalls, ShouldEqual, 1)
				So(artifactCalls, ShouldEqual, 0)
			})
		})
	})
}
