// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/scorecast/internal/adapters/artifact"
	"github.com/okian/scorecast/internal/domain/features"
	"github.com/okian/scorecast/internal/domain/inference"
	"github.com/okian/scorecast/internal/domain/model"
	"github.com/okian/scorecast/internal/domain/scoring"
	"github.com/okian/scorecast/internal/domain/types"
	"github.com/okian/scorecast/pkg/logger"
	"github.com/okian/scorecast/pkg/metrics"
)

// Default artifact locations, relative to the working directory.
const (
	DefaultModelPath  = "model/model.json"
	DefaultSchemaPath = "model/feature_config.json"
)

// Prediction error kinds reported to metrics.
const (
	errKindNotLoaded  = "model_not_loaded"
	errKindValidation = "validation"
	errKindInternal   = "internal"
)

// Service owns the loaded artifact and serves predictions from it.
type Service struct {
	mu sync.RWMutex

	predictor *inference.Predictor
	loader    artifact.Loader
	schema    json.RawMessage

	// Configuration
	modelPath  string
	schemaPath string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithModelPath sets the artifact file.
func WithModelPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.modelPath = path
		}
	}
}

// WithSchemaPath sets the feature schema file. An empty path serves the
// schema derived from the feature domains.
func WithSchemaPath(path string) Option {
	return func(s *Service) {
		s.schemaPath = path
	}
}

// WithLoader replaces the artifact loader.
func WithLoader(l artifact.Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithPredictor replaces the predictor, e.g. one built with a custom encoder.
func WithPredictor(p *inference.Predictor) Option {
	return func(s *Service) {
		if p != nil {
			s.predictor = p
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		predictor:  inference.NewPredictor(),
		loader:     artifact.NewFileLoader(),
		modelPath:  DefaultModelPath,
		schemaPath: DefaultSchemaPath,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the artifact and the feature schema. Any failure is returned
// and the service stays unloaded; callers are expected to exit.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "loading model artifact",
		logger.String("model_path", s.modelPath),
		logger.String("schema_path", s.schemaPath),
	)

	begin := time.Now()
	var (
		a      *inference.Artifact
		schema json.RawMessage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = s.loader.Load(gctx, s.modelPath)
		if err != nil {
			return fmt.Errorf("load artifact %s: %w", s.modelPath, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		schema, err = s.loader.LoadSchema(gctx, s.schemaPath)
		if err != nil {
			return fmt.Errorf("load schema %s: %w", s.schemaPath, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.predictor.Install(a); err != nil {
		return fmt.Errorf("install artifact: %w", err)
	}
	s.schema = schema
	s.started = true

	took := time.Since(begin)
	metrics.SetModelLoaded(s.predictor.Version(), float64(took.Microseconds())/1000)
	s.logger.Info(ctx, "model loaded",
		logger.String("version", s.predictor.Version()),
		logger.String("name", a.Name),
		logger.Bool("artifact_formulas", a.Encoder != nil),
		logger.Duration("took", took),
	)

	return nil
}

// Health reports whether the model is loaded and which version serves.
func (s *Service) Health(_ context.Context) types.Health {
	return types.Health{
		Status:       types.HealthyStatus,
		ModelLoaded:  s.predictor.Loaded(),
		ModelVersion: s.predictor.Version(),
	}
}

// Schema returns the feature schema bytes as loaded.
func (s *Service) Schema(_ context.Context) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, inference.ErrModelNotLoaded
	}
	return s.schema, nil
}

// Predict validates raw, runs the model and maps the clamped output to a
// category. Validation failures never reach the encoder.
func (s *Service) Predict(ctx context.Context, raw features.RawFeatures) (model.Prediction, error) {
	if err := raw.Validate(); err != nil {
		var verr *features.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				metrics.RecordValidationFailure(f.Field)
			}
		}
		metrics.RecordPredictionError(errKindValidation)
		return model.Prediction{}, err
	}

	if !s.predictor.Loaded() {
		metrics.RecordPredictionError(errKindNotLoaded)
		return model.Prediction{}, inference.ErrModelNotLoaded
	}

	begin := time.Now()
	score, err := s.predictor.Predict(ctx, raw)
	if err != nil {
		var perr *inference.PredictionError
		if errors.As(err, &perr) {
			s.log().Error(ctx, "prediction failed",
				logger.String("stage", perr.Stage),
				logger.Error(perr.Err),
			)
			metrics.RecordPredictionError(perr.Stage)
		} else {
			metrics.RecordPredictionError(errKindInternal)
		}
		return model.Prediction{}, err
	}

	p := model.NewPrediction(score, s.predictor.Version())
	if dir := scoring.ClampDirection(score); dir != scoring.ClampNone {
		metrics.RecordClamp(dir)
		s.log().Debug(ctx, "model output clamped",
			logger.Float64("raw", score),
			logger.String("direction", dir),
		)
	}
	metrics.RecordPrediction(p.Category, p.Score, float64(time.Since(begin).Microseconds())/1000)

	return p, nil
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()
	if l == nil {
		return logger.Get()
	}
	return l
}
