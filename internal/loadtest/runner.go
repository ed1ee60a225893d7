package loadtest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/scorecast/internal/domain/features"
	"github.com/okian/scorecast/pkg/logger"
)

// ErrNotReady is returned when the service reports no loaded model.
var ErrNotReady = errors.New("service has no model loaded")

const failureTransport = "transport"

// outcome is the result of one student, filled by exactly one goroutine.
type outcome struct {
	pred    Prediction
	err     error
	latency time.Duration

	repeated  bool
	repeat    Prediction
	repeatErr error
}

// Run checks readiness, submits cfg.Requests generated students and
// verifies every answer. Request failures are counted in the report;
// only setup failures and cancellation return an error.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Named("loadtest")
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting prediction load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Any("seed", cfg.Seed),
	)

	health, err := client.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	if !health.ModelLoaded {
		return nil, ErrNotReady
	}
	if _, err := client.Schema(ctx); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	students := NewGenerator(cfg.Seed, cfg.BoundaryRate).Students(cfg.Requests)
	outcomes := make([]outcome, len(students))

	begin := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range students {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcomes[i] = submit(gctx, client, students[i], cfg.RepeatEvery > 0 && i%cfg.RepeatEvery == 0)
			if cfg.Verbose {
				log.Debug(gctx, "prediction",
					logger.Int("index", i),
					logger.Float64("score", outcomes[i].pred.PredictedScore),
					logger.String("category", outcomes[i].pred.ScoreCategory),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load test interrupted: %w", err)
	}

	report := aggregate(cfg, health.ModelVersion, outcomes)
	report.finish(latencies(outcomes), time.Since(begin))

	log.Info(ctx, "load test finished",
		logger.Int("succeeded", report.Succeeded),
		logger.Int("failed", report.Failed),
		logger.Int("violations", report.ViolationCount),
		logger.String("duration", report.Duration),
		logger.Float64("requestsPerSecond", report.Throughput),
	)
	return report, nil
}

func submit(ctx context.Context, c *Client, s features.RawFeatures, repeat bool) outcome {
	var o outcome
	start := time.Now()
	o.pred, o.err = c.Predict(ctx, s)
	o.latency = time.Since(start)
	if repeat && o.err == nil {
		o.repeated = true
		o.repeat, o.repeatErr = c.Predict(ctx, s)
	}
	return o
}

func aggregate(cfg *Config, version string, outcomes []outcome) *Report {
	r := &Report{
		BaseURL:      cfg.BaseURL,
		ModelVersion: version,
		Seed:         cfg.Seed,
		Requests:     len(outcomes),
		Categories:   map[string]int{},
	}
	for i, o := range outcomes {
		if o.err != nil {
			r.Failed++
			if r.Failures == nil {
				r.Failures = map[string]int{}
			}
			r.Failures[failureKind(o.err)]++
			continue
		}
		r.Succeeded++
		r.Categories[o.pred.ScoreCategory]++
		for _, issue := range Check(o.pred) {
			r.addViolation(i, issue)
		}
		if o.pred.ModelVersion != version {
			r.addViolation(i, fmt.Sprintf("model version %q, health reported %q", o.pred.ModelVersion, version))
		}
		if !o.repeated {
			continue
		}
		r.Repeats++
		switch {
		case o.repeatErr != nil:
			r.addViolation(i, "repeat failed: "+o.repeatErr.Error())
		case !Same(o.pred, o.repeat):
			r.addViolation(i, fmt.Sprintf("not deterministic: %v then %v", o.pred.PredictedScore, o.repeat.PredictedScore))
		}
	}
	return r
}

func failureKind(err error) string {
	var serr *StatusError
	if errors.As(err, &serr) {
		return strconv.Itoa(serr.Status)
	}
	return failureTransport
}

func latencies(outcomes []outcome) []time.Duration {
	out := make([]time.Duration, 0, len(outcomes))
	for _, o := range outcomes {
		if o.err == nil {
			out = append(out, o.latency)
		}
	}
	return out
}
