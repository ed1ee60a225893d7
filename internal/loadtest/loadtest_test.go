package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/okian/scorecast/internal/adapters/http/api"
	service "github.com/okian/scorecast/internal/app"
	"github.com/okian/scorecast/internal/domain/features"
	"github.com/okian/scorecast/internal/domain/scoring"
	"github.com/okian/scorecast/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init(logger.WithWriter(io.Discard))
	os.Exit(m.Run())
}

// newService starts the shipped sample model behind the real API routes.
func newService(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(
		service.WithModelPath("../../model/model.json"),
		service.WithSchemaPath("../../model/feature_config.json"),
	)
	require.NoError(t, svc.Start(context.Background()))

	r := chi.NewRouter()
	r.Use(api.RequestID)
	api.NewServer(svc).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(url string) *Config {
	return &Config{
		BaseURL:      url,
		Requests:     200,
		Workers:      8,
		Timeout:      5 * time.Second,
		Seed:         7,
		RepeatEvery:  5,
		BoundaryRate: 0.25,
		Format:       FormatJSON,
	}
}

func TestGeneratorStaysInDomain(t *testing.T) {
	g := NewGenerator(1, 0.5)
	for i, s := range g.Students(2000) {
		require.NoError(t, s.Validate(), "student %d: %+v", i, s)
	}
}

func TestGeneratorIsSeeded(t *testing.T) {
	a := NewGenerator(42, 0.1).Students(50)
	b := NewGenerator(42, 0.1).Students(50)
	c := NewGenerator(43, 0.1).Students(50)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGeneratorBoundaryStudents(t *testing.T) {
	s := NewGenerator(3, 1).Student()
	for _, col := range features.NumericColumns {
		v, _ := s.Numeric(col)
		r := features.NumericDomains[col]
		assert.True(t, v == r.Min || v == r.Max, "%s=%v is not an edge", col, v)
	}
}

func TestCheck(t *testing.T) {
	ok := Prediction{PredictedScore: 73.54, ScoreCategory: scoring.Average, ModelVersion: "1.0.0"}
	assert.Empty(t, Check(ok))

	// 89.996 is Good before rounding and 90.00 after it.
	assert.Empty(t, Check(Prediction{PredictedScore: 90, ScoreCategory: scoring.Good, ModelVersion: "1.0.0"}))

	cases := map[string]Prediction{
		"out of range":  {PredictedScore: 100.5, ScoreCategory: scoring.Excellent, ModelVersion: "1.0.0"},
		"wrong bucket":  {PredictedScore: 50, ScoreCategory: scoring.Excellent, ModelVersion: "1.0.0"},
		"unknown label": {PredictedScore: 50, ScoreCategory: "Great", ModelVersion: "1.0.0"},
		"no version":    {PredictedScore: 50, ScoreCategory: scoring.NeedsImprovement},
		"unrounded":     {PredictedScore: 50.123, ScoreCategory: scoring.NeedsImprovement, ModelVersion: "1.0.0"},
	}
	for name, p := range cases {
		assert.NotEmpty(t, Check(p), name)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig("http://localhost:8000")
	require.NoError(t, cfg.Validate())

	bad := []func(*Config){
		func(c *Config) { c.BaseURL = "localhost" },
		func(c *Config) { c.Requests = 0 },
		func(c *Config) { c.Workers = -1 },
		func(c *Config) { c.Timeout = 0 },
		func(c *Config) { c.RepeatEvery = -1 },
		func(c *Config) { c.BoundaryRate = 1.5 },
		func(c *Config) { c.Format = "xml" },
	}
	for i, mutate := range bad {
		c := *cfg
		mutate(&c)
		assert.ErrorIs(t, c.Validate(), ErrInvalidConfig, "case %d", i)
	}
}

func TestRunAgainstSampleModel(t *testing.T) {
	srv := newService(t)

	report, err := Run(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)

	assert.True(t, report.OK(), "violations: %+v failures: %+v", report.Violations, report.Failures)
	assert.Equal(t, 200, report.Requests)
	assert.Equal(t, 200, report.Succeeded)
	assert.Equal(t, 40, report.Repeats)
	assert.Equal(t, "1.0.0", report.ModelVersion)

	total := 0
	for label, n := range report.Categories {
		assert.Contains(t, scoring.Categories(), label)
		total += n
	}
	assert.Equal(t, 200, total)
	assert.LessOrEqual(t, report.Latency.P50, report.Latency.Max)
}

func TestRunRejectsUnloadedService(t *testing.T) {
	r := chi.NewRouter()
	api.NewServer(service.New()).Register(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	_, err := Run(context.Background(), testConfig(srv.URL))
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestRunCountsFailures(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy","model_loaded":true,"model_version":"9"}`))
	})
	r.Get("/features/schema", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	r.Post("/predict", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"prediction_failed","message":"prediction failed"}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Requests = 10
	report, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.False(t, report.OK())
	assert.Equal(t, 10, report.Failed)
	assert.Equal(t, map[string]int{"500": 10}, report.Failures)
	assert.Zero(t, report.Repeats)
}

func TestReportFormats(t *testing.T) {
	r := &Report{Requests: 2, Succeeded: 2, Categories: map[string]int{scoring.Good: 2}}

	var js bytes.Buffer
	require.NoError(t, r.Write(&js, FormatJSON))
	var fromJSON Report
	require.NoError(t, json.Unmarshal(js.Bytes(), &fromJSON))
	assert.Equal(t, 2, fromJSON.Categories[scoring.Good])

	var ym bytes.Buffer
	require.NoError(t, r.Write(&ym, FormatYAML))
	assert.Contains(t, ym.String(), "requests: 2")
	var fromYAML Report
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &fromYAML))
	assert.Equal(t, 2, fromYAML.Succeeded)

	assert.ErrorIs(t, r.Write(io.Discard, "csv"), ErrInvalidConfig)
}

func TestCommandWritesReport(t *testing.T) {
	srv := newService(t)
	out := filepath.Join(t.TempDir(), "report.yaml")

	var stdout bytes.Buffer
	err := NewCommand(&stdout).Run(context.Background(), []string{
		"loadtest", "--url", srv.URL, "--requests", "20", "--workers", "4",
		"--seed", "11", "--format", "yaml", "--output", out,
	})
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var report Report
	require.NoError(t, yaml.Unmarshal(data, &report))
	assert.Equal(t, uint64(11), report.Seed)
	assert.Equal(t, 20, report.Succeeded)
}

func TestCommandRejectsBadFlags(t *testing.T) {
	err := NewCommand(io.Discard).Run(context.Background(), []string{"loadtest", "--url", "not-a-url"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
