package loadtest

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// maxViolations caps the violations kept in a report.
const maxViolations = 50

// Report summarizes one run.
type Report struct {
	BaseURL      string `json:"base_url" yaml:"base_url"`
	ModelVersion string `json:"model_version" yaml:"model_version"`
	Seed         uint64 `json:"seed" yaml:"seed"`

	Requests       int `json:"requests" yaml:"requests"`
	Succeeded      int `json:"succeeded" yaml:"succeeded"`
	Failed         int `json:"failed" yaml:"failed"`
	Repeats        int `json:"repeats" yaml:"repeats"`
	ViolationCount int `json:"violation_count" yaml:"violation_count"`

	Categories map[string]int `json:"categories" yaml:"categories"`
	Failures   map[string]int `json:"failures,omitempty" yaml:"failures,omitempty"`
	Violations []Violation    `json:"violations,omitempty" yaml:"violations,omitempty"`

	Latency    LatencySummary `json:"latency_ms" yaml:"latency_ms"`
	Duration   string         `json:"duration" yaml:"duration"`
	Throughput float64        `json:"requests_per_second" yaml:"requests_per_second"`
}

// Violation is an answer that broke the score scale or was not reproducible.
type Violation struct {
	Index  int    `json:"index" yaml:"index"`
	Reason string `json:"reason" yaml:"reason"`
}

// LatencySummary holds request latency percentiles in milliseconds.
type LatencySummary struct {
	P50 float64 `json:"p50" yaml:"p50"`
	P95 float64 `json:"p95" yaml:"p95"`
	P99 float64 `json:"p99" yaml:"p99"`
	Max float64 `json:"max" yaml:"max"`
}

// OK reports whether every request succeeded without violations.
func (r *Report) OK() bool {
	return r.Failed == 0 && r.ViolationCount == 0
}

func (r *Report) addViolation(index int, reason string) {
	r.ViolationCount++
	if len(r.Violations) < maxViolations {
		r.Violations = append(r.Violations, Violation{Index: index, Reason: reason})
	}
}

func (r *Report) finish(latencies []time.Duration, took time.Duration) {
	r.Duration = took.Round(time.Millisecond).String()
	if took > 0 {
		r.Throughput = float64(r.Requests+r.Repeats) / took.Seconds()
	}
	r.Latency = summarize(latencies)
	slices.SortFunc(r.Violations, func(a, b Violation) int { return a.Index - b.Index })
}

func summarize(latencies []time.Duration) LatencySummary {
	if len(latencies) == 0 {
		return LatencySummary{}
	}
	sorted := slices.Clone(latencies)
	slices.Sort(sorted)
	at := func(q float64) float64 {
		i := int(q * float64(len(sorted)-1))
		return float64(sorted[i].Microseconds()) / 1000
	}
	return LatencySummary{P50: at(0.50), P95: at(0.95), P99: at(0.99), Max: at(1)}
}

// Write encodes r as JSON or YAML.
func (r *Report) Write(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, format)
	}
}
