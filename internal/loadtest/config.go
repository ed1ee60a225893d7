// Package loadtest drives a running prediction service with generated
// students and checks every answer against the published score scale.
package loadtest

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Report output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid load test config")

// Config holds configuration for a load test run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Requests int           // Number of predictions to submit
	Workers  int           // Number of concurrent requests in flight
	Timeout  time.Duration // Per-request timeout
	Seed     uint64        // Generator seed; equal seeds give equal students
	// RepeatEvery resubmits every n-th student to check determinism; 0 disables.
	RepeatEvery int
	// BoundaryRate is the share of students built from domain edges.
	BoundaryRate float64
	Format       string // Report format, json or yaml
	Verbose      bool
}

// Validate checks the run parameters.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: url %q must be absolute", ErrInvalidConfig, c.BaseURL)
	}
	if c.Requests <= 0 {
		return fmt.Errorf("%w: requests must be positive", ErrInvalidConfig)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.RepeatEvery < 0 {
		return fmt.Errorf("%w: repeat-every must not be negative", ErrInvalidConfig)
	}
	if c.BoundaryRate < 0 || c.BoundaryRate > 1 {
		return fmt.Errorf("%w: boundary-rate must be within [0,1]", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Format) {
	case FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: format must be %q or %q", ErrInvalidConfig, FormatJSON, FormatYAML)
	}
	return nil
}
