package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/scorecast/internal/domain/features"
	"github.com/okian/scorecast/internal/domain/types"
)

const maxResponseBytes = 1 << 20

// ErrUnexpectedStatus is wrapped when the service answers with a non-2xx code.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Prediction is the body of a successful POST /predict.
type Prediction struct {
	PredictedScore float64 `json:"predicted_score" yaml:"predicted_score"`
	ScoreCategory  string  `json:"score_category" yaml:"score_category"`
	ModelVersion   string  `json:"model_version" yaml:"model_version"`
}

type predictRequest struct {
	Features features.RawFeatures `json:"features"`
}

// Client talks to a running prediction service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Health fetches GET /health.
func (c *Client) Health(ctx context.Context) (types.Health, error) {
	var h types.Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &h)
	return h, err
}

// Schema fetches GET /features/schema.
func (c *Client) Schema(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, "/features/schema", nil, &raw)
	return raw, err
}

// Predict posts one student and returns the decoded answer.
func (c *Client) Predict(ctx context.Context, raw features.RawFeatures) (Prediction, error) {
	var p Prediction
	err := c.do(ctx, http.MethodPost, "/predict", predictRequest{Features: raw}, &p)
	return p, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// StatusError carries a non-2xx answer.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %d: %s", ErrUnexpectedStatus, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }
