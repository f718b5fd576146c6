package predictform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// PredictPath is the prediction endpoint relative to the site root.
	PredictPath = "/api/predict/"
	// CSRFHeader carries the anti-forgery token on the prediction request.
	CSRFHeader = "X-CSRFToken"

	maxResponseBytes = 1 << 20
)

// Predictor sends one prediction request.
type Predictor interface {
	Predict(ctx context.Context, csrfToken string, rec Record) (Result, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, csrfToken string, rec Record) (Result, error)

func (f PredictorFunc) Predict(ctx context.Context, csrfToken string, rec Record) (Result, error) {
	return f(ctx, csrfToken, rec)
}

// HTTPClient talks to the prediction site over HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient constructs an HTTPClient for baseURL. A nil httpClient gets a
// client with a 30s timeout; pass one with a cookie jar when the site enforces
// CSRF cookies.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Predict POSTs rec as JSON with the token header. The body is decoded
// whatever the status code; an undecodable body is an error.
func (c *HTTPClient) Predict(ctx context.Context, csrfToken string, rec Record) (Result, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PredictPath, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(CSRFHeader, csrfToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("predict request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, fmt.Errorf("read predict response: %w", err)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{}, fmt.Errorf("predict response parse (status %d): %w", resp.StatusCode, err)
	}
	return result, nil
}

// LoadForm fetches the page at path and parses the form with the given id.
func (c *HTTPClient) LoadForm(ctx context.Context, path, formID string) (*Form, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load form: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("load form: unexpected status %d", resp.StatusCode)
	}
	return ParseForm(io.LimitReader(resp.Body, maxResponseBytes), formID)
}
