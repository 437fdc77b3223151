package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// PredictResult is the runtime's answer for one text
type PredictResult struct {
	Labels []string  `json:"labels"`
	Scores []float32 `json:"scores"`
}

// HealthResponse represents the runtime health check response
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	ModelPath   string `json:"model_path,omitempty"`
}

// RuntimeClient is an HTTP client for the model runtime process that holds
// the loaded fastText model
type RuntimeClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRuntimeClient creates a new model runtime client
func NewRuntimeClient(baseURL string, timeout time.Duration) *RuntimeClient {
	return &RuntimeClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Predict classifies texts, returning one result per text in order.
// Labels keep the model's label prefix.
func (c *RuntimeClient) Predict(ctx context.Context, texts []string, k int, threshold float32) ([]PredictResult, error) {
	query := url.Values{}
	query.Set("k", strconv.Itoa(k))
	query.Set("threshold", strconv.FormatFloat(float64(threshold), 'f', -1, 32))

	var results []PredictResult
	if err := c.post(ctx, "/predict?"+query.Encode(), texts, &results); err != nil {
		return nil, err
	}
	if len(results) != len(texts) {
		return nil, fmt.Errorf("model runtime returned %d predictions for %d texts", len(results), len(texts))
	}
	return results, nil
}

// SentenceVector embeds texts, returning one vector per text in order
func (c *RuntimeClient) SentenceVector(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	if err := c.post(ctx, "/sentence-vector", texts, &vectors); err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("model runtime returned %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}

// Health checks the model runtime health
func (c *RuntimeClient) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model runtime returned status %d", resp.StatusCode)
	}

	var result HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// Ready checks if the model runtime is ready
func (c *RuntimeClient) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ready", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model runtime not ready: status %d", resp.StatusCode)
	}

	return nil
}

func (c *RuntimeClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("model runtime returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("model runtime returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
