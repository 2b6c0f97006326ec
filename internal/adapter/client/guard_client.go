package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ressKim-io/prompt-guard/internal/domain/entity"
)

// ClassifyRequest represents a request to classify one text
type ClassifyRequest struct {
	Text string `json:"text"`
}

// ClassifyBatchRequest represents a request to classify several texts
type ClassifyBatchRequest struct {
	Texts []string `json:"texts"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK    bool    `json:"ok"`
	Model string  `json:"model"`
	Ready bool    `json:"ready"`
	Error *string `json:"error"`
}

// errorEnvelope is the body of a non-2xx response
type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GuardClient is an HTTP client for the prompt guard service
type GuardClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGuardClient creates a new prompt guard client
func NewGuardClient(baseURL string, timeout time.Duration) *GuardClient {
	return &GuardClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Classify sends a single text for classification
func (c *GuardClient) Classify(ctx context.Context, text string) (*entity.ClassificationResult, error) {
	var result entity.ClassificationResult
	if err := c.post(ctx, "/classify", ClassifyRequest{Text: text}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ClassifyBatch sends multiple texts for classification
func (c *GuardClient) ClassifyBatch(ctx context.Context, texts []string) ([]*entity.ClassificationResult, error) {
	if texts == nil {
		texts = []string{}
	}
	var results []*entity.ClassificationResult
	if err := c.post(ctx, "/classify/batch", ClassifyBatchRequest{Texts: texts}, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Health checks the service health
func (c *GuardClient) Health(ctx context.Context) (*HealthResponse, error) {
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
		return nil, fmt.Errorf("prompt guard returned status %d", resp.StatusCode)
	}

	var result HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// Ready checks if the model is loaded
func (c *GuardClient) Ready(ctx context.Context) error {
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
		return fmt.Errorf("prompt guard not ready: status %d", resp.StatusCode)
	}

	return nil
}

func (c *GuardClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
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
			return fmt.Errorf("prompt guard returned status %d", resp.StatusCode)
		}
		var env errorEnvelope
		if json.Unmarshal(respBody, &env) == nil && env.Error != nil {
			return fmt.Errorf("prompt guard returned status %d: %s: %s", resp.StatusCode, env.Error.Code, env.Error.Message)
		}
		return fmt.Errorf("prompt guard returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
