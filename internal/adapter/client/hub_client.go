package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxErrorBody bounds how much of an error response is echoed back
const maxErrorBody = 512

// HubClient downloads model artifacts from a HuggingFace compatible hub
type HubClient struct {
	baseURL    string
	token      string
	revision   string
	httpClient *http.Client
}

// NewHubClient creates a new hub client. An empty revision means "main".
func NewHubClient(baseURL, token, revision string, timeout time.Duration) *HubClient {
	if revision == "" {
		revision = "main"
	}
	return &HubClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		revision: revision,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FileURL returns the resolve URL of a file in a model repository
func (c *HubClient) FileURL(modelID, file string) string {
	return fmt.Sprintf("%s/%s/resolve/%s/%s", c.baseURL, modelID, url.PathEscape(c.revision), file)
}

// Fetch downloads one file of a model repository to dst. The file is written
// to a temporary sibling first and renamed, so dst is either complete or absent.
func (c *HubClient) Fetch(ctx context.Context, modelID, file, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.FileURL(modelID, file), http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil || len(respBody) == 0 {
			return fmt.Errorf("hub returned status %d for %s", resp.StatusCode, file)
		}
		return fmt.Errorf("hub returned status %d for %s: %s", resp.StatusCode, file, strings.TrimSpace(string(respBody)))
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".part-")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to download %s: %w", file, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("failed to store %s: %w", file, err)
	}
	return nil
}
