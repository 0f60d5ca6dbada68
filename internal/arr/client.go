// Package arr is a small client for the lookup endpoints of Radarr and
// Sonarr. Results are converted to catalog entries so they can corroborate
// local catalog matches.
package arr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotConfigured is returned when a client is built without a URL or API
// key.
var ErrNotConfigured = errors.New("arr client not configured")

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// SystemStatus is the subset of /api/v3/system/status used for health
// checks.
type SystemStatus struct {
	AppName string `json:"appName"`
	Version string `json:"version"`
}

type client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newClient(cfg Config) (*client, error) {
	if strings.TrimSpace(cfg.URL) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *client) get(ctx context.Context, endpoint string, query url.Values, result interface{}) error {
	fullURL, err := url.JoinPath(c.baseURL, endpoint)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *client) ping(ctx context.Context) (*SystemStatus, error) {
	var status SystemStatus
	if err := c.get(ctx, "/api/v3/system/status", nil, &status); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}
	return &status, nil
}
