package github

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

	"hookwatch/internal/platform/config"
)

// ErrNoToken is returned before any network call when no GitHub credential
// is configured.
var ErrNoToken = errors.New("GitHub token not configured")

type Hook struct {
	ID     int64    `json:"id"`
	Active bool     `json:"active"`
	Events []string `json:"events"`
}

type createHookRequest struct {
	Name   string     `json:"name"`
	Active bool       `json:"active"`
	Events []string   `json:"events"`
	Config hookConfig `json:"config"`
}

type hookConfig struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	InsecureSSL string `json:"insecure_ssl"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(cfg config.GitHubConfig) *Client {
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      cfg.Token,
	}
}

// CreateHook registers a JSON webhook subscription on the repository for the
// given raw event categories, delivering to callbackURL.
func (c *Client) CreateHook(ctx context.Context, owner, repo, callbackURL string, events []string) (*Hook, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}

	body, err := json.Marshal(createHookRequest{
		Name:   "web",
		Active: true,
		Events: events,
		Config: hookConfig{
			URL:         callbackURL,
			ContentType: "json",
			InsecureSSL: "0",
		},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/repos/%s/%s/hooks", c.baseURL, owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Surface GitHub's own message where it supplies one.
		var apiErr struct {
			Message string `json:"message"`
		}
		json.Unmarshal(respBody, &apiErr)
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to create GitHub webhook: %s", apiErr.Message)
	}

	var hook Hook
	if err := json.Unmarshal(respBody, &hook); err != nil {
		return nil, err
	}
	return &hook, nil
}
