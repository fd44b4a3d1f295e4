package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// defaultTweetURL is the X API v2 tweet creation endpoint.
const defaultTweetURL = "https://api.twitter.com/2/tweets"

// Twitter posts messages through the X API v2.
type Twitter struct {
	httpClient *http.Client
	url        string
	token      string
}

// TwitterConfig configures the Twitter poster.
type TwitterConfig struct {
	// BearerToken is the OAuth 2.0 user-context token. Required.
	BearerToken string

	// BaseURL overrides the tweet endpoint, mainly for tests.
	BaseURL string

	// Timeout bounds one post attempt. Defaults to 15s.
	Timeout time.Duration
}

// NewTwitter creates a Twitter poster.
func NewTwitter(cfg TwitterConfig) (*Twitter, error) {
	if cfg.BearerToken == "" {
		return nil, fmt.Errorf("social: twitter config missing bearer token")
	}
	url := cfg.BaseURL
	if url == "" {
		url = defaultTweetURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Twitter{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		token:      cfg.BearerToken,
	}, nil
}

// Post implements Poster. It returns the created tweet ID.
func (t *Twitter) Post(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return "", fmt.Errorf("social: marshal tweet: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("social: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("social: post tweet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("social: tweet rejected: %s: %s", resp.Status, detail)
	}

	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("social: decode response: %w", err)
	}
	return out.Data.ID, nil
}
