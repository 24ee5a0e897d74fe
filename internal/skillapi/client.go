// Package skillapi speaks the remote text-classification protocol:
// POST /analyze {"text": ...} returns {"skills": [...]} and GET /health
// reports liveness. It provides both the HTTP client and a server that
// answers the same protocol from the local keyword classifier.
package skillapi

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

const healthTimeout = 5 * time.Second

// maxResponseSize caps how much of a reply is read.
const maxResponseSize = 1 << 20

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// AnalyzeResponse is the reply of POST /analyze. Skills are display labels.
type AnalyzeResponse struct {
	Skills []string `json:"skills"`
	Error  string   `json:"error,omitempty"`
}

// Client calls a remote classification service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client targeting baseURL. Deadlines come from the caller's context.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// BaseURL returns the service root the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// Analyze sends text for classification and returns the skill labels.
func (c *Client) Analyze(ctx context.Context, text string) ([]string, error) {
	body, err := json.Marshal(AnalyzeRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyze request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("analyze: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var ar AnalyzeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&ar); err != nil {
		return nil, fmt.Errorf("decoding analyze response: %w", err)
	}
	if ar.Skills == nil {
		return nil, fmt.Errorf("analyze response has no skills field")
	}
	return ar.Skills, nil
}

// Healthy reports whether GET /health answers 200 within a short timeout.
func (c *Client) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
