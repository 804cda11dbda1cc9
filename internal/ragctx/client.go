// Package ragctx fetches grounding statistics from the retrieval service
// and turns them into short prompt context.
package ragctx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is where the retrieval service listens by default.
const DefaultBaseURL = "http://127.0.0.1:8080"

const (
	defaultTimeout  = 10 * time.Second
	defaultNResults = 3
)

// Query is a search request. Gender narrows results to one respondent
// attribute; Year 0 means any year.
type Query struct {
	Query  string `json:"query"`
	Gender string `json:"gender"`
	Year   int    `json:"year,omitempty"`
}

// Result is one statistics snippet.
type Result struct {
	Text       string  `json:"text"`
	StatName   string  `json:"stat_name,omitempty"`
	Source     string  `json:"source,omitempty"`
	Year       int     `json:"year,omitempty"`
	Gender     string  `json:"gender,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
}

type searchResponse struct {
	Results []Result `json:"results"`
	Count   int      `json:"count"`
}

// Client talks to the retrieval service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	nResults   int
}

// NewClient creates a client for baseURL. A zero timeout uses 10s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		nResults:   defaultNResults,
	}
}

// Search posts q to /kosis/search and returns the matching snippets. An
// empty query returns no results without a request.
func (c *Client) Search(ctx context.Context, q Query) ([]Result, error) {
	if strings.TrimSpace(q.Query) == "" {
		return nil, nil
	}

	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	endpoint := c.baseURL + "/kosis/search?" + url.Values{"n_results": {strconv.Itoa(c.nResults)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search returned status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("search returned an empty body")
	}

	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return parsed.Results, nil
}

// Healthy reports whether the service answers GET /stats successfully.
func (c *Client) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
