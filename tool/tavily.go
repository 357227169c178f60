package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
)

// TavilySearch is a tool that uses the Tavily Search API to search the web.
type TavilySearch struct {
	APIKey      string
	BaseURL     string
	MaxResults  int
	SearchDepth string
	client      *http.Client
}

type TavilyOption func(*TavilySearch)

// WithTavilyBaseURL sets the endpoint of the Tavily Search API.
func WithTavilyBaseURL(baseURL string) TavilyOption {
	return func(t *TavilySearch) {
		t.BaseURL = baseURL
	}
}

// WithTavilyMaxResults sets the number of results to return (1-20).
func WithTavilyMaxResults(n int) TavilyOption {
	return func(t *TavilySearch) {
		t.MaxResults = clamp(n, 1, 20)
	}
}

// WithTavilySearchDepth sets the search depth, DepthBasic or DepthAdvanced.
func WithTavilySearchDepth(depth string) TavilyOption {
	return func(t *TavilySearch) {
		t.SearchDepth = depth
	}
}

// WithTavilyHTTPClient sets the HTTP client used for requests.
func WithTavilyHTTPClient(c *http.Client) TavilyOption {
	return func(t *TavilySearch) {
		t.client = c
	}
}

// NewTavilySearch creates a new TavilySearch tool.
// If apiKey is empty, it tries to read from TAVILY_API_KEY environment variable.
func NewTavilySearch(apiKey string, opts ...TavilyOption) (*TavilySearch, error) {
	if apiKey == "" {
		apiKey = os.Getenv("TAVILY_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("TAVILY_API_KEY not set")
	}

	t := &TavilySearch{
		APIKey:      apiKey,
		BaseURL:     "https://api.tavily.com/search",
		MaxResults:  3,
		SearchDepth: DepthBasic,
		client:      http.DefaultClient,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Name returns the name of the tool.
func (t *TavilySearch) Name() string {
	return "tavily_search"
}

// Description returns the description of the tool.
func (t *TavilySearch) Description() string {
	return "A search engine optimized for comprehensive, accurate, and trusted results. " +
		"Useful for finding current news and events. " +
		"Input should be a search query."
}

type tavilyRequest struct {
	Query       string `json:"query"`
	APIKey      string `json:"api_key"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
	Topic       string `json:"topic,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Call executes the search.
func (t *TavilySearch) Call(ctx context.Context, input string) (string, error) {
	body, err := json.Marshal(tavilyRequest{
		Query:       ParseQuery(input),
		APIKey:      t.APIKey,
		SearchDepth: t.SearchDepth,
		MaxResults:  t.MaxResults,
		Topic:       "news",
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tavily api returned status: %d", resp.StatusCode)
	}

	var result tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	hits := make([]SearchResult, 0, len(result.Results))
	for _, r := range result.Results {
		hits = append(hits, SearchResult{Title: r.Title, URL: r.URL, Content: r.Content})
	}
	return FormatResults(hits), nil
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
