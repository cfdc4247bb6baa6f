package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/intelligent-rag/server/internal/agent/tools"
)

// ErrSearchUnavailable indicates the web-search backend is unreachable.
var ErrSearchUnavailable = errors.New("web search unavailable")

const defaultEndpoint = "https://api.tavily.com/search"

type Config struct {
	APIKey     string `envconfig:"TAVILY_API_KEY"`
	Endpoint   string `envconfig:"TAVILY_ENDPOINT"`
	MaxResults int    `envconfig:"TAVILY_MAX_RESULTS" default:"3"`
	Timeout    int    `envconfig:"TAVILY_TIMEOUT" default:"15"`
}

// TavilyClient is the live web-search collaborator.
type TavilyClient struct {
	apiKey     string
	endpoint   string
	maxResults int
	httpClient *http.Client
}

func (c *Config) New() *TavilyClient {
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &TavilyClient{
		apiKey:     c.APIKey,
		endpoint:   endpoint,
		maxResults: c.MaxResults,
		httpClient: &http.Client{Timeout: time.Duration(c.Timeout) * time.Second},
	}
}

type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type tavilyResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

func (c *TavilyClient) Search(ctx context.Context, query string) ([]tools.Snippet, error) {
	body, err := json.Marshal(tavilyRequest{
		APIKey:      c.apiKey,
		Query:       query,
		MaxResults:  c.maxResults,
		SearchDepth: "advanced",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSearchUnavailable, resp.StatusCode)
	}

	var out tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	snippets := make([]tools.Snippet, 0, len(out.Results))
	for _, r := range out.Results {
		snippets = append(snippets, tools.Snippet{Title: r.Title, Content: r.Content, URL: r.URL})
	}
	return snippets, nil
}

var _ tools.WebSearcher = (*TavilyClient)(nil)
