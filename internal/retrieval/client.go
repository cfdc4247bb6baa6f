package retrieval

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

// ErrRetrievalUnavailable indicates the index backend is unreachable.
var ErrRetrievalUnavailable = errors.New("retrieval service unavailable")

type Config struct {
	BaseURL string `split_words:"true"`
	Timeout int    `split_words:"true" default:"10"`
}

// Client talks to the internal retrieval service that fronts the vector
// index. Index storage and document ingestion live on the other side of this
// boundary.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func (c *Config) New() *Client {
	return &Client{
		baseURL:    c.BaseURL,
		httpClient: &http.Client{Timeout: time.Duration(c.Timeout) * time.Second},
	}
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Results []tools.Passage `json:"results"`
}

func (c *Client) Search(ctx context.Context, query string, topK int) ([]tools.Passage, error) {
	body, err := json.Marshal(searchRequest{Query: query, TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrRetrievalUnavailable, resp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return out.Results, nil
}

var _ tools.Retriever = (*Client)(nil)
