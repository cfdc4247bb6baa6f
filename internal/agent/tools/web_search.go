package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// ===================================
// Web Search Tool
// ===================================

// Snippet is one ranked web search hit.
type Snippet struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// WebSearcher is the collaborator interface to the live web-search service.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]Snippet, error)
}

type SearchWebInput struct {
	Query string `json:"query"`
}

func NewWebSearchTool(searcher WebSearcher) *Descriptor {
	return &Descriptor{
		Info: &schema.ToolInfo{
			Name: ToolSearchWeb,
			Desc: "Search the web for current information, news, or facts not in the knowledge base. Use this for recent events, real-time data, or when the knowledge base has no results.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     schema.String,
					Desc:     "Search query to run against the web",
					Required: true,
				},
			}),
		},
		SideEffect: SideEffectNetwork,
		Invoke: func(ctx context.Context, arguments string) (*Output, error) {
			var in SearchWebInput
			if err := json.Unmarshal([]byte(arguments), &in); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
			if strings.TrimSpace(in.Query) == "" {
				return nil, fmt.Errorf("query is required")
			}

			results, err := searcher.Search(ctx, in.Query)
			if err != nil {
				return nil, fmt.Errorf("web search: %w", err)
			}

			if len(results) == 0 {
				return &Output{Content: "No web results found."}, nil
			}

			formatted := make([]string, 0, len(results))
			sources := make([]string, 0, len(results))
			for _, r := range results {
				formatted = append(formatted, fmt.Sprintf("Source: %s\nTitle: %s\nContent: %s\n", r.URL, r.Title, r.Content))
				if r.URL != "" {
					sources = append(sources, r.URL)
				}
			}

			return &Output{
				Content: "Web Search Results:\n" + strings.Join(formatted, "\n---\n"),
				Sources: sources,
			}, nil
		},
	}
}
