package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// ===================================
// Knowledge Base Search Tool
// ===================================

// Passage is one ranked retrieval hit from the knowledge-base index.
type Passage struct {
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	SourceID string  `json:"source_id"`
}

// Retriever is the collaborator interface to the vector index. Index storage
// and the ingestion pipeline that feeds it live behind this boundary.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]Passage, error)
}

type SearchKnowledgeBaseInput struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

func NewKnowledgeBaseTool(retriever Retriever, defaultTopK int) *Descriptor {
	return &Descriptor{
		Info: &schema.ToolInfo{
			Name: ToolSearchKnowledgeBase,
			Desc: "Search the internal knowledge base for relevant documents. Use this when the user asks about documents you have or internal information.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     schema.String,
					Desc:     "Search query to run against the knowledge base",
					Required: true,
				},
				"top_k": {
					Type: schema.Integer,
					Desc: "Number of passages to retrieve (optional)",
				},
			}),
		},
		SideEffect: SideEffectReadOnly,
		Invoke: func(ctx context.Context, arguments string) (*Output, error) {
			var in SearchKnowledgeBaseInput
			if err := json.Unmarshal([]byte(arguments), &in); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
			if strings.TrimSpace(in.Query) == "" {
				return nil, fmt.Errorf("query is required")
			}
			topK := in.TopK
			if topK <= 0 {
				topK = defaultTopK
			}

			passages, err := retriever.Search(ctx, in.Query, topK)
			if err != nil {
				return nil, fmt.Errorf("knowledge base search: %w", err)
			}

			if len(passages) == 0 {
				return &Output{Content: "No relevant documents found in knowledge base."}, nil
			}

			var b strings.Builder
			b.WriteString("Knowledge Base Results:\n")
			sources := make([]string, 0, len(passages))
			for i, p := range passages {
				source := p.SourceID
				if source == "" {
					source = "unknown"
				}
				fmt.Fprintf(&b, "\nDocument %d (from %s, score %.3f):\n%s\n", i+1, source, p.Score, p.Text)
				if p.SourceID != "" {
					sources = append(sources, p.SourceID)
				}
			}

			return &Output{Content: b.String(), Sources: sources}, nil
		},
	}
}
