package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeRetriever struct {
	passages []Passage
	err      error

	gotQuery string
	gotTopK  int
}

func (f *fakeRetriever) Search(_ context.Context, query string, topK int) ([]Passage, error) {
	f.gotQuery = query
	f.gotTopK = topK
	return f.passages, f.err
}

type fakeSearcher struct {
	snippets []Snippet
	err      error
}

func (f *fakeSearcher) Search(_ context.Context, _ string) ([]Snippet, error) {
	return f.snippets, f.err
}

func TestKnowledgeBaseToolFormatsPassages(t *testing.T) {
	r := &fakeRetriever{passages: []Passage{
		{Text: "Go 1.25 adds green tea GC.", Score: 0.91, SourceID: "release-notes.md"},
		{Text: "Generics landed in 1.18.", Score: 0.77},
	}}
	tool := NewKnowledgeBaseTool(r, 4)

	out, err := tool.Invoke(context.Background(), `{"query":"go releases"}`)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if r.gotQuery != "go releases" || r.gotTopK != 4 {
		t.Errorf("retriever got query=%q topK=%d", r.gotQuery, r.gotTopK)
	}
	if !strings.Contains(out.Content, "Knowledge Base Results:") {
		t.Errorf("missing header: %q", out.Content)
	}
	if !strings.Contains(out.Content, "Document 1 (from release-notes.md, score 0.910)") {
		t.Errorf("missing ranked header: %q", out.Content)
	}
	if !strings.Contains(out.Content, "Document 2 (from unknown, score 0.770)") {
		t.Errorf("missing unknown-source fallback: %q", out.Content)
	}
	// Only passages with a real source id become citations.
	if len(out.Sources) != 1 || out.Sources[0] != "release-notes.md" {
		t.Errorf("sources = %v", out.Sources)
	}
}

func TestKnowledgeBaseToolHonorsTopKOverride(t *testing.T) {
	r := &fakeRetriever{}
	tool := NewKnowledgeBaseTool(r, 4)

	out, err := tool.Invoke(context.Background(), `{"query":"q","top_k":9}`)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if r.gotTopK != 9 {
		t.Errorf("topK = %d, want 9", r.gotTopK)
	}
	if out.Content != "No relevant documents found in knowledge base." {
		t.Errorf("empty-result content = %q", out.Content)
	}
}

func TestKnowledgeBaseToolRejectsEmptyQuery(t *testing.T) {
	tool := NewKnowledgeBaseTool(&fakeRetriever{}, 4)
	if _, err := tool.Invoke(context.Background(), `{"query":"   "}`); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestWebSearchToolFormatsSnippets(t *testing.T) {
	s := &fakeSearcher{snippets: []Snippet{
		{Title: "Go Blog", Content: "Release announcement.", URL: "https://go.dev/blog"},
		{Title: "HN thread", Content: "Discussion.", URL: "https://news.ycombinator.com/item?id=1"},
	}}
	tool := NewWebSearchTool(s)

	out, err := tool.Invoke(context.Background(), `{"query":"go release"}`)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !strings.Contains(out.Content, "Web Search Results:") {
		t.Errorf("missing header: %q", out.Content)
	}
	if !strings.Contains(out.Content, "Source: https://go.dev/blog") {
		t.Errorf("missing source line: %q", out.Content)
	}
	if !strings.Contains(out.Content, "\n---\n") {
		t.Errorf("missing separator: %q", out.Content)
	}
	if len(out.Sources) != 2 || out.Sources[0] != "https://go.dev/blog" {
		t.Errorf("sources = %v", out.Sources)
	}
}

func TestWebSearchToolErrorPropagates(t *testing.T) {
	s := &fakeSearcher{err: errors.New("rate limited")}
	tool := NewWebSearchTool(s)
	if _, err := tool.Invoke(context.Background(), `{"query":"q"}`); err == nil {
		t.Error("expected upstream error to propagate")
	}
}
