package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTavilySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req tavilyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.APIKey != "tvly-test" || req.Query != "latest go release" {
			t.Errorf("request = %+v", req)
		}
		if req.MaxResults != 3 || req.SearchDepth != "advanced" {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(tavilyResponse{Results: []tavilyResult{
			{Title: "Go Blog", URL: "https://go.dev/blog", Content: "Go 1.25 released."},
		}})
	}))
	defer srv.Close()

	c := (&Config{APIKey: "tvly-test", Endpoint: srv.URL, MaxResults: 3, Timeout: 5}).New()
	snippets, err := c.Search(context.Background(), "latest go release")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(snippets) != 1 || snippets[0].URL != "https://go.dev/blog" {
		t.Errorf("snippets = %+v", snippets)
	}
}

func TestTavilySearchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := (&Config{APIKey: "k", Endpoint: srv.URL, MaxResults: 3, Timeout: 5}).New()
	if _, err := c.Search(context.Background(), "q"); !errors.Is(err, ErrSearchUnavailable) {
		t.Fatalf("expected ErrSearchUnavailable, got %v", err)
	}
}
