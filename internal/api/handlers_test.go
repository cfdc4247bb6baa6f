package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/intelligent-rag/server/internal/agent/model"
	"github.com/intelligent-rag/server/internal/agent/oracle"
	errx "github.com/intelligent-rag/server/internal/core/error"
)

type fakeService struct {
	outcome *model.LoopOutcome
	err     error
	snap    *model.AggregateSnapshot
	snapErr error
}

func (f *fakeService) AnswerQuery(_ context.Context, _ model.QueryInput) (*model.LoopOutcome, error) {
	return f.outcome, f.err
}

func (f *fakeService) Analytics(_ context.Context) (*model.AggregateSnapshot, error) {
	return f.snap, f.snapErr
}

func postQuery(t *testing.T, svc AgentService, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := &handlers{svc: svc}
	req := httptest.NewRequest(http.MethodPost, "/v1/agent/query", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.queryAgent(rec, req)
	return rec
}

func TestQueryAgentSuccess(t *testing.T) {
	svc := &fakeService{outcome: &model.LoopOutcome{
		Query:          "how many users?",
		Answer:         "42",
		ToolsUsed:      []string{"sql_query_generator"},
		Sources:        []string{},
		ReasoningSteps: 2,
		Status:         model.StatusCompleted,
	}}

	rec := postQuery(t, svc, `{"query":"how many users?","session_id":"s1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body)
	}
	var resp queryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Answer != "42" || resp.Status != "completed" || resp.ReasoningSteps != 2 {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.ToolUsed) != 1 || resp.ToolUsed[0] != "sql_query_generator" {
		t.Errorf("tool_used = %v", resp.ToolUsed)
	}
}

func TestQueryAgentValidation(t *testing.T) {
	svc := &fakeService{}
	if rec := postQuery(t, svc, `not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", rec.Code)
	}
	if rec := postQuery(t, svc, `{"query":"  "}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty query: status = %d, want 400", rec.Code)
	}
}

func TestQueryAgentBudgetExhaustedIsOK(t *testing.T) {
	svc := &fakeService{outcome: &model.LoopOutcome{
		Query:  "q",
		Answer: "partial answer",
		Status: model.StatusBudgetExhausted,
	}}
	rec := postQuery(t, svc, `{"query":"q"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for budget_exhausted", rec.Code)
	}
}

func TestQueryAgentFailedOutcome(t *testing.T) {
	svc := &fakeService{
		outcome: &model.LoopOutcome{Query: "q", Answer: "The reasoning service is currently unavailable. Please try again.", Status: model.StatusFailed},
		err:     oracle.ErrOracleUnavailable,
	}
	rec := postQuery(t, svc, `{"query":"q"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var resp queryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "failed" || resp.Answer == "" {
		t.Errorf("response = %+v", resp)
	}
}

func TestQueryAgentNoOutcome(t *testing.T) {
	svc := &fakeService{err: oracle.ErrOracleUnavailable}
	rec := postQuery(t, svc, `{"query":"q"}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}

	svc = &fakeService{err: errx.New(nil, http.StatusNotFound, errx.RedisNotFoundMessage)}
	rec = postQuery(t, svc, `{"query":"q"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 from typed error", rec.Code)
	}
}

func TestGetAnalytics(t *testing.T) {
	svc := &fakeService{snap: &model.AggregateSnapshot{
		TotalQueries:     7,
		AvgToolsPerQuery: 1.5,
		ToolUsage:        []model.ToolUsage{{Tool: "search_web", Count: 9}},
	}}
	h := &handlers{svc: svc}
	req := httptest.NewRequest(http.MethodGet, "/v1/agent/analytics", nil)
	rec := httptest.NewRecorder()
	h.getAnalytics(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var snap model.AggregateSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.TotalQueries != 7 || len(snap.ToolUsage) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}
