package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/intelligent-rag/server/internal/agent/model"
	"github.com/intelligent-rag/server/internal/agent/oracle"
	errx "github.com/intelligent-rag/server/internal/core/error"
	logx "github.com/intelligent-rag/server/pkg/logger"
)

// AgentService is the handlers' view of the agent core.
type AgentService interface {
	AnswerQuery(ctx context.Context, in model.QueryInput) (*model.LoopOutcome, error)
	Analytics(ctx context.Context) (*model.AggregateSnapshot, error)
}

type handlers struct {
	svc AgentService
}

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type queryResponse struct {
	Query          string   `json:"query"`
	Answer         string   `json:"answer"`
	ToolUsed       []string `json:"tool_used"`
	Sources        []string `json:"sources"`
	ReasoningSteps int      `json:"reasoning_steps"`
	Status         string   `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) queryAgent(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	outcome, err := h.svc.AnswerQuery(r.Context(), model.QueryInput{
		SessionID: req.SessionID,
		Query:     req.Query,
	})
	if outcome == nil {
		status, msg := statusFor(err)
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}

	// Budget exhaustion is a defined terminal outcome, not an error: the
	// caller still gets the best available answer. Only a failed run carries
	// a non-2xx status alongside the outcome shape.
	code := http.StatusOK
	if outcome.Status == model.StatusFailed {
		code = http.StatusBadGateway
	}
	writeJSON(w, code, queryResponse{
		Query:          outcome.Query,
		Answer:         outcome.Answer,
		ToolUsed:       outcome.ToolsUsed,
		Sources:        outcome.Sources,
		ReasoningSteps: outcome.ReasoningSteps,
		Status:         string(outcome.Status),
	})
}

func (h *handlers) getAnalytics(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Analytics(r.Context())
	if err != nil {
		status, msg := statusFor(err)
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusFor(err error) (int, string) {
	var appErr *errx.Error
	if errors.As(err, &appErr) {
		return appErr.Status, appErr.Message
	}
	if errors.Is(err, oracle.ErrOracleUnavailable) {
		return http.StatusBadGateway, errx.OracleErrorMessage
	}
	return http.StatusInternalServerError, errx.SystemErrorMessage
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logx.Error().Err(err).Msg("failed to encode response")
	}
}
