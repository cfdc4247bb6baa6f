package model

import "time"

// ToolStatus indicates whether a tool invocation produced a usable payload.
type ToolStatus string

const (
	ToolStatusOK    ToolStatus = "ok"
	ToolStatusError ToolStatus = "error"
)

// TerminalStatus is the terminal state of one orchestration run.
type TerminalStatus string

const (
	StatusCompleted       TerminalStatus = "completed"
	StatusBudgetExhausted TerminalStatus = "budget_exhausted"
	StatusFailed          TerminalStatus = "failed"
)

// QueryInput represents the input for processing user queries.
type QueryInput struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

// ToolCallRequest is a single tool invocation requested by the reasoning
// oracle. It is never mutated after creation.
type ToolCallRequest struct {
	CallID    string
	Name      string
	Arguments string // raw JSON payload, passed through verbatim
}

// ToolResult is the normalized outcome of one tool invocation.
type ToolResult struct {
	CallID  string
	Name    string
	Status  ToolStatus
	Payload string // success value or error description
	Sources []string
	Elapsed time.Duration
}

// LoopOutcome is the sole value the orchestration loop returns to its caller.
type LoopOutcome struct {
	SessionID      string
	Query          string
	Answer         string
	ToolsUsed      []string // distinct, first-occurrence order
	Sources        []string
	ReasoningSteps int
	Status         TerminalStatus
	Elapsed        time.Duration
	CostUSD        float64
}

// ToolUsage is one row of the per-tool usage breakdown.
type ToolUsage struct {
	Tool  string `json:"tool"`
	Count int64  `json:"count"`
}

// AggregateSnapshot summarizes all recorded outcomes.
type AggregateSnapshot struct {
	TotalQueries     int64       `json:"total_queries"`
	AvgToolsPerQuery float64     `json:"avg_tools_per_query"`
	ToolUsage        []ToolUsage `json:"tool_usage"` // ordered by count desc, then name
}
