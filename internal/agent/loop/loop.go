package loop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/intelligent-rag/server/internal/agent/model"
	"github.com/intelligent-rag/server/internal/agent/oracle"
	"github.com/intelligent-rag/server/internal/agent/tools"
	logx "github.com/intelligent-rag/server/pkg/logger"
)

// Oracle is the loop's view of the reasoning oracle adapter.
type Oracle interface {
	Consult(ctx context.Context, history []*schema.Message) (*oracle.Decision, *schema.Message, error)
}

// state names for the loop's state machine.
type runState int

const (
	stateReasoning runState = iota
	stateActing
	stateDone
	stateFailed
)

const (
	DefaultMaxSteps     = 8
	DefaultQueryTimeout = 90 * time.Second
	DefaultRetryBackoff = 2 * time.Second
)

// Config bounds one query's orchestration run.
type Config struct {
	MaxSteps     int           // maximum oracle consultations per query
	QueryTimeout time.Duration // wall-clock budget for the whole query
	RetryBackoff time.Duration // delay before the single oracle retry
	SystemPrompt string
}

func (c Config) withDefaults() Config {
	if c.MaxSteps <= 0 {
		c.MaxSteps = DefaultMaxSteps
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = DefaultQueryTimeout
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	return c
}

// Loop is the orchestration state machine: it alternates oracle consultation
// and tool execution until a final answer, budget exhaustion, or an
// unrecoverable oracle failure.
type Loop struct {
	oracle   Oracle
	executor *tools.Executor
	cfg      Config
}

func New(o Oracle, executor *tools.Executor, cfg Config) *Loop {
	return &Loop{oracle: o, executor: executor, cfg: cfg.withDefaults()}
}

// Run executes one query to termination. The returned outcome is always
// well-formed; err is non-nil only for the typed failures that escape the
// loop (oracle down after retry, caller cancellation).
func (l *Loop) Run(ctx context.Context, in model.QueryInput, seed []*schema.Message) (*model.LoopOutcome, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, l.cfg.QueryTimeout)
	defer cancel()

	state := NewConversationState(in.SessionID, seed)
	if l.cfg.SystemPrompt != "" {
		state.Append(schema.SystemMessage(l.cfg.SystemPrompt))
	}
	state.Append(schema.UserMessage(in.Query))

	outcome := &model.LoopOutcome{
		SessionID: in.SessionID,
		Query:     in.Query,
		ToolsUsed: []string{},
		Sources:   []string{},
	}
	toolsSeen := map[string]struct{}{}
	sourcesSeen := map[string]struct{}{}

	current := stateReasoning
	var pendingCalls []model.ToolCallRequest
	for current == stateReasoning || current == stateActing {
		switch current {
		case stateReasoning:
			// Budget gate ahead of every consultation.
			if outcome.ReasoningSteps >= l.cfg.MaxSteps || ctx.Err() == context.DeadlineExceeded {
				l.exhaust(state, outcome)
				current = stateDone
				continue
			}

			decision, msg, err := l.consultWithRetry(ctx, state)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					// Client went away: hand the cancellation back without a
					// recorded outcome, counts stay well-defined.
					return nil, err
				}
				if errors.Is(err, context.DeadlineExceeded) {
					l.exhaust(state, outcome)
					current = stateDone
					continue
				}
				outcome.ReasoningSteps++
				outcome.Status = model.StatusFailed
				outcome.Answer = "The reasoning service is currently unavailable. Please try again."
				outcome.Elapsed = time.Since(start)
				current = stateFailed
				logx.Error().Err(err).Str("session_id", in.SessionID).Msg("orchestration failed")
				return outcome, err
			}

			outcome.ReasoningSteps++
			outcome.CostUSD += decision.CostUSD
			state.Append(msg)

			if decision.Kind == oracle.DecisionFinalAnswer {
				outcome.Answer = decision.Answer
				outcome.Status = model.StatusCompleted
				current = stateDone
				continue
			}

			pendingCalls = decision.ToolCalls
			current = stateActing

		case stateActing:
			results := l.executor.ExecuteAll(ctx, pendingCalls)
			pendingCalls = nil
			for _, res := range results {
				if _, seen := toolsSeen[res.Name]; !seen {
					toolsSeen[res.Name] = struct{}{}
					outcome.ToolsUsed = append(outcome.ToolsUsed, res.Name)
				}
				for _, src := range res.Sources {
					if _, seen := sourcesSeen[src]; !seen {
						sourcesSeen[src] = struct{}{}
						outcome.Sources = append(outcome.Sources, src)
					}
				}
				// Tool failures stay inside the conversation so the oracle
				// can adapt; they never abort the run.
				state.Append(schema.ToolMessage(res.Payload, res.CallID, schema.WithToolName(res.Name)))
			}
			current = stateReasoning
		}
	}

	outcome.Elapsed = time.Since(start)
	logx.Info().
		Str("session_id", in.SessionID).
		Str("status", string(outcome.Status)).
		Int("reasoning_steps", outcome.ReasoningSteps).
		Strs("tools_used", outcome.ToolsUsed).
		Dur("elapsed", outcome.Elapsed).
		Msg("query answered")
	return outcome, nil
}

// consultWithRetry consults the oracle, retrying exactly once with backoff on
// a recoverable oracle error.
func (l *Loop) consultWithRetry(ctx context.Context, state *ConversationState) (*oracle.Decision, *schema.Message, error) {
	decision, msg, err := l.oracle.Consult(ctx, state.Messages())
	if err == nil {
		return decision, msg, nil
	}
	if !errors.Is(err, oracle.ErrOracleUnavailable) && !errors.Is(err, oracle.ErrMalformedDecision) {
		return nil, nil, err
	}

	logx.Warn().Err(err).Dur("backoff", l.cfg.RetryBackoff).Msg("oracle consultation failed, retrying once")
	timer := time.NewTimer(l.cfg.RetryBackoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case <-timer.C:
	}

	decision, msg, err = l.oracle.Consult(ctx, state.Messages())
	if err != nil {
		return nil, nil, fmt.Errorf("oracle retry failed: %w", err)
	}
	return decision, msg, nil
}

// exhaust finalizes the outcome when the step or wall-clock budget runs out,
// synthesizing a best-effort answer from the last oracle reasoning available.
func (l *Loop) exhaust(state *ConversationState, outcome *model.LoopOutcome) {
	outcome.Status = model.StatusBudgetExhausted
	if last := state.lastAssistantContent(); last != "" {
		outcome.Answer = last
	} else {
		outcome.Answer = "I couldn't fully answer within the allotted reasoning budget. " +
			"Here is what I gathered so far; please narrow the question and try again."
	}
	logx.Warn().
		Str("session_id", state.SessionID()).
		Int("reasoning_steps", outcome.ReasoningSteps).
		Msg("budget exhausted, synthesizing best-effort answer")
}
