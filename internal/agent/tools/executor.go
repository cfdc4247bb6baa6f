package tools

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/intelligent-rag/server/internal/agent/model"
	logx "github.com/intelligent-rag/server/pkg/logger"
)

// Executor runs tool calls with isolation: a per-call timeout, panic
// recovery, and conversion of every failure into a ToolResult with error
// status. A tool's failure never aborts the orchestration loop.
type Executor struct {
	registry *Registry
	timeout  time.Duration
}

func NewExecutor(registry *Registry, timeout time.Duration) *Executor {
	return &Executor{registry: registry, timeout: timeout}
}

// Execute runs a single tool call and returns its normalized result.
func (e *Executor) Execute(ctx context.Context, req model.ToolCallRequest) model.ToolResult {
	start := time.Now()
	result := model.ToolResult{
		CallID: req.CallID,
		Name:   req.Name,
		Status: model.ToolStatusOK,
	}

	desc, err := e.registry.Resolve(req.Name)
	if err != nil {
		result.Status = model.ToolStatusError
		result.Payload = fmt.Sprintf("Tool error: %v", err)
		result.Elapsed = time.Since(start)
		logx.Warn().Str("tool", req.Name).Str("call_id", req.CallID).Msg("oracle requested unknown tool")
		return result
	}

	callCtx := ctx
	var cancel context.CancelFunc
	if e.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	type invokeOutcome struct {
		out *Output
		err error
	}
	done := make(chan invokeOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- invokeOutcome{err: fmt.Errorf("tool panicked: %v", r)}
			}
		}()
		out, err := desc.Invoke(callCtx, req.Arguments)
		done <- invokeOutcome{out: out, err: err}
	}()

	select {
	case <-callCtx.Done():
		result.Status = model.ToolStatusError
		if callCtx.Err() == context.DeadlineExceeded {
			// The caller's deadline can fire before the per-call timeout;
			// only name the configured timeout when it was the one that
			// expired.
			if ctx.Err() == context.DeadlineExceeded {
				result.Payload = fmt.Sprintf("Tool error: %s timed out after %s", req.Name, time.Since(start).Round(time.Millisecond))
			} else {
				result.Payload = fmt.Sprintf("Tool error: %s timed out after %s", req.Name, e.timeout)
			}
		} else {
			result.Payload = fmt.Sprintf("Tool error: %s cancelled", req.Name)
		}
	case o := <-done:
		if o.err != nil {
			result.Status = model.ToolStatusError
			result.Payload = fmt.Sprintf("Tool error: %v", o.err)
		} else if o.out == nil {
			result.Status = model.ToolStatusError
			result.Payload = "Tool error: empty result"
		} else {
			result.Payload = o.out.Content
			result.Sources = o.out.Sources
		}
	}

	result.Elapsed = time.Since(start)
	logx.Debug().
		Str("tool", req.Name).
		Str("call_id", req.CallID).
		Str("status", string(result.Status)).
		Dur("elapsed", result.Elapsed).
		Msg("tool executed")
	return result
}

// ExecuteAll dispatches the calls of one step concurrently (they are
// independent, read-mostly operations) and reassembles the results in
// original-request order for reproducibility.
func (e *Executor) ExecuteAll(ctx context.Context, reqs []model.ToolCallRequest) []model.ToolResult {
	results := make([]model.ToolResult, len(reqs))
	if len(reqs) == 1 {
		results[0] = e.Execute(ctx, reqs[0])
		return results
	}

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req model.ToolCallRequest) {
			defer wg.Done()
			results[i] = e.Execute(ctx, req)
		}(i, req)
	}
	wg.Wait()
	return results
}
