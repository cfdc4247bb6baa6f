package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/intelligent-rag/server/internal/agent/model"
	logx "github.com/intelligent-rag/server/pkg/logger"
)

var (
	// ErrOracleUnavailable indicates a transport or auth failure from the
	// underlying oracle service. The loop retries once, then fails.
	ErrOracleUnavailable = errors.New("oracle unavailable")
	// ErrMalformedDecision indicates the oracle's response could not be
	// parsed into a final answer or a set of tool calls.
	ErrMalformedDecision = errors.New("malformed oracle decision")
)

// ChatModel is the narrow seam to the underlying chat model. The eino gemini
// model satisfies it; tests plug in scripted fakes.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

// DecisionKind tags the two variants of an oracle decision.
type DecisionKind int

const (
	DecisionFinalAnswer DecisionKind = iota
	DecisionToolCalls
)

// Decision is the parsed outcome of one oracle consultation.
type Decision struct {
	Kind      DecisionKind
	Answer    string
	ToolCalls []model.ToolCallRequest
	CostUSD   float64
}

// Adapter translates conversation state into oracle requests and parses the
// responses. It is the only component aware of the oracle's wire format.
type Adapter struct {
	decisionModel ChatModel // tool-bound, drives the loop
	plainModel    ChatModel // unbound, used for text generation (SQL synthesis)
	modelName     string
}

func NewAdapter(decisionModel, plainModel ChatModel, modelName string) *Adapter {
	return &Adapter{
		decisionModel: decisionModel,
		plainModel:    plainModel,
		modelName:     modelName,
	}
}

// Consult asks the oracle for the next action given the conversation so far.
// The returned message is the raw assistant turn to append to the state.
func (a *Adapter) Consult(ctx context.Context, history []*schema.Message) (*Decision, *schema.Message, error) {
	out, err := a.decisionModel.Generate(ctx, history)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	if out == nil {
		return nil, nil, fmt.Errorf("%w: empty response", ErrMalformedDecision)
	}

	cost := a.observeUsage(out)

	if len(out.ToolCalls) > 0 {
		calls := make([]model.ToolCallRequest, 0, len(out.ToolCalls))
		for _, tc := range out.ToolCalls {
			name := strings.TrimSpace(tc.Function.Name)
			if name == "" {
				continue
			}
			callID := tc.ID
			if strings.TrimSpace(callID) == "" {
				// Some providers omit call ids; synthesize one so results
				// can be matched back.
				callID = uuid.NewString()
			}
			// Arguments pass through verbatim.
			calls = append(calls, model.ToolCallRequest{
				CallID:    callID,
				Name:      name,
				Arguments: tc.Function.Arguments,
			})
		}
		if len(calls) == 0 {
			return nil, nil, fmt.Errorf("%w: tool calls without names", ErrMalformedDecision)
		}
		return &Decision{Kind: DecisionToolCalls, ToolCalls: calls, CostUSD: cost}, out, nil
	}

	if strings.TrimSpace(out.Content) == "" {
		return nil, nil, fmt.Errorf("%w: neither answer nor tool calls", ErrMalformedDecision)
	}

	return &Decision{Kind: DecisionFinalAnswer, Answer: out.Content, CostUSD: cost}, out, nil
}

// GenerateText produces a plain completion for a prompt, without tools.
func (a *Adapter) GenerateText(ctx context.Context, prompt string) (string, error) {
	out, err := a.plainModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrMalformedDecision)
	}
	a.observeUsage(out)
	return out.Content, nil
}

// observeUsage logs token usage and returns the USD cost of the exchange.
func (a *Adapter) observeUsage(out *schema.Message) float64 {
	if !model.CostEnabled() || out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return 0
	}
	usage := out.ResponseMeta.Usage
	pricing := model.ResolvePricing(a.modelName)
	inC, outC, totalC := model.ComputeCost(usage, pricing)
	logx.Debug().
		Str("model", a.modelName).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Int("total_tokens", usage.TotalTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", totalC).
		Msg("LLM usage")
	return totalC
}
