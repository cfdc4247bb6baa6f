package oracle

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type scriptedModel struct {
	reply *schema.Message
	err   error

	gotInput []*schema.Message
}

func (m *scriptedModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	m.gotInput = input
	return m.reply, m.err
}

func TestConsultFinalAnswer(t *testing.T) {
	mdl := &scriptedModel{reply: schema.AssistantMessage("The answer is 42.", nil)}
	adapter := NewAdapter(mdl, mdl, "gemini-2.5-flash")

	history := []*schema.Message{schema.UserMessage("what is the answer?")}
	decision, raw, err := adapter.Consult(context.Background(), history)
	if err != nil {
		t.Fatalf("Consult: %v", err)
	}
	if decision.Kind != DecisionFinalAnswer {
		t.Fatalf("kind = %v, want DecisionFinalAnswer", decision.Kind)
	}
	if decision.Answer != "The answer is 42." {
		t.Errorf("answer = %q", decision.Answer)
	}
	if raw != mdl.reply {
		t.Error("raw turn should be the model's message")
	}
	if len(mdl.gotInput) != 1 {
		t.Errorf("model got %d messages, want 1", len(mdl.gotInput))
	}
}

func TestConsultToolCalls(t *testing.T) {
	reply := schema.AssistantMessage("", []schema.ToolCall{
		{ID: "call-1", Function: schema.FunctionCall{Name: "search_web", Arguments: `{"query":"go releases"}`}},
		{ID: "", Function: schema.FunctionCall{Name: "calculate", Arguments: `{"expression":"2+2"}`}},
	})
	adapter := NewAdapter(&scriptedModel{reply: reply}, nil, "gemini-2.5-flash")

	decision, _, err := adapter.Consult(context.Background(), nil)
	if err != nil {
		t.Fatalf("Consult: %v", err)
	}
	if decision.Kind != DecisionToolCalls {
		t.Fatalf("kind = %v, want DecisionToolCalls", decision.Kind)
	}
	if len(decision.ToolCalls) != 2 {
		t.Fatalf("got %d tool calls, want 2", len(decision.ToolCalls))
	}
	if decision.ToolCalls[0].CallID != "call-1" {
		t.Errorf("call id = %q, want call-1", decision.ToolCalls[0].CallID)
	}
	if decision.ToolCalls[0].Arguments != `{"query":"go releases"}` {
		t.Errorf("arguments were not passed through verbatim: %q", decision.ToolCalls[0].Arguments)
	}
	// Providers sometimes omit ids; one must be synthesized.
	if decision.ToolCalls[1].CallID == "" {
		t.Error("missing call id was not synthesized")
	}
}

func TestConsultMalformedResponses(t *testing.T) {
	cases := map[string]*schema.Message{
		"nil message":        nil,
		"empty content":      schema.AssistantMessage("   ", nil),
		"nameless tool call": schema.AssistantMessage("", []schema.ToolCall{{ID: "x", Function: schema.FunctionCall{Name: "  "}}}),
	}
	for name, reply := range cases {
		adapter := NewAdapter(&scriptedModel{reply: reply}, nil, "gemini-2.5-flash")
		_, _, err := adapter.Consult(context.Background(), nil)
		if !errors.Is(err, ErrMalformedDecision) {
			t.Errorf("%s: expected ErrMalformedDecision, got %v", name, err)
		}
	}
}

func TestConsultUnavailable(t *testing.T) {
	adapter := NewAdapter(&scriptedModel{err: errors.New("503 backend overloaded")}, nil, "gemini-2.5-flash")
	_, _, err := adapter.Consult(context.Background(), nil)
	if !errors.Is(err, ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
}

func TestConsultCancellationWinsOverTransportError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	adapter := NewAdapter(&scriptedModel{err: errors.New("rpc error")}, nil, "gemini-2.5-flash")
	_, _, err := adapter.Consult(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateText(t *testing.T) {
	plain := &scriptedModel{reply: schema.AssistantMessage("SELECT 1", nil)}
	adapter := NewAdapter(nil, plain, "gemini-2.5-flash")

	got, err := adapter.GenerateText(context.Background(), "write a query")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "SELECT 1" {
		t.Errorf("got %q", got)
	}

	empty := &scriptedModel{reply: schema.AssistantMessage("", nil)}
	adapter = NewAdapter(nil, empty, "gemini-2.5-flash")
	if _, err := adapter.GenerateText(context.Background(), "p"); !errors.Is(err, ErrMalformedDecision) {
		t.Errorf("expected ErrMalformedDecision for empty completion, got %v", err)
	}
}
