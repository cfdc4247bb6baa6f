package conversations

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/intelligent-rag/server/internal/agent/model"
)

// Manager bridges the per-query conversation state and the durable session
// history: it seeds a new run from stored turns and persists the finished
// exchange afterwards.
type Manager struct {
	repo         model.ConversationRepository
	maxSeedTurns int
}

func NewManager(repo model.ConversationRepository, config model.ConversationConfig) *Manager {
	return &Manager{
		repo:         repo,
		maxSeedTurns: config.MaxSeedTurns,
	}
}

// SeedHistory loads the stored session turns usable as seed context for a new
// run. Only plain user/assistant text turns are carried over; stale tool
// traffic from earlier queries would just confuse the oracle.
func (m *Manager) SeedHistory(ctx context.Context, sessionID string) ([]*schema.Message, error) {
	if sessionID == "" {
		return nil, nil
	}
	history, err := m.repo.LoadHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	seed := make([]*schema.Message, 0, len(history.Messages))
	for _, msg := range history.Messages {
		if msg == nil || msg.Content == "" {
			continue
		}
		switch msg.Role {
		case schema.User, schema.Assistant:
			if len(msg.ToolCalls) == 0 {
				seed = append(seed, msg)
			}
		}
	}
	return trimTail(seed, m.maxSeedTurns), nil
}

// SaveExchange persists the user query and the final answer of a completed
// run to the session history.
func (m *Manager) SaveExchange(ctx context.Context, sessionID, query, answer string) error {
	if sessionID == "" {
		return nil
	}
	if err := m.repo.AddMessage(ctx, sessionID, schema.UserMessage(query)); err != nil {
		return err
	}
	return m.repo.AddMessage(ctx, sessionID, schema.AssistantMessage(answer, nil))
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		return messages
	}
	return messages[len(messages)-maxTurns:]
}
