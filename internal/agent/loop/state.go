package loop

import (
	"github.com/cloudwego/eino/schema"
)

// ConversationState is the ordered, append-only sequence of turns for one
// query. It is exclusively owned by a single Run invocation and destroyed
// when the loop returns; nothing here needs locking.
type ConversationState struct {
	sessionID string
	messages  []*schema.Message
}

func NewConversationState(sessionID string, seed []*schema.Message) *ConversationState {
	msgs := make([]*schema.Message, 0, len(seed)+4)
	msgs = append(msgs, seed...)
	return &ConversationState{sessionID: sessionID, messages: msgs}
}

// Append adds turns to the state. Length only ever grows during a run.
func (s *ConversationState) Append(msgs ...*schema.Message) {
	s.messages = append(s.messages, msgs...)
}

// Messages returns the current turn sequence.
func (s *ConversationState) Messages() []*schema.Message {
	return s.messages
}

func (s *ConversationState) Len() int {
	return len(s.messages)
}

func (s *ConversationState) SessionID() string {
	return s.sessionID
}

// lastAssistantContent returns the most recent non-empty assistant text, used
// to synthesize a best-effort answer on budget exhaustion.
func (s *ConversationState) lastAssistantContent() string {
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if m != nil && m.Role == schema.Assistant && m.Content != "" {
			return m.Content
		}
	}
	return ""
}
