package agent

import (
	"context"

	"github.com/intelligent-rag/server/internal/agent/analytics"
	"github.com/intelligent-rag/server/internal/agent/conversations"
	"github.com/intelligent-rag/server/internal/agent/loop"
	"github.com/intelligent-rag/server/internal/agent/model"
	logx "github.com/intelligent-rag/server/pkg/logger"
)

// Service is what the transport layer talks to: one call per user query plus
// the analytics read side.
type Service struct {
	loop          *loop.Loop
	conversations *conversations.Manager
	recorder      analytics.Recorder
}

func NewService(l *loop.Loop, conv *conversations.Manager, recorder analytics.Recorder) *Service {
	return &Service{loop: l, conversations: conv, recorder: recorder}
}

// AnswerQuery runs one query through the orchestration loop. The caller
// always gets a well-formed outcome or a single typed failure.
func (s *Service) AnswerQuery(ctx context.Context, in model.QueryInput) (*model.LoopOutcome, error) {
	seedMsgs, err := s.conversations.SeedHistory(ctx, in.SessionID)
	if err != nil {
		// Session continuity is best-effort: answer without history rather
		// than failing the query.
		logx.Warn().Err(err).Str("session_id", in.SessionID).Msg("failed to seed session history")
		seedMsgs = nil
	}

	outcome, err := s.loop.Run(ctx, in, seedMsgs)
	if outcome == nil {
		// Cancelled before any outcome existed; nothing to record.
		return nil, err
	}

	s.recorder.Record(ctx, outcome)

	if outcome.Status != model.StatusFailed {
		if saveErr := s.conversations.SaveExchange(ctx, in.SessionID, in.Query, outcome.Answer); saveErr != nil {
			logx.Warn().Err(saveErr).Str("session_id", in.SessionID).Msg("failed to persist exchange")
		}
	}

	return outcome, err
}

// Analytics returns the aggregate usage snapshot.
func (s *Service) Analytics(ctx context.Context) (*model.AggregateSnapshot, error) {
	return s.recorder.Aggregate(ctx)
}
