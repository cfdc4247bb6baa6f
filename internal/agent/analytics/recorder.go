package analytics

import (
	"context"
	"sort"
	"sync"

	"github.com/intelligent-rag/server/internal/agent/model"
)

// Recorder observes loop outcomes and aggregates usage counts. Record is
// fire-and-forget relative to the loop: a storage failure is logged and
// swallowed, never surfaced to the caller of answer_query.
type Recorder interface {
	Record(ctx context.Context, outcome *model.LoopOutcome)
	Aggregate(ctx context.Context) (*model.AggregateSnapshot, error)
}

// MemoryRecorder keeps aggregates in process memory. Used when no analytics
// database is configured, and in tests. Safe for concurrent queries.
type MemoryRecorder struct {
	mu         sync.Mutex
	queries    int64
	toolTotals int64
	perTool    map[string]int64
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{perTool: make(map[string]int64)}
}

func (r *MemoryRecorder) Record(ctx context.Context, outcome *model.LoopOutcome) {
	if outcome == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries++
	r.toolTotals += int64(len(outcome.ToolsUsed))
	for _, tool := range outcome.ToolsUsed {
		r.perTool[tool]++
	}
}

func (r *MemoryRecorder) Aggregate(ctx context.Context) (*model.AggregateSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := &model.AggregateSnapshot{
		TotalQueries: r.queries,
		ToolUsage:    make([]model.ToolUsage, 0, len(r.perTool)),
	}
	if r.queries > 0 {
		snap.AvgToolsPerQuery = float64(r.toolTotals) / float64(r.queries)
	}
	for tool, count := range r.perTool {
		snap.ToolUsage = append(snap.ToolUsage, model.ToolUsage{Tool: tool, Count: count})
	}
	sort.Slice(snap.ToolUsage, func(i, j int) bool {
		if snap.ToolUsage[i].Count != snap.ToolUsage[j].Count {
			return snap.ToolUsage[i].Count > snap.ToolUsage[j].Count
		}
		return snap.ToolUsage[i].Tool < snap.ToolUsage[j].Tool
	})
	return snap, nil
}

var _ Recorder = (*MemoryRecorder)(nil)
