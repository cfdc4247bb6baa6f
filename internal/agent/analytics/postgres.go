package analytics

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/intelligent-rag/server/internal/agent/model"
	errx "github.com/intelligent-rag/server/internal/core/error"
	logx "github.com/intelligent-rag/server/pkg/logger"
)

// PostgresRecorder persists one query-log row per outcome plus one
// tool-usage row per distinct tool used, in a single transaction so
// concurrent queries never lose counts.
type PostgresRecorder struct {
	db *sql.DB
}

func NewPostgresRecorder(db *sql.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// EnsureSchema creates the analytics tables when missing. Both tables are
// append-only from the orchestration core's perspective.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS agent_queries (
    id              UUID PRIMARY KEY,
    session_id      VARCHAR(255),
    query           TEXT NOT NULL,
    answer          TEXT,
    tools_used      INTEGER NOT NULL DEFAULT 0,
    reasoning_steps INTEGER NOT NULL DEFAULT 0,
    status          VARCHAR(32) NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS agent_tool_usage (
    id         SERIAL PRIMARY KEY,
    query_id   UUID REFERENCES agent_queries(id),
    tool_name  VARCHAR(100) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return errx.WrapPostgres(err)
	}
	return nil
}

func (r *PostgresRecorder) Record(ctx context.Context, outcome *model.LoopOutcome) {
	if outcome == nil {
		return
	}
	if err := r.record(ctx, outcome); err != nil {
		// Analytics failures never affect the returned answer.
		logx.Error().Err(err).Str("session_id", outcome.SessionID).Msg("failed to record query outcome")
	}
}

func (r *PostgresRecorder) record(ctx context.Context, outcome *model.LoopOutcome) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errx.WrapPostgres(err)
	}
	defer tx.Rollback()

	queryID := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO agent_queries (id, session_id, query, answer, tools_used, reasoning_steps, status)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		queryID, outcome.SessionID, outcome.Query, outcome.Answer,
		len(outcome.ToolsUsed), outcome.ReasoningSteps, string(outcome.Status),
	); err != nil {
		return errx.WrapPostgres(err)
	}

	for _, tool := range outcome.ToolsUsed {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO agent_tool_usage (query_id, tool_name) VALUES ($1, $2)`,
			queryID, tool,
		); err != nil {
			return errx.WrapPostgres(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errx.WrapPostgres(err)
	}
	return nil
}

func (r *PostgresRecorder) Aggregate(ctx context.Context) (*model.AggregateSnapshot, error) {
	snap := &model.AggregateSnapshot{ToolUsage: []model.ToolUsage{}}

	row := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(tools_used), 0) FROM agent_queries`)
	if err := row.Scan(&snap.TotalQueries, &snap.AvgToolsPerQuery); err != nil {
		return nil, errx.WrapPostgres(err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT tool_name, COUNT(*) AS usage_count
         FROM agent_tool_usage
         GROUP BY tool_name
         ORDER BY usage_count DESC, tool_name ASC`)
	if err != nil {
		return nil, errx.WrapPostgres(err)
	}
	defer rows.Close()

	for rows.Next() {
		var usage model.ToolUsage
		if err := rows.Scan(&usage.Tool, &usage.Count); err != nil {
			return nil, errx.WrapPostgres(err)
		}
		snap.ToolUsage = append(snap.ToolUsage, usage)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapPostgres(err)
	}
	return snap, nil
}

var _ Recorder = (*PostgresRecorder)(nil)
