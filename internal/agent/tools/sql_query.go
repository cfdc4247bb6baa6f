package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// ===================================
// SQL Query Generator Tool
// ===================================

// TextGenerator produces a plain-text completion for a prompt. The reasoning
// oracle adapter satisfies this for SQL synthesis.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ReadonlyStore is the collaborator interface to the analytical data store.
// Statements reaching ExecuteReadonly have already passed the read-only guard.
type ReadonlyStore interface {
	SchemaInfo(ctx context.Context) (string, error)
	ExecuteReadonly(ctx context.Context, sqlQuery string, maxRows int) ([]map[string]any, error)
}

type SQLQueryInput struct {
	NaturalLanguageQuery string `json:"natural_language_query"`
}

const sqlGenerationPrompt = `Given this database schema:

%s

Generate a SQL query for this request: "%s"

Requirements:
- Return ONLY the SQL query, no explanation
- Use standard PostgreSQL syntax
- Only SELECT queries (no INSERT, UPDATE, DELETE)
- Be precise and efficient

SQL Query:`

func NewSQLQueryTool(generator TextGenerator, store ReadonlyStore, maxRows int) *Descriptor {
	return &Descriptor{
		Info: &schema.ToolInfo{
			Name: ToolSQLQueryGenerator,
			Desc: "Generate and execute SQL queries from natural language. Use this when the user asks questions about database data, wants to query tables, or needs data analysis from the database.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"natural_language_query": {
					Type:     schema.String,
					Desc:     "The data question in plain language, e.g. \"Count how many orders were placed yesterday\"",
					Required: true,
				},
			}),
		},
		SideEffect: SideEffectReadOnly,
		Invoke: func(ctx context.Context, arguments string) (*Output, error) {
			var in SQLQueryInput
			if err := json.Unmarshal([]byte(arguments), &in); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
			if strings.TrimSpace(in.NaturalLanguageQuery) == "" {
				return nil, fmt.Errorf("natural_language_query is required")
			}

			schemaInfo, err := store.SchemaInfo(ctx)
			if err != nil {
				return nil, fmt.Errorf("get schema info: %w", err)
			}

			generated, err := generator.GenerateText(ctx, fmt.Sprintf(sqlGenerationPrompt, schemaInfo, in.NaturalLanguageQuery))
			if err != nil {
				return nil, fmt.Errorf("generate sql: %w", err)
			}
			sqlQuery := stripCodeFences(generated)

			// Safety gate: the statement never reaches the store unless it
			// passes the read-only policy.
			if err := EnsureReadOnly(sqlQuery); err != nil {
				return nil, err
			}

			rows, err := store.ExecuteReadonly(ctx, sqlQuery, maxRows)
			if err != nil {
				return nil, fmt.Errorf("execute query: %w", err)
			}

			return &Output{Content: formatSQLResult(sqlQuery, rows)}, nil
		},
	}
}

// stripCodeFences removes markdown code fences the model may wrap SQL in.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```sql", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func formatSQLResult(sqlQuery string, rows []map[string]any) string {
	var b strings.Builder
	b.WriteString("Query executed successfully!\n\n")
	fmt.Fprintf(&b, "SQL Query: %s\n", sqlQuery)
	fmt.Fprintf(&b, "Rows returned: %d\n\n", len(rows))

	if len(rows) == 0 {
		b.WriteString("No results found.")
		return b.String()
	}

	b.WriteString("Results:\n")
	shown := rows
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for i, row := range shown {
		enc, err := json.Marshal(row)
		if err != nil {
			enc = []byte(fmt.Sprintf("%v", row))
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, enc)
	}
	if len(rows) > 10 {
		fmt.Fprintf(&b, "\n... and %d more rows", len(rows)-10)
	}
	return b.String()
}
