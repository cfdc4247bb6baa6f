package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/intelligent-rag/server/internal/agent/tools"
	errx "github.com/intelligent-rag/server/internal/core/error"
)

// Postgres is the analytical data store collaborator the SQL tool queries.
// Only statements that already passed the read-only guard reach it.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// SchemaInfo describes the public tables and their columns, used as context
// for SQL generation.
func (p *Postgres) SchemaInfo(ctx context.Context) (string, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT t.table_name, c.column_name, c.data_type
        FROM information_schema.tables t
        JOIN information_schema.columns c ON c.table_name = t.table_name
        WHERE t.table_schema = 'public'
        ORDER BY t.table_name, c.ordinal_position`)
	if err != nil {
		return "", errx.WrapPostgres(err)
	}
	defer rows.Close()

	type column struct{ name, dataType string }
	tableOrder := []string{}
	columns := map[string][]column{}
	for rows.Next() {
		var table, name, dataType string
		if err := rows.Scan(&table, &name, &dataType); err != nil {
			return "", errx.WrapPostgres(err)
		}
		if _, seen := columns[table]; !seen {
			tableOrder = append(tableOrder, table)
		}
		columns[table] = append(columns[table], column{name, dataType})
	}
	if err := rows.Err(); err != nil {
		return "", errx.WrapPostgres(err)
	}

	var b strings.Builder
	for i, table := range tableOrder {
		if i > 0 {
			b.WriteString("\n\n")
		}
		cols := make([]string, 0, len(columns[table]))
		for _, c := range columns[table] {
			cols = append(cols, fmt.Sprintf("%s (%s)", c.name, c.dataType))
		}
		fmt.Fprintf(&b, "Table: %s\nColumns: %s", table, strings.Join(cols, ", "))
	}
	return b.String(), nil
}

// ExecuteReadonly runs a query and returns at most maxRows rows as generic
// column-name keyed maps.
func (p *Postgres) ExecuteReadonly(ctx context.Context, sqlQuery string, maxRows int) ([]map[string]any, error) {
	rows, err := p.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, errx.WrapPostgres(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errx.WrapPostgres(err)
	}

	var out []map[string]any
	for rows.Next() {
		if maxRows > 0 && len(out) >= maxRows {
			break
		}
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errx.WrapPostgres(err)
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapPostgres(err)
	}
	return out, nil
}

var _ tools.ReadonlyStore = (*Postgres)(nil)
