package datastore

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestSchemaInfoFormatsTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`information_schema`).WillReturnRows(
		sqlmock.NewRows([]string{"table_name", "column_name", "data_type"}).
			AddRow("orders", "id", "integer").
			AddRow("orders", "total", "numeric").
			AddRow("users", "id", "integer").
			AddRow("users", "name", "text"))

	got, err := NewPostgres(db).SchemaInfo(context.Background())
	if err != nil {
		t.Fatalf("SchemaInfo: %v", err)
	}
	want := "Table: orders\nColumns: id (integer), total (numeric)\n\nTable: users\nColumns: id (integer), name (text)"
	if got != want {
		t.Errorf("schema info:\ngot:  %q\nwant: %q", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestExecuteReadonlyReturnsRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name FROM users`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), []byte("alice")).
			AddRow(int64(2), []byte("bob")))

	rows, err := NewPostgres(db).ExecuteReadonly(context.Background(), "SELECT id, name FROM users", 100)
	if err != nil {
		t.Fatalf("ExecuteReadonly: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Byte slices come back as strings so they serialize readably.
	if rows[0]["name"] != "alice" {
		t.Errorf("rows[0][name] = %v (%T)", rows[0]["name"], rows[0]["name"])
	}
	if rows[1]["id"] != int64(2) {
		t.Errorf("rows[1][id] = %v (%T)", rows[1]["id"], rows[1]["id"])
	}
}

func TestExecuteReadonlyCapsRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mocked := sqlmock.NewRows([]string{"n"})
	for i := 0; i < 10; i++ {
		mocked.AddRow(int64(i))
	}
	mock.ExpectQuery(`SELECT n FROM series`).WillReturnRows(mocked)

	rows, err := NewPostgres(db).ExecuteReadonly(context.Background(), "SELECT n FROM series", 3)
	if err != nil {
		t.Fatalf("ExecuteReadonly: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows, want cap of 3", len(rows))
	}
}
