package port

import "context"

// Row is a single decoded result row.
type Row interface {
	Scan(dest ...any) error
}

type ExecResult struct {
	RowsAffected int64
	LastInsertID int64
}

type RecordStore interface {
	// Exec runs a write statement with bound parameters
	Exec(ctx context.Context, query string, args ...any) (ExecResult, error)

	// Query runs a read statement and calls scan once per row; rows are released on every path
	Query(ctx context.Context, query string, scan func(Row) error, args ...any) error
}
