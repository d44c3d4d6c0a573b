package database

import "context"

// Database is the query surface used by table scans.
type Database interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	PingContext(ctx context.Context) error
	Close() error
}

// Rows is a forward-only result cursor. Err reports the error, if any, that
// ended iteration.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Columns() ([]string, error)
	Err() error
}
