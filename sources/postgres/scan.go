// Package postgres pages through Postgres tables in key order.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Konsultn-Engineering/bqlab/database"
	"github.com/Konsultn-Engineering/bqlab/dialect"
	"github.com/Konsultn-Engineering/bqlab/paging"
	"github.com/Konsultn-Engineering/bqlab/query"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Querier is the part of database.Database a scan needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (database.Rows, error)
}

const (
	firstPageSQL = "SELECT * FROM $table ORDER BY $key LIMIT $limit"
	nextPageSQL  = "SELECT * FROM $table WHERE $key > $after ORDER BY $key LIMIT $limit"
)

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 500

// Scan pages through table in ascending key order using keyset pagination.
// The page token carries the last key of the previous page, so pages stay
// stable while rows are inserted behind the cursor. key must be unique and
// of an integer, text or uuid type.
func Scan(db Querier, table query.Table, key string, pageSize int) paging.FetchFunc[Row] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pg := dialect.NewPostgresDialect()
	if table.Dialect == nil {
		table.Dialect = pg
	}
	env := query.Env{
		"table": table,
		"key":   query.Columns{Names: []string{key}, Dialect: pg},
		"limit": pageSize,
		"after": query.Raw(pg.Placeholder(1)),
	}

	return func(ctx context.Context, pageToken string, _ int) ([]Row, string, error) {
		text, args := firstPageSQL, []any(nil)
		if pageToken != "" {
			after, err := decodeKey(pageToken)
			if err != nil {
				return nil, "", err
			}
			text, args = nextPageSQL, []any{after}
		}
		sql, err := query.Substitute(text, env)
		if err != nil {
			return nil, "", err
		}
		slog.Debug("postgres scan", "sql", sql, "after", pageToken)

		rows, err := db.QueryContext(ctx, sql, args...)
		if err != nil {
			return nil, "", err
		}
		defer rows.Close()

		page, err := scanRows(rows)
		if err != nil {
			return nil, "", err
		}
		if len(page) < pageSize {
			return page, "", nil
		}

		last, ok := page[len(page)-1][key]
		if !ok {
			return nil, "", fmt.Errorf("key column %q not in result of %s", key, table)
		}
		next, err := encodeKey(last)
		if err != nil {
			return nil, "", fmt.Errorf("key column %q: %w", key, err)
		}
		return page, next, nil
	}
}

func scanRows(rows database.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []Row
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// Page tokens are "<kind>:<value>" so the key keeps its type when it is
// bound as a query argument again.
func encodeKey(v any) (string, error) {
	switch k := v.(type) {
	case int64:
		return "i:" + strconv.FormatInt(k, 10), nil
	case int32:
		return "i:" + strconv.FormatInt(int64(k), 10), nil
	case int16:
		return "i:" + strconv.FormatInt(int64(k), 10), nil
	case int:
		return "i:" + strconv.Itoa(k), nil
	case string:
		return "s:" + k, nil
	case [16]byte:
		return "u:" + uuid.UUID(k).String(), nil
	case uuid.UUID:
		return "u:" + k.String(), nil
	default:
		return "", fmt.Errorf("unsupported key type %T", v)
	}
}

func decodeKey(token string) (any, error) {
	kind, value, ok := strings.Cut(token, ":")
	if !ok {
		return nil, fmt.Errorf("malformed page token %q", token)
	}
	switch kind {
	case "i":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed page token %q: %w", token, err)
		}
		return n, nil
	case "s":
		return value, nil
	case "u":
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("malformed page token %q: %w", token, err)
		}
		return id, nil
	default:
		return nil, fmt.Errorf("malformed page token %q", token)
	}
}
