package query

import (
	"errors"
	"strings"

	"github.com/Konsultn-Engineering/bqlab/dialect"
)

// Columns is a column list such as "a, t.b AS c". Each name may carry a
// table qualifier and an alias; "*" is passed through unquoted.
type Columns struct {
	Names   []string
	Dialect dialect.Dialect
}

// Cols returns a column list rendered with the BigQuery dialect.
func Cols(names ...string) Columns {
	return Columns{Names: names}
}

func (c Columns) RenderSQL(Env) (string, error) {
	if len(c.Names) == 0 {
		return "", errors.New("column list is empty")
	}
	d := dialectOr(c.Dialect)

	var sb strings.Builder
	for i, spec := range c.Names {
		if i > 0 {
			sb.WriteString(", ")
		}
		table, name, alias := parseColumnString(spec)
		if name == "" {
			return "", errors.New("column list has an empty name")
		}
		if table != "" {
			sb.WriteString(d.QuoteIdentifier(table))
			sb.WriteByte('.')
		}
		if name == "*" {
			sb.WriteByte('*')
		} else {
			sb.WriteString(d.QuoteIdentifier(name))
		}
		if alias != "" {
			sb.WriteString(" AS ")
			sb.WriteString(d.QuoteIdentifier(alias))
		}
	}
	return sb.String(), nil
}

// parseColumnString efficiently parses "table.column AS alias" formats
// Returns table, name, alias (any can be empty)
func parseColumnString(spec string) (table, name, alias string) {
	spec = strings.TrimSpace(spec)

	// Handle AS clause first
	if asIdx := strings.Index(strings.ToUpper(spec), " AS "); asIdx > 0 {
		alias = strings.TrimSpace(spec[asIdx+4:])
		spec = strings.TrimSpace(spec[:asIdx])
	}

	// Handle table.column
	if dotIdx := strings.Index(spec, "."); dotIdx > 0 {
		table = spec[:dotIdx]
		name = spec[dotIdx+1:]
	} else {
		name = spec
	}

	return
}
