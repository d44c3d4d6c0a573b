package dialect

import (
	"fmt"
	"sort"
	"strings"
)

// Dialect describes how a SQL engine spells identifiers and parameters.
type Dialect interface {
	Name() string
	QuoteIdentifier(name string) string
	// QualifyTable renders a table reference; empty parts are omitted.
	QualifyTable(project, dataset, table string) string
	Placeholder(n int) string
}

var registry = map[string]func() Dialect{
	"bigquery":        NewBigQueryDialect,
	"bigquery-legacy": NewLegacyBigQueryDialect,
	"postgres":        NewPostgresDialect,
	"mysql":           NewMySQLDialect,
}

// Lookup returns the dialect registered under name.
func Lookup(name string) (Dialect, error) {
	ctor, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// Names lists the registered dialect names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func nonEmpty(parts ...string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
