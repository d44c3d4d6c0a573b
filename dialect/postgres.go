package dialect

import (
	"strconv"
	"strings"
)

type Postgres struct{}

func NewPostgresDialect() Dialect {
	return &Postgres{}
}

func (Postgres) Name() string { return "postgres" }

func (Postgres) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QualifyTable maps project to the catalog and dataset to the schema.
func (p Postgres) QualifyTable(project, dataset, table string) string {
	parts := nonEmpty(project, dataset, table)
	for i, part := range parts {
		parts[i] = p.QuoteIdentifier(part)
	}
	return strings.Join(parts, ".")
}

func (Postgres) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
