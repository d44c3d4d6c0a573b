package dialect

import (
	"strconv"
	"strings"
)

// BigQuery is the standard SQL dialect: identifiers in backticks, positional
// parameters as '?'.
type BigQuery struct{}

func NewBigQueryDialect() Dialect {
	return &BigQuery{}
}

func (BigQuery) Name() string { return "bigquery" }

func (BigQuery) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "\\`") + "`"
}

// QualifyTable quotes the whole dotted path once: `project.dataset.table`.
func (b BigQuery) QualifyTable(project, dataset, table string) string {
	return b.QuoteIdentifier(strings.Join(nonEmpty(project, dataset, table), "."))
}

func (BigQuery) Placeholder(int) string {
	return "?"
}

// LegacyBigQuery renders legacy SQL references such as [project:dataset.table].
type LegacyBigQuery struct{}

func NewLegacyBigQueryDialect() Dialect {
	return &LegacyBigQuery{}
}

func (LegacyBigQuery) Name() string { return "bigquery-legacy" }

func (LegacyBigQuery) QuoteIdentifier(name string) string {
	return "[" + name + "]"
}

func (l LegacyBigQuery) QualifyTable(project, dataset, table string) string {
	ref := strings.Join(nonEmpty(dataset, table), ".")
	if project != "" {
		ref = project + ":" + ref
	}
	return l.QuoteIdentifier(ref)
}

// Placeholder uses named parameters; legacy SQL has no positional form.
func (LegacyBigQuery) Placeholder(n int) string {
	return "@p" + strconv.Itoa(n)
}
