package dialect

import "strings"

type MySQL struct{}

func NewMySQLDialect() Dialect {
	return &MySQL{}
}

func (MySQL) Name() string { return "mysql" }

func (MySQL) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QualifyTable ignores project; MySQL has no catalog level.
func (m MySQL) QualifyTable(_, dataset, table string) string {
	parts := nonEmpty(dataset, table)
	for i, part := range parts {
		parts[i] = m.QuoteIdentifier(part)
	}
	return strings.Join(parts, ".")
}

func (MySQL) Placeholder(int) string {
	return "?"
}
