package query

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Konsultn-Engineering/bqlab/dialect"
	"github.com/Konsultn-Engineering/bqlab/naming"
)

// Query is a sub-query. It renders as a parenthesised expression with its
// own placeholders resolved against the enclosing Env.
type Query struct {
	SQL string
}

// NewQuery returns a sub-query over sql.
func NewQuery(sql string) *Query {
	return &Query{SQL: sql}
}

func (q *Query) RenderSQL(env Env) (string, error) {
	return q.render(env, nil)
}

func (q *Query) render(env Env, stack []string) (string, error) {
	expanded, err := templates.GetOrCompute(q.SQL, Compile).substitute(env, stack)
	if err != nil {
		return "", err
	}
	return "(" + expanded + ")", nil
}

// Dependencies returns the placeholders the sub-query needs.
func (q *Query) Dependencies() []string {
	if q == nil {
		return nil
	}
	return Dependencies(q.SQL)
}

// Raw is SQL text substituted verbatim.
type Raw string

func (r Raw) RenderSQL(Env) (string, error) {
	return string(r), nil
}

// Table references a table. A nil Dialect means BigQuery standard SQL.
type Table struct {
	Project string
	Dataset string
	Name    string
	Dialect dialect.Dialect
}

func (t Table) RenderSQL(Env) (string, error) {
	if t.Name == "" {
		return "", errors.New("table reference has no name")
	}
	return dialectOr(t.Dialect).QualifyTable(t.Project, t.Dataset, t.Name), nil
}

// String returns the unquoted dotted path.
func (t Table) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Project, t.Dataset, t.Name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// ParseTable parses "table", "dataset.table", "project.dataset.table" and
// the legacy "project:dataset.table" form.
func ParseTable(ref string, d dialect.Dialect) (Table, error) {
	ref = strings.Trim(strings.TrimSpace(ref), "`[]")
	if ref == "" {
		return Table{}, errors.New("empty table reference")
	}

	var project string
	if i := strings.IndexByte(ref, ':'); i >= 0 {
		project, ref = ref[:i], ref[i+1:]
	}

	parts := strings.Split(ref, ".")
	for _, p := range parts {
		if p == "" {
			return Table{}, fmt.Errorf("malformed table reference %q", ref)
		}
	}

	t := Table{Project: project, Dialect: d}
	switch len(parts) {
	case 1:
		t.Name = parts[0]
	case 2:
		t.Dataset, t.Name = parts[0], parts[1]
	case 3:
		if project != "" {
			return Table{}, fmt.Errorf("malformed table reference %q", ref)
		}
		t.Project, t.Dataset, t.Name = parts[0], parts[1], parts[2]
	default:
		return Table{}, fmt.Errorf("malformed table reference %q", ref)
	}
	if project != "" && t.Dataset == "" {
		return Table{}, fmt.Errorf("table reference %q has a project but no dataset", ref)
	}
	return t, nil
}

// TableOf references the table named after T: BlogPost -> blog_posts.
func TableOf[T any](d dialect.Dialect) Table {
	typ := reflect.TypeFor[T]()
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return Table{Name: naming.TableName(typ.Name()), Dialect: d}
}

func dialectOr(d dialect.Dialect) dialect.Dialect {
	if d == nil {
		return dialect.NewBigQueryDialect()
	}
	return d
}
