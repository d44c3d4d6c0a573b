package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/bqlab/dialect"
)

type BlogPost struct{}

// =========================================================================
// Sub-queries
// =========================================================================

func TestQueryRendersNestedPlaceholders(t *testing.T) {
	inner := NewQuery("SELECT id FROM t WHERE score > $min")
	env := Env{"inner": inner, "min": 10}

	got, err := Substitute("SELECT * FROM $inner AS s", env)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM (SELECT id FROM t WHERE score > 10) AS s", got)
	assert.Equal(t, []string{"min"}, inner.Dependencies())
}

func TestQueryNestedMissingVariable(t *testing.T) {
	inner := NewQuery("SELECT $nope")
	_, err := Substitute("SELECT * FROM $inner", Env{"inner": inner})

	var mv *MissingVariableError
	require.ErrorAs(t, err, &mv)
	assert.Equal(t, "nope", mv.Name)
	assert.Equal(t, "SELECT $nope", mv.Text)
}

func TestQuerySelfReference(t *testing.T) {
	q := NewQuery("SELECT $q")
	env := Env{"q": q}

	_, err := Substitute("SELECT * FROM $q", env)
	require.ErrorIs(t, err, ErrCyclicReference)
	var cyc *CyclicReferenceError
	require.ErrorAs(t, err, &cyc)
	assert.Equal(t, []string{"q", "q"}, cyc.Cycle)
	assert.Contains(t, err.Error(), "cyclic reference $q -> $q")

	_, err = q.RenderSQL(env)
	assert.ErrorIs(t, err, ErrCyclicReference)
}

func TestQueryMutualReference(t *testing.T) {
	env := Env{
		"a": NewQuery("SELECT * FROM $b"),
		"b": NewQuery("SELECT * FROM $a"),
	}

	_, err := Substitute("$a", env)
	var cyc *CyclicReferenceError
	require.ErrorAs(t, err, &cyc)
	assert.Equal(t, []string{"a", "b", "a"}, cyc.Cycle)
}

func TestQuerySharedWithoutCycle(t *testing.T) {
	env := Env{
		"l": NewQuery("SELECT $c"),
		"r": NewQuery("SELECT $c"),
		"c": NewQuery("SELECT 1"),
	}

	got, err := Substitute("$l UNION ALL $r UNION ALL $c", env)
	require.NoError(t, err)
	assert.Equal(t, "(SELECT (SELECT 1)) UNION ALL (SELECT (SELECT 1)) UNION ALL (SELECT 1)", got)
}

func TestAllDependencies(t *testing.T) {
	env := Env{"s": NewQuery("SELECT * FROM $src WHERE day = $day AND x = $x")}
	assert.Equal(t, []string{"s", "src", "day", "x", "lim"},
		AllDependencies("SELECT * FROM $s WHERE x = $x LIMIT $lim", env))

	assert.Equal(t, []string{"a"}, AllDependencies("$a", nil))
	assert.Nil(t, AllDependencies("SELECT 1", env))

	cyclic := Env{"q": NewQuery("SELECT $q, $w")}
	assert.Equal(t, []string{"q", "w"}, AllDependencies("$q", cyclic))
}

func TestRaw(t *testing.T) {
	got, err := Substitute("ORDER BY $o", Env{"o": Raw("a DESC")})
	require.NoError(t, err)
	assert.Equal(t, "ORDER BY a DESC", got)
}

// =========================================================================
// Tables
// =========================================================================

func TestTableRender(t *testing.T) {
	tests := []struct {
		name     string
		table    Table
		expected string
	}{
		{"DefaultBigQuery", Table{Project: "p", Dataset: "d", Name: "t"}, "`p.d.t`"},
		{"Legacy", Table{Project: "p", Dataset: "d", Name: "t", Dialect: dialect.NewLegacyBigQueryDialect()}, "[p:d.t]"},
		{"Postgres", Table{Dataset: "public", Name: "t", Dialect: dialect.NewPostgresDialect()}, `"public"."t"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.table.RenderSQL(nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := Table{Dataset: "d"}.RenderSQL(nil)
	assert.Error(t, err)
}

func TestParseTable(t *testing.T) {
	tests := []struct {
		ref      string
		expected Table
		wantErr  bool
	}{
		{ref: "t", expected: Table{Name: "t"}},
		{ref: "d.t", expected: Table{Dataset: "d", Name: "t"}},
		{ref: "p.d.t", expected: Table{Project: "p", Dataset: "d", Name: "t"}},
		{ref: "p:d.t", expected: Table{Project: "p", Dataset: "d", Name: "t"}},
		{ref: "[p:d.t]", expected: Table{Project: "p", Dataset: "d", Name: "t"}},
		{ref: "`p.d.t`", expected: Table{Project: "p", Dataset: "d", Name: "t"}},
		{ref: "", wantErr: true},
		{ref: "a..b", wantErr: true},
		{ref: "a.b.c.d", wantErr: true},
		{ref: "p:t", wantErr: true},
		{ref: "p:a.b.c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := ParseTable(tt.ref, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTableString(t *testing.T) {
	assert.Equal(t, "p.d.t", Table{Project: "p", Dataset: "d", Name: "t"}.String())
	assert.Equal(t, "t", Table{Name: "t"}.String())
}

func TestTableOf(t *testing.T) {
	tbl := TableOf[*BlogPost](dialect.NewPostgresDialect())
	got, err := tbl.RenderSQL(nil)
	require.NoError(t, err)
	assert.Equal(t, `"blog_posts"`, got)
}

// =========================================================================
// Columns
// =========================================================================

func TestColumnsRender(t *testing.T) {
	got, err := Substitute("SELECT $cols FROM t", Env{"cols": Cols("id", "u.name AS n", "*")})
	require.NoError(t, err)
	assert.Equal(t, "SELECT `id`, `u`.`name` AS `n`, * FROM t", got)

	pg := Columns{Names: []string{"a"}, Dialect: dialect.NewPostgresDialect()}
	got, err = pg.RenderSQL(nil)
	require.NoError(t, err)
	assert.Equal(t, `"a"`, got)

	_, err = Cols().RenderSQL(nil)
	assert.Error(t, err)
	_, err = Cols(" ").RenderSQL(nil)
	assert.Error(t, err)
}

// =========================================================================
// Flags
// =========================================================================

func TestFlagsFromDependencies(t *testing.T) {
	text := "SELECT * FROM t WHERE a = $a AND b = $b AND c = $c AND d = $d"
	fs := Flags("sql", text, nil)

	for _, name := range []string{"a", "b", "c", "d"} {
		assert.NotNil(t, fs.Lookup(name), "flag %s", name)
	}

	require.NoError(t, fs.Parse([]string{"--a=5", "--b", "x y", "--c=true"}))
	env := EnvFromFlags(fs)

	assert.Equal(t, Env{"a": int64(5), "b": "x y", "c": true}, env)

	_, err := Substitute(text, env)
	assert.ErrorIs(t, err, ErrMissingVariable)
}

func TestFlagsIncludeSubqueryPlaceholders(t *testing.T) {
	text := "SELECT * FROM $s"
	env := Env{"s": NewQuery("SELECT d FROM t WHERE day = $day")}
	fs := Flags("sql", text, env)

	require.NotNil(t, fs.Lookup("day"))
	require.NoError(t, fs.Parse([]string{"--day=2024-01-01"}))
	for k, v := range EnvFromFlags(fs) {
		env[k] = v
	}

	got, err := Substitute(text, env)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM (SELECT d FROM t WHERE day = "2024-01-01")`, got)
}

func TestFlagsRejectUnknown(t *testing.T) {
	fs := Flags("sql", "$a", nil)
	fs.SetOutput(discard{})
	err := fs.Parse([]string{"--zzz=1"})
	assert.Error(t, err)
}

func TestParseLiteral(t *testing.T) {
	assert.Equal(t, int64(-4), ParseLiteral("-4"))
	assert.Equal(t, 2.5, ParseLiteral("2.5"))
	assert.Equal(t, false, ParseLiteral("FALSE"))
	assert.Equal(t, "t", ParseLiteral("t"))
	assert.Equal(t, "", ParseLiteral(""))
	assert.Equal(t, 1000.0, ParseLiteral("1e3"))
	assert.Equal(t, 0.5, ParseLiteral(".5"))
	assert.Equal(t, -3.0, ParseLiteral("-3."))

	for _, s := range []string{"inf", "+Inf", "Infinity", "NaN", "nan", "0x1p4", "1e999", "1_000", "."} {
		assert.Equal(t, s, ParseLiteral(s), "%q must stay text", s)
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
