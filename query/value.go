package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Env maps placeholder names (case-sensitive, without '$') to values.
type Env map[string]any

// Renderable is implemented by values that know how to appear inside a SQL
// statement: sub-queries, table references, column lists. Substitution hands
// the full Env to RenderSQL so the fragment can resolve its own placeholders.
type Renderable interface {
	RenderSQL(env Env) (string, error)
}

// RenderValue returns the SQL text substituted for v. Renderables render
// themselves. Text, including named string types, is double-quoted with
// embedded quotes escaped as \". Other fmt.Stringer values use String and
// everything else uses its literal form.
func RenderValue(v any, env Env) (string, error) {
	switch val := v.(type) {
	case Renderable:
		return val.RenderSQL(env)
	case string:
		return quote(val), nil
	case nil:
		return "NULL", nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(val).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(val).Uint(), 10), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	}

	// Named string types are text even when they have a String method.
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return quote(rv.String()), nil
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String(), nil
	}
	return fmt.Sprint(v), nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
