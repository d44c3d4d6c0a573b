package naming

import (
	"strings"
	"unicode"

	pluralizer "github.com/gertd/go-pluralize"
)

// pluralizeClient is shared so irregular-word rules are built once.
var pluralizeClient = pluralizer.NewClient()

// acronyms map whole names to their snake_case form.
var acronyms = map[string]string{
	"ID":     "id",
	"UUID":   "uuid",
	"URL":    "url",
	"HTTP":   "http",
	"API":    "api",
	"JSON":   "json",
	"SQL":    "sql",
	"UDF":    "udf",
	"OAuth":  "o_auth",
	"OAuth2": "o_auth2",
}

// TableName converts a Go type name to a plural snake_case table name:
// BlogPost -> blog_posts, Person -> people.
func TableName(typeName string) string {
	return Pluralize(SnakeCase(typeName))
}

// SnakeCase converts CamelCase, PascalCase and acronym runs to snake_case.
func SnakeCase(name string) string {
	if name == "" {
		return ""
	}
	if s, ok := acronyms[name]; ok {
		return s
	}

	// Already snake_case.
	if strings.Contains(name, "_") && !hasUpperCase(name) {
		return name
	}

	var result strings.Builder
	result.Grow(len(name) + 8)

	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			// aB -> a_b, a1B -> a1_b, ABc -> a_bc
			if unicode.IsLower(prev) || unicode.IsDigit(prev) ||
				(unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])) {
				result.WriteByte('_')
			}
		}
		result.WriteRune(unicode.ToLower(r))
	}
	return result.String()
}

// Pluralize pluralizes the last word of a snake_case name.
func Pluralize(name string) string {
	if name == "" {
		return ""
	}
	head, last := "", name
	if i := strings.LastIndexByte(name, '_'); i >= 0 {
		head, last = name[:i+1], name[i+1:]
	}
	if last == "" {
		return name
	}
	return head + pluralizeClient.Plural(last)
}

func hasUpperCase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
