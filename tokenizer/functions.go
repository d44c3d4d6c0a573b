package tokenizer

import "strings"

// keywords that are commonly followed by a parenthesis but are not calls.
var keywords = map[string]struct{}{
	"AND": {}, "AS": {}, "BY": {}, "EXISTS": {}, "FROM": {}, "IN": {},
	"INTO": {}, "JOIN": {}, "NOT": {}, "ON": {}, "OR": {}, "OVER": {},
	"SELECT": {}, "USING": {}, "VALUES": {}, "WHERE": {}, "WITH": {},
}

// FunctionCalls returns the distinct names of identifiers that are followed
// by an opening parenthesis, in order of first occurrence. Whitespace and
// comments between the name and the parenthesis are skipped; placeholders
// and SQL keywords are never reported.
func FunctionCalls(input string) []string {
	var (
		names   []string
		seen    = make(map[string]struct{})
		pending string
	)
	for tok := range All(input) {
		switch {
		case tok == "(":
			if pending != "" {
				if _, dup := seen[pending]; !dup {
					seen[pending] = struct{}{}
					names = append(names, pending)
				}
			}
			pending = ""
		case IsTrivia(tok):
			// keep pending across whitespace and comments
		case isCallable(tok):
			pending = tok
		default:
			pending = ""
		}
	}
	return names
}

// IsTrivia reports whether tok is whitespace or a comment.
func IsTrivia(tok string) bool {
	if strings.HasPrefix(tok, "/*") || strings.HasPrefix(tok, "--") {
		return true
	}
	return strings.TrimSpace(tok) == ""
}

func isCallable(tok string) bool {
	if tok == "" || tok[0] == '$' {
		return false
	}
	for i, r := range tok {
		if i == 0 && !isIdentStart(r) {
			return false
		}
		if i > 0 && !isIdentPart(r) {
			return false
		}
	}
	_, reserved := keywords[strings.ToUpper(tok)]
	return !reserved
}
