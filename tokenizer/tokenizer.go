package tokenizer

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenizer splits SQL-like text into lexical chunks: comments, whitespace
// runs, identifiers, digit runs, quoted strings and single characters.
//
// Concatenating every token returned by Next reproduces the input exactly.
// Malformed input is never rejected: an unterminated comment or string
// simply runs to the end of the text.
type Tokenizer struct {
	input string
	pos   int
}

// New returns a Tokenizer positioned at the start of input.
func New(input string) *Tokenizer {
	return &Tokenizer{input: input}
}

// Next returns the next token, or "" and false once the input is exhausted.
func (t *Tokenizer) Next() (string, bool) {
	if t.pos >= len(t.input) {
		return "", false
	}
	n := scan(t.input[t.pos:])
	tok := t.input[t.pos : t.pos+n]
	t.pos += n
	return tok, true
}

// More reports whether another call to Next will yield a token.
func (t *Tokenizer) More() bool {
	return t.pos < len(t.input)
}

// Offset returns the byte offset of the next token.
func (t *Tokenizer) Offset() int {
	return t.pos
}

// Tokenize returns every token of input in order.
func Tokenize(input string) []string {
	tokens := make([]string, 0, len(input)/4+1)
	for tok := range All(input) {
		tokens = append(tokens, tok)
	}
	return tokens
}

// All returns a sequence over the tokens of input. Each range over the
// sequence scans input afresh.
func All(input string) iter.Seq[string] {
	return func(yield func(string) bool) {
		t := New(input)
		for {
			tok, ok := t.Next()
			if !ok || !yield(tok) {
				return
			}
		}
	}
}

// scan returns the byte length of the token at the start of s, which must
// be non-empty. Rules are tried in priority order.
func scan(s string) int {
	switch {
	case strings.HasPrefix(s, "/*"):
		if i := strings.Index(s[2:], "*/"); i >= 0 {
			return i + 4
		}
		return len(s)
	case strings.HasPrefix(s, "--"):
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			return i + 1
		}
		return len(s)
	}

	r, size := utf8.DecodeRuneInString(s)
	switch {
	case unicode.IsSpace(r):
		return size + span(s[size:], unicode.IsSpace)
	case isIdentStart(r):
		// '$' only opens an identifier, it never continues one.
		return size + span(s[size:], isIdentPart)
	case isDigit(r):
		return size + span(s[size:], isDigit)
	case r == '\'' || r == '"':
		return scanString(s, byte(r))
	}
	return size
}

// scanString scans a quoted literal opened by quote. A backslash consumes
// the byte after it, so an escaped quote does not close the literal.
func scanString(s string, quote byte) int {
	for i := 1; i < len(s); {
		switch s[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1
		default:
			i++
		}
	}
	return len(s)
}

// span returns the byte length of the longest prefix of s whose runes all
// satisfy pred.
func span(s string, pred func(rune) bool) int {
	for i, r := range s {
		if !pred(r) {
			return i
		}
	}
	return len(s)
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
