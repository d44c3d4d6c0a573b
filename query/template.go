package query

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Konsultn-Engineering/bqlab/cache"
)

// DefaultCacheSize is the number of compiled templates kept by Substitute
// and Dependencies.
const DefaultCacheSize = 256

var templates = mustTextCache(DefaultCacheSize)

func mustTextCache(size int) *cache.TextCache[*Template] {
	c, err := cache.NewTextCache[*Template](size)
	if err != nil {
		panic(err)
	}
	return c
}

// SetCacheSize changes how many compiled templates are retained.
func SetCacheSize(size int) error {
	if err := templates.Resize(size); err != nil {
		return err
	}
	slog.Debug("template cache resized", "size", size)
	return nil
}

type segmentKind uint8

const (
	segmentText segmentKind = iota
	segmentEscape
	segmentVariable
)

type segment struct {
	kind segmentKind
	text string // literal text, or the variable name
}

// Template is text split into literal runs, "$$" escapes and "$name"
// placeholders. A Template is immutable and safe for concurrent use.
type Template struct {
	text     string
	segments []segment
	deps     []string
}

// Compile splits text into segments. It never fails: a '$' that starts
// neither an escape nor a name is kept as literal text.
func Compile(text string) *Template {
	t := &Template{text: text}
	seen := make(map[string]struct{})

	for i := 0; i < len(text); {
		if text[i] != '$' {
			j := strings.IndexByte(text[i:], '$')
			if j < 0 {
				j = len(text) - i
			}
			t.segments = append(t.segments, segment{kind: segmentText, text: text[i : i+j]})
			i += j
			continue
		}

		if i+1 < len(text) && text[i+1] == '$' {
			t.segments = append(t.segments, segment{kind: segmentEscape, text: "$"})
			i += 2
			continue
		}

		j := i + 1
		for j < len(text) && isNameByte(text[j]) {
			j++
		}
		if j == i+1 {
			t.segments = append(t.segments, segment{kind: segmentText, text: "$"})
			i++
			continue
		}

		name := text[i+1 : j]
		t.segments = append(t.segments, segment{kind: segmentVariable, text: name})
		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			t.deps = append(t.deps, name)
		}
		i = j
	}
	return t
}

// Text returns the source the template was compiled from.
func (t *Template) Text() string {
	return t.text
}

// Dependencies returns the distinct placeholder names in order of first
// occurrence. Escapes are not reported.
func (t *Template) Dependencies() []string {
	if len(t.deps) == 0 {
		return nil
	}
	out := make([]string, len(t.deps))
	copy(out, t.deps)
	return out
}

// Substitute replaces placeholders left to right in a single pass. Rendered
// values are not rescanned; only a Renderable may resolve placeholders of
// its own, against the same env. A sub-query that needs itself, directly or
// through other sub-queries, fails with a *CyclicReferenceError.
func (t *Template) Substitute(env Env) (string, error) {
	return t.substitute(env, nil)
}

// substitute expands t while the sub-queries bound to the names in stack
// are being rendered.
func (t *Template) substitute(env Env, stack []string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(t.text))

	for _, seg := range t.segments {
		if seg.kind != segmentVariable {
			sb.WriteString(seg.text)
			continue
		}
		v, ok := env[seg.text]
		if !ok {
			return "", &MissingVariableError{Name: seg.text, Text: t.text}
		}

		var (
			s   string
			err error
		)
		if q, ok := v.(*Query); ok && q != nil {
			if i := slices.Index(stack, seg.text); i >= 0 {
				cycle := append(slices.Clone(stack[i:]), seg.text)
				return "", &CyclicReferenceError{Cycle: cycle}
			}
			s, err = q.render(env, append(stack, seg.text))
		} else {
			s, err = RenderValue(v, env)
		}
		if err != nil {
			return "", fmt.Errorf("render $%s: %w", seg.text, err)
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

// Dependencies returns the placeholder names referenced by text.
func Dependencies(text string) []string {
	return templates.GetOrCompute(text, Compile).Dependencies()
}

// Dependent is implemented by values with placeholders of their own, such
// as *Query.
type Dependent interface {
	Dependencies() []string
}

// AllDependencies returns the placeholders text needs once the values in
// env are bound: every name of text, each followed by the names needed by
// a Dependent bound to it, in order of first occurrence. Cycles are walked
// once.
func AllDependencies(text string, env Env) []string {
	var (
		out  []string
		seen = make(map[string]struct{})
	)
	var walk func(deps []string)
	walk = func(deps []string) {
		for _, name := range deps {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
			if d, ok := env[name].(Dependent); ok && d != nil {
				walk(d.Dependencies())
			}
		}
	}
	walk(Dependencies(text))
	return out
}

// Substitute expands the placeholders of text against env.
func Substitute(text string, env Env) (string, error) {
	return templates.GetOrCompute(text, Compile).Substitute(env)
}

func isNameByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
