package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingVariable matches every *MissingVariableError under errors.Is.
var ErrMissingVariable = errors.New("missing variable")

// MissingVariableError reports a placeholder with no entry in the Env.
type MissingVariableError struct {
	Name string // placeholder name without the leading '$'
	Text string // text being substituted
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("no value for $%s in %q", e.Name, e.Text)
}

func (e *MissingVariableError) Is(target error) bool {
	return target == ErrMissingVariable
}

// ErrCyclicReference matches every *CyclicReferenceError under errors.Is.
var ErrCyclicReference = errors.New("cyclic reference")

// CyclicReferenceError reports a sub-query that, directly or through other
// sub-queries, needs itself to render.
type CyclicReferenceError struct {
	Cycle []string // placeholder names, first and last are the same
}

func (e *CyclicReferenceError) Error() string {
	return "cyclic reference $" + strings.Join(e.Cycle, " -> $")
}

func (e *CyclicReferenceError) Is(target error) bool {
	return target == ErrCyclicReference
}
