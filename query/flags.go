package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Flags returns a flag set declaring one string flag per placeholder in
// text, so a statement's variables can be supplied as command arguments
// before their values are known. Placeholders of sub-queries already bound
// in env get flags too; env may be nil.
func Flags(name, text string, env Env) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	for _, dep := range AllDependencies(text, env) {
		fs.String(dep, "", "value for $"+dep)
	}
	return fs
}

// EnvFromFlags builds an Env from the flags that were set on fs. Values
// parse as int64, float64 or bool where possible and stay strings otherwise.
// Unset flags are left out so substitution reports them as missing.
func EnvFromFlags(fs *pflag.FlagSet) Env {
	env := make(Env)
	fs.Visit(func(f *pflag.Flag) {
		env[f.Name] = ParseLiteral(f.Value.String())
	})
	return env
}

var decimal = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseLiteral types a command-line value. Only plain decimal notation
// counts as a number: "inf", "NaN" and hex floats stay strings.
func ParseLiteral(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if decimal.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	switch {
	case strings.EqualFold(s, "true"):
		return true
	case strings.EqualFold(s, "false"):
		return false
	}
	return s
}
