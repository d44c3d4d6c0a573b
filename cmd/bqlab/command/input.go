package command

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Konsultn-Engineering/bqlab/query"
)

// readInput returns the name and contents of the file in args, or of
// stdin when args is empty or "-".
func (app *App) readInput(args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(app.stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return "stdin", string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", err
	}
	return args[0], string(b), nil
}

// splitAtDash separates positional arguments from the template arguments
// that follow "--".
func splitAtDash(cmd *cobra.Command, args []string) ([]string, []string) {
	if i := cmd.ArgsLenAtDash(); i >= 0 {
		return args[:i], args[i:]
	}
	return args, nil
}

// envFlags collects template values given on the command line.
type envFlags struct {
	vars       []string
	subqueries []string
	tables     []string
}

func (e *envFlags) register(fs *pflag.FlagSet) {
	fs.StringArrayVar(&e.vars, "var", nil, "template value as name=value (repeatable)")
	fs.StringArrayVar(&e.subqueries, "subquery", nil, "sub-query from a file as name=path (repeatable)")
	fs.StringArrayVar(&e.tables, "table", nil, "table reference as name=[project.]dataset.table (repeatable)")
}

// build returns the environment for text. Values after "--" are parsed
// with one flag per placeholder, including those of --subquery files, and
// win over --var.
func (e *envFlags) build(app *App, name, text string, templateArgs []string) (query.Env, error) {
	d, err := app.dialect()
	if err != nil {
		return nil, err
	}
	env := query.Env{}

	for _, kv := range e.vars {
		k, v, err := splitPair("--var", kv)
		if err != nil {
			return nil, err
		}
		env[k] = query.ParseLiteral(v)
	}
	for _, kv := range e.subqueries {
		k, path, err := splitPair("--subquery", kv)
		if err != nil {
			return nil, err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		env[k] = query.NewQuery(strings.TrimSpace(string(b)))
	}
	for _, kv := range e.tables {
		k, ref, err := splitPair("--table", kv)
		if err != nil {
			return nil, err
		}
		tbl, err := query.ParseTable(ref, d)
		if err != nil {
			return nil, err
		}
		env[k] = tbl
	}

	if len(templateArgs) > 0 {
		fs := query.Flags(name, text, env)
		fs.SetOutput(app.stderr)
		if err := fs.Parse(templateArgs); err != nil {
			return nil, err
		}
		for k, v := range query.EnvFromFlags(fs) {
			env[k] = v
		}
	}
	return env, nil
}

func splitPair(flag, kv string) (string, string, error) {
	k, v, ok := strings.Cut(kv, "=")
	if !ok || k == "" {
		return "", "", fmt.Errorf("%s %q: want name=value", flag, kv)
	}
	return k, v, nil
}
