package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Konsultn-Engineering/bqlab/query"
	"github.com/Konsultn-Engineering/bqlab/tokenizer"
)

func newTokenizeCommand(app *App) *cobra.Command {
	var (
		skipTrivia bool
		functions  bool
	)
	cmd := &cobra.Command{
		Use:   "tokenize [file]",
		Short: "Print the tokens of a SQL statement, one per line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, text, err := app.readInput(args)
			if err != nil {
				return err
			}
			if functions {
				for _, name := range tokenizer.FunctionCalls(text) {
					fmt.Fprintln(app.stdout, name)
				}
				return nil
			}
			for tok := range tokenizer.All(text) {
				if skipTrivia && tokenizer.IsTrivia(tok) {
					continue
				}
				fmt.Fprintln(app.stdout, strconv.Quote(tok))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipTrivia, "skip-trivia", false, "omit whitespace and comment tokens")
	cmd.Flags().BoolVar(&functions, "functions", false, "print the names of called functions instead")
	return cmd
}

func newDepsCommand(app *App) *cobra.Command {
	var ef envFlags
	cmd := &cobra.Command{
		Use:   "deps [file]",
		Short: "List the placeholders a template needs, in order of first use",
		Long: `List the placeholders a template needs, in order of first use.

Placeholders of sub-queries given with --subquery are listed after the
name they are bound to.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, text, err := app.readInput(args)
			if err != nil {
				return err
			}
			env, err := ef.build(app, name, text, nil)
			if err != nil {
				return err
			}
			for _, dep := range query.AllDependencies(text, env) {
				fmt.Fprintln(app.stdout, dep)
			}
			return nil
		},
	}
	ef.register(cmd.Flags())
	return cmd
}

func newRenderCommand(app *App) *cobra.Command {
	var ef envFlags
	cmd := &cobra.Command{
		Use:   "render [file] [-- --name=value ...]",
		Short: "Substitute placeholders and print the resulting SQL",
		Long: `Substitute placeholders and print the resulting SQL.

Every placeholder of the template is also accepted as a flag after "--":

  bqlab render daily.sql --table src=raw.events -- --day=2024-01-01 --limit=10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			positional, templateArgs := splitAtDash(cmd, args)
			if len(positional) > 1 {
				return fmt.Errorf("render takes at most one file, got %d", len(positional))
			}
			name, text, err := app.readInput(positional)
			if err != nil {
				return err
			}
			env, err := ef.build(app, name, text, templateArgs)
			if err != nil {
				return err
			}
			sql, err := query.Substitute(text, env)
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, strings.TrimRight(sql, "\n"))
			return nil
		},
	}
	ef.register(cmd.Flags())
	return cmd
}
