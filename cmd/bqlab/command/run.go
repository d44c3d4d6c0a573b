package command

import (
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/spf13/cobra"

	"github.com/Konsultn-Engineering/bqlab/dialect"
	bqsource "github.com/Konsultn-Engineering/bqlab/sources/bigquery"
)

func newRunCommand(app *App) *cobra.Command {
	var (
		ef envFlags
		cf cloudFlags
	)
	cmd := &cobra.Command{
		Use:   "run [file] [-- --name=value ...]",
		Short: "Render a template, run it on BigQuery and print result rows as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			positional, templateArgs := splitAtDash(cmd, args)
			if len(positional) > 1 {
				return fmt.Errorf("run takes at most one file, got %d", len(positional))
			}
			name, text, err := app.readInput(positional)
			if err != nil {
				return err
			}
			env, err := ef.build(app, name, text, templateArgs)
			if err != nil {
				return err
			}

			client, err := app.bigqueryClient(ctx, &cf)
			if err != nil {
				return err
			}
			defer client.Close()

			d, err := app.dialect()
			if err != nil {
				return err
			}
			legacy := d.Name() == dialect.NewLegacyBigQueryDialect().Name()
			q, err := bqsource.NewQuery(client, text, env, legacy)
			if err != nil {
				return err
			}
			return drain(ctx, app, "rows", bqsource.Rows(client, q, app.cfg.PageSize), cf.limit, func(row []bigquery.Value) error {
				return app.printJSON(row)
			})
		},
	}
	ef.register(cmd.Flags())
	cf.register(cmd.Flags())
	return cmd
}
