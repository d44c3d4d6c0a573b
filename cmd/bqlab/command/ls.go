package command

import (
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/spf13/cobra"

	"github.com/Konsultn-Engineering/bqlab/connector"
	"github.com/Konsultn-Engineering/bqlab/dialect"
	pgprovider "github.com/Konsultn-Engineering/bqlab/providers/postgres"
	"github.com/Konsultn-Engineering/bqlab/query"
	bqsource "github.com/Konsultn-Engineering/bqlab/sources/bigquery"
	"github.com/Konsultn-Engineering/bqlab/sources/gcs"
	pgsource "github.com/Konsultn-Engineering/bqlab/sources/postgres"
)

func newLsCommand(app *App) *cobra.Command {
	var cf cloudFlags
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "Page through datasets, tables, buckets, objects or Postgres rows",
	}
	cf.register(cmd.PersistentFlags())

	cmd.AddCommand(
		newLsDatasetsCommand(app, &cf),
		newLsTablesCommand(app, &cf),
		newLsBucketsCommand(app, &cf),
		newLsObjectsCommand(app, &cf),
		newLsPostgresCommand(app, &cf),
	)
	return cmd
}

func newLsDatasetsCommand(app *App, cf *cloudFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List the datasets of --project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := app.bigqueryClient(ctx, cf)
			if err != nil {
				return err
			}
			defer client.Close()

			fetch := bqsource.Datasets(client, app.cfg.Project, app.cfg.PageSize)
			return drain(ctx, app, "datasets", fetch, cf.limit, func(d *bigquery.Dataset) error {
				_, err := fmt.Fprintf(app.stdout, "%s.%s\n", d.ProjectID, d.DatasetID)
				return err
			})
		},
	}
}

func newLsTablesCommand(app *App, cf *cloudFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tables <[project.]dataset>",
		Short: "List the tables of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := app.bigqueryClient(ctx, cf)
			if err != nil {
				return err
			}
			defer client.Close()

			ds := client.Dataset(args[0])
			if project, dataset, ok := strings.Cut(args[0], "."); ok {
				ds = client.DatasetInProject(project, dataset)
			}
			fetch := bqsource.Tables(ds, app.cfg.PageSize)
			return drain(ctx, app, "tables", fetch, cf.limit, func(t *bigquery.Table) error {
				_, err := fmt.Fprintf(app.stdout, "%s.%s.%s\n", t.ProjectID, t.DatasetID, t.TableID)
				return err
			})
		},
	}
}

func newLsBucketsCommand(app *App, cf *cloudFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "buckets",
		Short: "List the Cloud Storage buckets of --project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := app.storageClient(ctx, cf)
			if err != nil {
				return err
			}
			defer client.Close()

			fetch := gcs.Buckets(client, app.cfg.Project, app.cfg.PageSize)
			return drain(ctx, app, "buckets", fetch, cf.limit, func(b *storage.BucketAttrs) error {
				_, err := fmt.Fprintf(app.stdout, "gs://%s\t%s\t%s\n", b.Name, b.Location, b.StorageClass)
				return err
			})
		},
	}
}

func newLsObjectsCommand(app *App, cf *cloudFlags) *cobra.Command {
	var prefix, delimiter string
	cmd := &cobra.Command{
		Use:   "objects <bucket>",
		Short: "List the objects of a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := app.storageClient(ctx, cf)
			if err != nil {
				return err
			}
			defer client.Close()

			bucket := strings.TrimPrefix(args[0], "gs://")
			fetch := gcs.Objects(client.Bucket(bucket), prefix, delimiter, app.cfg.PageSize)
			return drain(ctx, app, "objects", fetch, cf.limit, func(o *storage.ObjectAttrs) error {
				if o.Prefix != "" {
					_, err := fmt.Fprintf(app.stdout, "gs://%s/%s\n", bucket, o.Prefix)
					return err
				}
				_, err := fmt.Fprintf(app.stdout, "gs://%s/%s\t%d\t%s\n", bucket, o.Name, o.Size, o.Updated.Format("2006-01-02T15:04:05Z07:00"))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only list objects whose names start with this")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "collapse names past this delimiter into prefixes, usually /")
	return cmd
}

func newLsPostgresCommand(app *App, cf *cloudFlags) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "pg <[schema.]table>",
		Short: "Page through a Postgres table in key order, printing JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			table, err := query.ParseTable(args[0], dialect.NewPostgresDialect())
			if err != nil {
				return err
			}

			c, err := connector.New(pgprovider.Name, app.cfg.Postgres)
			if err != nil {
				return err
			}
			conn, err := c.ConnectWithRetry(ctx, connector.RetryOptions{
				MaxRetries: app.cfg.Retry.MaxRetries,
				BaseDelay:  app.cfg.Retry.BaseDelay,
				MaxDelay:   app.cfg.Retry.MaxDelay,
			})
			if err != nil {
				return err
			}
			defer conn.Close()

			fetch := pgsource.Scan(conn.Database(), table, key, app.cfg.PageSize)
			err = drain(ctx, app, "pg", fetch, cf.limit, func(r pgsource.Row) error {
				return app.printJSON(r)
			})
			stats := conn.Stats()
			app.logger.Debug("pool stats", "open", stats.OpenConnections, "in_use", stats.InUse, "idle", stats.Idle)
			return err
		},
	}
	cmd.Flags().StringVar(&key, "key", "id", "unique column to order and page by")
	return cmd
}
