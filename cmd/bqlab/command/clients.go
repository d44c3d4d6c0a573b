package command

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/spf13/pflag"
	"google.golang.org/api/option"

	"github.com/Konsultn-Engineering/bqlab/paging"
)

// cloudFlags are the connection settings for Google API clients.
type cloudFlags struct {
	credentialsFile string
	endpoint        string
	noAuth          bool
	limit           int
}

func (c *cloudFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&c.credentialsFile, "credentials-file", "", "service account key file (default: application default credentials)")
	fs.StringVar(&c.endpoint, "endpoint", "", "API endpoint override, for emulators")
	fs.BoolVar(&c.noAuth, "no-auth", false, "send no credentials, for emulators")
	fs.IntVar(&c.limit, "limit", 0, "stop after this many items (0 means all)")
}

func (c *cloudFlags) options() []option.ClientOption {
	opts := []option.ClientOption{option.WithUserAgent("bqlab")}
	if c.credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(c.credentialsFile))
	}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	if c.noAuth {
		opts = append(opts, option.WithoutAuthentication())
	}
	return opts
}

func (app *App) bigqueryClient(ctx context.Context, c *cloudFlags) (*bigquery.Client, error) {
	project := app.cfg.Project
	if project == "" {
		project = bigquery.DetectProjectID
	}
	client, err := bigquery.NewClient(ctx, project, c.options()...)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	return client, nil
}

func (app *App) storageClient(ctx context.Context, c *cloudFlags) (*storage.Client, error) {
	client, err := storage.NewClient(ctx, c.options()...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return client, nil
}

// drain walks a listing through a retrying iterator and hands each item to
// emit, stopping after limit items when limit is positive.
func drain[T any](ctx context.Context, app *App, name string, fetch paging.FetchFunc[T], limit int, emit func(T) error) error {
	it := paging.New(
		paging.WithRetry(fetch, app.retryOptions()),
		paging.WithLogger(app.logger),
		paging.WithName(name),
	)
	n := 0
	for item, err := range it.All(ctx) {
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := emit(item); err != nil {
			return err
		}
		n++
		if limit > 0 && n >= limit {
			break
		}
	}
	app.logger.Info("listing finished", "listing", name, "items", n)
	return nil
}

func (app *App) printJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(app.stdout, string(b))
	return err
}
