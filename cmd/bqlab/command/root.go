// Package command implements the bqlab command line.
package command

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/api/googleapi"

	"github.com/Konsultn-Engineering/bqlab/config"
	"github.com/Konsultn-Engineering/bqlab/dialect"
	"github.com/Konsultn-Engineering/bqlab/paging"
	"github.com/Konsultn-Engineering/bqlab/query"
)

// App is the state shared by all subcommands of one invocation.
type App struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
}

// NewRootCommand creates the bqlab command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&App{v: config.New(), stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr})
}

func newRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "bqlab",
		Short: "Inspect, template and page through BigQuery, Cloud Storage and Postgres",
		Long: `bqlab works with SQL templates that use $name placeholders.

Get started with:
  bqlab tokenize query.sql          # Split a statement into tokens
  bqlab deps query.sql              # List the placeholders a template needs
  bqlab render query.sql -- --day=2024-01-01
  bqlab ls datasets                 # Page through datasets of --project

Settings are read from flags, BQLAB_* environment variables and the
file given by --config, in that order of priority.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return app.init(cmd)
		},
	}
	root.SetIn(app.stdin)
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&app.configFile, "config", "", "config file (yaml, json or toml)")
	pf.String("project", "", "Google Cloud project")
	pf.String("dialect", "", fmt.Sprintf("SQL dialect for identifiers (%v)", dialect.Names()))
	pf.Int("page-size", 0, "items requested per page")
	pf.Int("template-cache-size", 0, "compiled templates kept in memory")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("log-format", "", "text or json")
	pf.Int("max-retries", 0, "retries for a failed page fetch")

	root.AddCommand(
		newTokenizeCommand(app),
		newDepsCommand(app),
		newRenderCommand(app),
		newRunCommand(app),
		newLsCommand(app),
	)
	return root
}

func (app *App) init(cmd *cobra.Command) error {
	if err := config.BindFlags(app.v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(app.v, app.configFile)
	if err != nil {
		return err
	}
	app.cfg = cfg

	logger, err := newLogger(cfg.Log, app.stderr, newSessionID())
	if err != nil {
		return err
	}
	app.logger = logger
	slog.SetDefault(logger)

	if err := query.SetCacheSize(cfg.TemplateCacheSize); err != nil {
		return err
	}
	logger.Debug("command started", "command", cmd.CommandPath(), "dialect", cfg.Dialect, "project", cfg.Project)
	return nil
}

func (app *App) dialect() (dialect.Dialect, error) {
	return dialect.Lookup(app.cfg.Dialect)
}

// retryOptions retries rate limiting and server errors from Google APIs.
func (app *App) retryOptions() paging.RetryOptions {
	return paging.RetryOptions{
		MaxRetries: app.cfg.Retry.MaxRetries,
		BaseDelay:  app.cfg.Retry.BaseDelay,
		MaxDelay:   app.cfg.Retry.MaxDelay,
		Retryable:  isTransient,
		Logger:     app.logger,
	}
}

func isTransient(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= http.StatusInternalServerError
	}
	return false
}
