// Package cmd holds the stocks CLI commands.
package cmd

import (
	"github.com/spf13/cobra"

	"stocksearch/internal/app"
	"stocksearch/internal/config"
	"stocksearch/internal/logger"
)

type options struct {
	cfgFile string
	verbose bool
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "stocks",
		Short:        "Search stock tickers and show recent prices",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default config.json or config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(newSearchCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// setup loads config and logging the same way the server does. Logs go to
// stderr in console format so stdout stays clean for tables.
func setup(cmd *cobra.Command, opts *options) (*app.App, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return nil, err
	}
	lc := app.LoggerConfig(cfg, "")
	lc.Format = "pretty"
	lc.Level = "warn"
	if opts.verbose {
		lc.Level = "debug"
	}
	lg, err := logger.New(lc, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return app.New(cfg, lg), nil
}
