package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"eurostat/internal/config"
	"eurostat/internal/dashboard"
	"eurostat/internal/logging"
)

type rootOptions struct {
	source   string
	profile  string
	logLevel string
	interval time.Duration
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "eurostat",
		Short:         "Render Eurostat indicators for EU member states",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupWriter(os.Stderr, opts.logLevel, "text")
		},
	}

	defaultSource := os.Getenv("DATA_SOURCE")
	if defaultSource == "" {
		defaultSource = "./media/eurostat.json"
	}
	root.PersistentFlags().StringVar(&opts.source, "data", defaultSource, "dataset file or http(s) URL")
	root.PersistentFlags().StringVar(&opts.profile, "profile", os.Getenv("CHART_PROFILE"), "YAML chart profile")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn or error")

	root.AddCommand(
		newTableCmd(opts),
		newLineCmd(opts),
		newBubbleCmd(opts),
		newAnimateCmd(opts),
		newExportCmd(opts),
		newSnapshotCmd(opts),
	)
	return root
}

// load builds a dashboard and loads the dataset synchronously.
func (o *rootOptions) load(ctx context.Context) (*dashboard.Dashboard, error) {
	profile, err := config.LoadBubbleProfile(o.profile)
	if err != nil {
		return nil, err
	}
	dash := dashboard.New(dashboard.Options{
		Source:   o.source,
		Interval: o.interval,
		Profile:  profile,
	})
	if err := dash.Reload(ctx); err != nil {
		return nil, err
	}
	return dash, nil
}
