// Package cmd defines and implements the CLI commands for the
// doski-crawler executable.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boardwatch/doski-crawler/internal/app"
	"github.com/boardwatch/doski-crawler/internal/config"
	"github.com/boardwatch/doski-crawler/internal/notify"
	"github.com/boardwatch/doski-crawler/internal/storage"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App is the application surface commands depend on. Keeping it an
// interface lets tests inject a stub app.
type App interface {
	Close()
	Config() config.Config
	Logger() *zap.Logger
	Store() storage.Store
	Notifier() *notify.Hub
}

// newApp is the application factory. It is a variable so tests can
// replace it with a stub factory.
var newApp = func(ctx context.Context, cfg config.Config) (App, error) {
	return app.New(ctx, cfg)
}

// newRootCmd creates and configures the root command. Configuration is
// loaded and the application container is built before any subcommand
// runs, and torn down afterwards.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doski-crawler",
		Short: "A resilient classifieds crawler for doski.ru.",
		Long: `doski-crawler walks the doski.ru classifieds board: it discovers
category pages, fetches them politely through an optional rotating
proxy pool, extracts listings, and reports results to Telegram and
PostgreSQL.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			appInstance, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; env vars prefixed DOSKI_ also apply)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newStatsCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "doski-crawler: %v\n", err)
		os.Exit(1)
	}
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return appInstance, nil
}
