package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boardwatch/doski-crawler/internal/clock/system"
	"github.com/boardwatch/doski-crawler/internal/scraper"
)

// newCrawlCmd creates and configures the 'crawl' subcommand, which runs
// one full parse session over the configured site.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Runs a full parse session",
		Long: `Discovers category pages on the configured classifieds site, fetches
each one (through headless Chrome when rendering is enabled), extracts
listings, persists them, and announces progress through the configured
notification sinks.`,

		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, err := buildSession(ctx, appInstance)
	if err != nil {
		return err
	}

	summary, err := session.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("Parse session interrupted")
			return nil
		}
		return fmt.Errorf("run session: %w", err)
	}

	logger.Info("Crawl command finished",
		zap.Int("categories_found", summary.CategoriesFound),
		zap.Int("categories_parsed", summary.CategoriesParsed),
		zap.Int("total_listings", summary.TotalListings),
		zap.Int64("total_stored", summary.TotalStored),
		zap.Duration("duration", summary.Duration))
	return nil
}

// buildSession assembles the crawl pipeline from the app services and
// configuration.
func buildSession(ctx context.Context, appInstance App) (*scraper.Session, error) {
	cfg := appInstance.Config()
	logger := appInstance.Logger()

	robots := scraper.NewRobotsGate(ctx, cfg.Crawler.RespectRobots, cfg.Site.BaseURL, cfg.Crawler.UserAgent, logger)
	politeness := scraper.NewPoliteness(cfg.Crawler.FetchDelay)
	rotator := scraper.NewProxyRotator(scraper.ProxySettings{
		Enabled: cfg.Proxy.Enabled,
		List:    cfg.Proxy.List,
		HTTP:    cfg.Proxy.HTTP,
		HTTPS:   cfg.Proxy.HTTPS,
		SOCKS:   cfg.Proxy.SOCKS,
		Rotate:  cfg.Proxy.Rotate,
	}, logger)
	fetcher := scraper.NewResilientFetcher(scraper.FetcherConfig{
		UserAgent:     cfg.Crawler.UserAgent,
		Timeout:       cfg.Crawler.Timeout,
		RotateProxies: cfg.Proxy.Rotate,
	}, robots, politeness, rotator, appInstance.Notifier(), logger)

	var renderer scraper.Renderer
	if cfg.Render.Enabled {
		renderer = scraper.NewChromedpRenderer(cfg.Crawler.UserAgent, cfg.Render.Timeout, cfg.Render.SettleDelay, logger)
	}

	clock := system.New()
	selectors := scraper.DefaultSelectorSet()
	extractor, err := scraper.NewExtractor(cfg.Site.BaseURL, selectors, clock, logger)
	if err != nil {
		return nil, fmt.Errorf("init extractor: %w", err)
	}
	discoverer, err := scraper.NewDiscoverer(cfg.Site.BaseURL, fetcher, selectors, logger)
	if err != nil {
		return nil, fmt.Errorf("init discoverer: %w", err)
	}

	return scraper.NewSession(scraper.SessionConfig{
		MaxCategories: cfg.Crawler.MaxCategoriesPerSession,
		CategoryDelay: cfg.Crawler.CategoryDelay,
		DebugDump:     cfg.Crawler.DebugDump,
		DebugDumpDir:  cfg.Crawler.DebugDumpDir,
	}, discoverer, fetcher, renderer, extractor, appInstance.Store(), appInstance.Notifier(), clock, logger), nil
}
