package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/boardwatch/doski-crawler/internal/metrics"
)

// FetcherConfig tunes the resilient fetcher.
type FetcherConfig struct {
	UserAgent     string
	Timeout       time.Duration
	RotateProxies bool
}

// ResilientFetcher retrieves pages under the politeness policy, retrying
// transport faults across the proxy pool and falling back to a direct
// connection once the pool is exhausted. Exactly one terminal
// notification is emitted per failed fetch regardless of how many
// attempts were made.
type ResilientFetcher struct {
	cfg        FetcherConfig
	robots     RobotsPolicy
	politeness *Politeness
	rotator    *ProxyRotator
	notifier   Notifier
	logger     *zap.Logger

	// attempt performs one network attempt; tests swap it out.
	attempt func(ctx context.Context, rawURL string) (Page, error)
}

// NewResilientFetcher wires a fetcher over the given collaborators.
func NewResilientFetcher(cfg FetcherConfig, robots RobotsPolicy, politeness *Politeness, rotator *ProxyRotator, notifier Notifier, logger *zap.Logger) *ResilientFetcher {
	f := &ResilientFetcher{
		cfg:        cfg,
		robots:     robots,
		politeness: politeness,
		rotator:    rotator,
		notifier:   notifier,
		logger:     logger,
	}
	f.attempt = f.collyAttempt
	return f
}

// Fetch implements Fetcher. The attempt budget equals the proxy pool
// size (minimum one). Transport faults rotate the pool and retry;
// request faults fail fast. After the pool is exhausted one direct
// attempt is made if a proxy was active, and the previous proxy is
// restored when that attempt also fails.
func (f *ResilientFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	if !f.robots.Allowed(rawURL) {
		f.logger.Warn("Robots.txt disallows URL", zap.String("url", rawURL))
		return Page{}, ErrPolicyDenied
	}
	if err := f.politeness.Wait(ctx); err != nil {
		return Page{}, err
	}

	maxAttempts := f.rotator.Size()
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		start := time.Now()
		page, err := f.attempt(ctx, rawURL)
		if err == nil {
			metrics.ObserveFetch(rawURL, "success", time.Since(start))
			f.logger.Debug("Fetched page",
				zap.String("url", rawURL),
				zap.Int("status", page.StatusCode),
				zap.Int("bytes", len(page.Body)))
			return page, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Page{}, err
		}
		if !isTransportFault(err) {
			metrics.ObserveFetch(rawURL, "request_fault", time.Since(start))
			f.logger.Error("Error fetching page", zap.String("url", rawURL), zap.Error(err))
			break
		}
		metrics.ObserveFetch(rawURL, "transport_fault", time.Since(start))
		f.logger.Warn("Proxy error", zap.String("url", rawURL), zap.Error(err))
		if !f.cfg.RotateProxies || !f.rotator.Rotate() {
			break
		}
		metrics.ObserveProxyRotation()
		f.logger.Info("Retrying with next proxy",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts))
	}

	if f.rotator.Active() != "" {
		f.logger.Warn("All proxies failed, trying direct connection", zap.String("url", rawURL))
		prev := f.rotator.Suspend()
		start := time.Now()
		page, err := f.attempt(ctx, rawURL)
		if err == nil {
			metrics.ObserveFetch(rawURL, "direct_fallback", time.Since(start))
			f.logger.Info("Direct fetch succeeded", zap.String("url", rawURL))
			return page, nil
		}
		f.logger.Error("Error fetching without proxy", zap.String("url", rawURL), zap.Error(err))
		f.rotator.Restore(prev)
		lastErr = err
	}

	metrics.ObserveFetch(rawURL, "exhausted", 0)
	f.notifier.Send(fmt.Sprintf("❌ Error fetching %s: connection failed", rawURL))
	if lastErr != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
	}
	return Page{}, ErrUnavailable
}

// collyAttempt performs a single fetch through the rotator's current
// transport. A fresh collector per attempt keeps proxy changes from
// leaking between requests.
func (f *ResilientFetcher) collyAttempt(ctx context.Context, rawURL string) (Page, error) {
	c := colly.NewCollector(colly.UserAgent(f.cfg.UserAgent))
	c.AllowURLRevisit = true
	c.SetRequestTimeout(f.cfg.Timeout)
	c.WithTransport(f.rotator.Transport())

	var page Page
	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		page = Page{
			URL:        rawURL,
			FinalURL:   r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = classifyFetchError(rawURL, status, err)
	})

	if err := c.Visit(rawURL); err != nil && fetchErr == nil {
		fetchErr = classifyFetchError(rawURL, 0, err)
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if fetchErr != nil {
		return Page{}, fetchErr
	}
	if page.StatusCode == 0 {
		return Page{}, &RequestError{URL: rawURL, Err: errors.New("no response received")}
	}
	return page, nil
}
