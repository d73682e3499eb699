package scraper

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ChromedpRenderer loads pages in headless Chrome so script-built
// markup is present in the returned document. Each Render spins up a
// fresh browser and tears it down before returning, success or failure.
type ChromedpRenderer struct {
	userAgent   string
	timeout     time.Duration
	settleDelay time.Duration
	logger      *zap.Logger
}

// NewChromedpRenderer builds a renderer with the given page-load budget
// and post-navigation settle delay.
func NewChromedpRenderer(userAgent string, timeout, settleDelay time.Duration, logger *zap.Logger) *ChromedpRenderer {
	return &ChromedpRenderer{
		userAgent:   userAgent,
		timeout:     timeout,
		settleDelay: settleDelay,
		logger:      logger,
	}
}

// Render implements Renderer. Failures, including the page-load
// timeout, come back as a *RenderError.
func (r *ChromedpRenderer) Render(ctx context.Context, rawURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.UserAgent(r.userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	taskCtx, cancelTask := context.WithTimeout(browserCtx, r.timeout)
	defer cancelTask()

	r.logger.Debug("Rendering page", zap.String("url", rawURL))
	var html string
	err := chromedp.Run(taskCtx,
		emulation.SetUserAgentOverride(r.userAgent),
		chromedp.Navigate(rawURL),
		chromedp.Sleep(r.settleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", &RenderError{URL: rawURL, Err: err}
	}
	r.logger.Debug("Rendered page", zap.String("url", rawURL), zap.Int("bytes", len(html)))
	return html, nil
}
