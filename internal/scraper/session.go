package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/boardwatch/doski-crawler/internal/metrics"
)

// SessionConfig tunes one full parse session.
type SessionConfig struct {
	MaxCategories int
	CategoryDelay time.Duration
	DebugDump     bool
	DebugDumpDir  string
}

// Summary reports what a session accomplished.
type Summary struct {
	SessionID        string        `json:"session_id"`
	CategoriesFound  int           `json:"categories_found"`
	CategoriesParsed int           `json:"categories_parsed"`
	TotalListings    int           `json:"total_listings"`
	TotalStored      int64         `json:"total_stored"`
	Duration         time.Duration `json:"duration"`
}

// Session runs the full crawl pipeline: discover categories, fetch and
// extract each one, persist and announce the results. A failure inside
// one category is reported and the session moves on to the next; only
// context cancellation stops the loop.
type Session struct {
	cfg        SessionConfig
	discoverer *Discoverer
	fetcher    Fetcher
	renderer   Renderer
	extractor  *Extractor
	store      ListingStore
	notifier   Notifier
	clock      Clock
	logger     *zap.Logger
	id         string

	// pause is swapped out in tests to avoid real sleeps.
	pause func(ctx context.Context, d time.Duration)
}

// NewSession assembles a session. renderer may be nil, in which case
// category pages come from the plain fetcher.
func NewSession(cfg SessionConfig, discoverer *Discoverer, fetcher Fetcher, renderer Renderer, extractor *Extractor, store ListingStore, notifier Notifier, clock Clock, logger *zap.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		cfg:        cfg,
		discoverer: discoverer,
		fetcher:    fetcher,
		renderer:   renderer,
		extractor:  extractor,
		store:      store,
		notifier:   notifier,
		clock:      clock,
		logger:     logger.With(zap.String("session_id", id)),
		id:         id,
		pause:      pauseFor,
	}
}

// Run executes the session and returns its summary. The error is
// non-nil only on context cancellation; category-level failures are
// absorbed into the summary.
func (s *Session) Run(ctx context.Context) (Summary, error) {
	start := s.clock.Now()
	s.logger.Info("Starting full parse session")
	s.notifier.Send(fmt.Sprintf("🚀 Starting full parse session at %s", start.Format("2006-01-02 15:04:05")))

	categories := s.discoverer.Discover(ctx)
	s.notifier.Send(fmt.Sprintf("📂 Found %d categories", len(categories)))

	limit := s.cfg.MaxCategories
	if limit <= 0 || limit > len(categories) {
		limit = len(categories)
	}

	summary := Summary{SessionID: s.id, CategoriesFound: len(categories)}
	for i, category := range categories[:limit] {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		count, err := s.parseCategory(ctx, category)
		if err != nil {
			metrics.ObserveCategory("failed")
			s.logger.Error("Error parsing category",
				zap.String("category", category.Name),
				zap.String("url", category.URL),
				zap.Error(err))
			s.notifier.Send(fmt.Sprintf("❌ Error parsing category %s: %v", category.Name, err))
		} else {
			metrics.ObserveCategory("parsed")
			summary.TotalListings += count
			summary.CategoriesParsed++
		}
		if i < limit-1 {
			s.pause(ctx, s.cfg.CategoryDelay)
		}
	}

	if total, err := s.store.TotalCount(ctx); err == nil {
		summary.TotalStored = total
	} else {
		s.logger.Warn("Stored total unavailable", zap.Error(err))
	}
	summary.Duration = s.clock.Now().Sub(start)

	s.notifier.Send(fmt.Sprintf(
		"✅ Parse session completed!\n📊 Categories parsed: %d/%d\n📝 Total listings found: %d\n💾 Total stored: %d\n⏱️ Duration: %.1f seconds",
		summary.CategoriesParsed, len(categories), summary.TotalListings, summary.TotalStored, summary.Duration.Seconds()))
	s.logger.Info("Parse session completed",
		zap.Int("categories_parsed", summary.CategoriesParsed),
		zap.Int("total_listings", summary.TotalListings),
		zap.Int64("total_stored", summary.TotalStored),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

func (s *Session) parseCategory(ctx context.Context, category Category) (int, error) {
	s.logger.Info("Parsing category", zap.String("url", category.URL))
	s.notifier.Send(fmt.Sprintf("🔍 Starting to parse: %s", category.URL))

	htmlContent, err := s.categoryHTML(ctx, category.URL)
	if err != nil {
		return 0, err
	}
	s.dumpDebugHTML(category, htmlContent)

	listings, err := s.extractor.Extract(htmlContent)
	if err != nil {
		return 0, err
	}
	metrics.ObserveListings(category.URL, len(listings))

	for _, listing := range listings {
		if err := s.store.SaveListing(ctx, listing); err != nil {
			return 0, fmt.Errorf("save listing %s: %w", listing.ID, err)
		}
	}
	for _, listing := range listings {
		s.notifier.SendHTML(FormatListingHTML(listing))
	}

	total, err := s.store.TotalCount(ctx)
	if err != nil {
		s.logger.Warn("Stored total unavailable", zap.Error(err))
	}
	s.logger.Info("Found listings in category",
		zap.Int("count", len(listings)),
		zap.String("url", category.URL))
	s.notifier.Send(fmt.Sprintf("✅ Parsed %d listings from category\n📊 Total stored: %d", len(listings), total))
	return len(listings), nil
}

// categoryHTML obtains the category page, rendered when a renderer is
// configured.
func (s *Session) categoryHTML(ctx context.Context, rawURL string) (string, error) {
	if s.renderer != nil {
		htmlContent, err := s.renderer.Render(ctx, rawURL)
		if err != nil {
			metrics.ObserveRender("failure")
			return "", err
		}
		metrics.ObserveRender("success")
		return htmlContent, nil
	}
	page, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return string(page.Body), nil
}

// dumpDebugHTML writes the raw category HTML to disk for offline
// selector debugging. Failures are logged, never fatal.
func (s *Session) dumpDebugHTML(category Category, htmlContent string) {
	if !s.cfg.DebugDump {
		return
	}
	if err := os.MkdirAll(s.cfg.DebugDumpDir, 0o750); err != nil {
		s.logger.Error("Error creating debug dump dir", zap.Error(err))
		return
	}
	name := fmt.Sprintf("category_%s.html", hashID(category.URL))
	path := filepath.Join(s.cfg.DebugDumpDir, name)
	if err := os.WriteFile(path, []byte(htmlContent), 0o600); err != nil {
		s.logger.Error("Error saving debug HTML", zap.Error(err))
		return
	}
	s.logger.Info("Debug HTML saved", zap.String("path", path), zap.Int("size", len(htmlContent)))
}

// pauseFor sleeps for d unless the context ends first.
func pauseFor(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
