package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// RobotsGate enforces the site's robots.txt, loaded once at startup.
// Loading is best-effort: a fetch or parse failure is logged and the
// gate permits everything afterwards.
type RobotsGate struct {
	group     *robotstxt.Group
	userAgent string
	logger    *zap.Logger
}

// NewRobotsGate fetches and parses <baseURL>/robots.txt. When respect
// is false the returned policy allows every URL.
func NewRobotsGate(ctx context.Context, respect bool, baseURL, userAgent string, logger *zap.Logger) RobotsPolicy {
	if !respect {
		return &allowAllPolicy{}
	}
	gate := &RobotsGate{userAgent: userAgent, logger: logger}
	group, err := loadRobotsGroup(ctx, baseURL, userAgent)
	if err != nil {
		logger.Warn("Could not load robots.txt; permitting all URLs", zap.String("base_url", baseURL), zap.Error(err))
		return gate
	}
	gate.group = group
	return gate
}

// Allowed implements RobotsPolicy.
func (g *RobotsGate) Allowed(rawURL string) bool {
	if g == nil || g.group == nil {
		return true
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return g.group.Test(parsed.Path)
}

func loadRobotsGroup(ctx context.Context, baseURL, userAgent string) (*robotstxt.Group, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	robotsURL := *parsed
	robotsURL.Path = path.Join("/", "robots.txt")
	robotsURL.RawQuery = ""
	robotsURL.Fragment = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new robots request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read robots body: %w", err)
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots: %w", err)
	}
	group := data.FindGroup(userAgent)
	if group == nil {
		group = data.FindGroup("*")
	}
	return group, nil
}

type allowAllPolicy struct{}

func (a *allowAllPolicy) Allowed(string) bool { return true }
