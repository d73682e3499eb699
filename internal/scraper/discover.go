package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	// maxCategories caps how many categories a session visits.
	maxCategories = 5
	// minDiscovered is the threshold below which discovery falls back
	// to the curated list.
	minDiscovered = 3

	minLinkTextRunes = 3
	maxLinkTextRunes = 49
)

// excludedHrefFragments mark navigation links that are never categories.
var excludedHrefFragments = []string{
	"mailto:", "tel:", "javascript:", "#", "login", "register", "search",
}

// fallbackCategories is the curated list used when the home page yields
// too few links, deepest-traffic sections of the board first.
var fallbackCategories = []Category{
	{Name: "Недвижимость - Квартиры продажа", URL: "/cat-nedvizhimost/zhilaya/kvartiry/prodam/"},
	{Name: "Недвижимость - Квартиры аренда", URL: "/cat-nedvizhimost/zhilaya/kvartiry/sdau/"},
	{Name: "Транспорт - Легковые авто", URL: "/cat-transport/legkovye-avtomobili/prodam/"},
	{Name: "Недвижимость - Дома продажа", URL: "/cat-nedvizhimost/zhilaya/doma-dachi/prodam/"},
	{Name: "Детские товары", URL: "/cat-detskiy-mir/detskaya-odezhda-obuv/detskaya-odezhda/prodam/"},
	{Name: "Животные - Собаки", URL: "/cat-zhivotnye-i-rasteniya/sobaki/podaru/"},
	{Name: "Одежда женская", URL: "/cat-lichnye-veschi/odezhda/platya-bluzki-ubki/"},
	{Name: "Работа - Вакансии", URL: "/cat-rabota/vakansii/"},
}

// Discoverer finds category links on the site's home page by running
// a selector cascade from most to least specific, deduplicating by
// absolute URL with first occurrence winning.
type Discoverer struct {
	base    *url.URL
	fetcher Fetcher
	cascade []string
	logger  *zap.Logger
}

// NewDiscoverer builds a discoverer over the given fetcher.
func NewDiscoverer(baseURL string, fetcher Fetcher, selectors SelectorSet, logger *zap.Logger) (*Discoverer, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Discoverer{base: base, fetcher: fetcher, cascade: selectors.CategoryCascade, logger: logger}, nil
}

// Discover fetches the home page and returns at most maxCategories
// category links. Fewer than minDiscovered hits switch it to the
// curated fallback. A home-page fetch failure returns an empty list,
// it never fails the session.
func (d *Discoverer) Discover(ctx context.Context) []Category {
	d.logger.Info("Parsing main page for categories", zap.String("url", d.base.String()))

	page, err := d.fetcher.Fetch(ctx, d.base.String())
	if err != nil {
		d.logger.Error("Main page fetch failed", zap.Error(err))
		return nil
	}
	d.logger.Info("Main page fetched",
		zap.Int("status", page.StatusCode),
		zap.Int("html_length", len(page.Body)))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		d.logger.Error("Main page parse failed", zap.Error(err))
		return nil
	}

	seen := make(map[string]struct{})
	var categories []Category
	for _, selector := range d.cascade {
		links := doc.Find(selector)
		d.logger.Debug("Selector matched links", zap.String("selector", selector), zap.Int("count", links.Length()))
		links.Each(func(_ int, link *goquery.Selection) {
			category, ok := d.categoryFromLink(link, selector)
			if !ok {
				return
			}
			if _, dup := seen[category.URL]; dup {
				return
			}
			seen[category.URL] = struct{}{}
			categories = append(categories, category)
		})
	}
	d.logger.Info("Discovered unique categories", zap.Int("count", len(categories)))

	if len(categories) < minDiscovered {
		d.logger.Warn("Too few categories discovered, using fallback list", zap.Int("found", len(categories)))
		return d.fallback()
	}
	if len(categories) > maxCategories {
		categories = categories[:maxCategories]
	}
	d.logger.Info("Using discovered categories", zap.Int("count", len(categories)))
	return categories
}

func (d *Discoverer) categoryFromLink(link *goquery.Selection, selector string) (Category, bool) {
	href, ok := link.Attr("href")
	if !ok || href == "" {
		return Category{}, false
	}
	text := cleanText(link.Text())
	if n := utf8.RuneCountInString(text); n < minLinkTextRunes || n > maxLinkTextRunes {
		return Category{}, false
	}
	lowered := strings.ToLower(href)
	for _, fragment := range excludedHrefFragments {
		if strings.Contains(lowered, fragment) {
			return Category{}, false
		}
	}
	abs := resolveURL(d.base, href)
	if !isValidURL(abs) {
		return Category{}, false
	}
	return Category{Name: text, URL: abs, FoundBy: selector}, true
}

func (d *Discoverer) fallback() []Category {
	out := make([]Category, 0, maxCategories)
	for _, fc := range fallbackCategories {
		if len(out) == maxCategories {
			break
		}
		out = append(out, Category{
			Name:    fc.Name,
			URL:     strings.TrimRight(d.base.String(), "/") + fc.URL,
			FoundBy: "fallback",
		})
	}
	d.logger.Info("Using fallback categories", zap.Int("count", len(out)))
	return out
}
