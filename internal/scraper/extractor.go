package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// maxDescriptionLen caps generic-item descriptions.
const maxDescriptionLen = 200

// Extractor turns raw listing-page HTML into normalized Listing
// records. The board's table-row markup is tried first; when it yields
// nothing the generic-item cascade takes over. Extraction is pure, the
// same HTML always produces the same records.
type Extractor struct {
	base      *url.URL
	selectors SelectorSet
	clock     Clock
	logger    *zap.Logger
}

// NewExtractor builds an extractor resolving relative links against
// baseURL.
func NewExtractor(baseURL string, selectors SelectorSet, clock Clock, logger *zap.Logger) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Extractor{base: base, selectors: selectors, clock: clock, logger: logger}, nil
}

// Extract parses the document and returns every valid listing found.
func (e *Extractor) Extract(htmlContent string) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	listings := e.extractRows(doc)
	if len(listings) == 0 {
		listings = e.extractItems(doc)
	}
	e.logger.Debug("Extracted listings", zap.Int("count", len(listings)))
	return listings, nil
}

// extractRows implements the table-row strategy: each listing is a
// <tr> in <table class="ml"> carrying an <a class="sbj"> title link.
func (e *Extractor) extractRows(doc *goquery.Document) []Listing {
	var listings []Listing
	doc.Find(e.selectors.ListingRow).Each(func(_ int, row *goquery.Selection) {
		anchor := row.Find(e.selectors.ListingTitle).First()
		if anchor.Length() == 0 {
			return // header or spacer row
		}
		title := cleanText(anchor.Text())
		if title == "" {
			return
		}

		absURL := ""
		if href, ok := anchor.Attr("href"); ok {
			absURL = resolveURL(e.base, href)
		}

		listings = append(listings, Listing{
			ID:          deriveListingID(absURL, title),
			Title:       title,
			URL:         absURL,
			Price:       cleanText(row.Find(e.selectors.ListingPrice).First().Text()),
			Description: textAfterLineBreak(anchor),
			ParsedAt:    e.clock.Now(),
		})
	})
	return listings
}

// extractItems is the generic fallback for markup without the board's
// table layout.
func (e *Extractor) extractItems(doc *goquery.Document) []Listing {
	var listings []Listing
	doc.Find(e.selectors.ItemContainer).Each(func(_ int, item *goquery.Selection) {
		if listing, ok := e.parseItem(item); ok {
			listings = append(listings, listing)
		}
	})
	return listings
}

func (e *Extractor) parseItem(item *goquery.Selection) (Listing, bool) {
	listing := Listing{ParsedAt: e.clock.Now()}

	listing.Title = firstCascadeText(item, e.selectors.TitleCascade)
	if listing.Title == "" {
		return Listing{}, false
	}

	if link := item.Find("a[href]").First(); link.Length() > 0 {
		href, _ := link.Attr("href")
		if abs := resolveURL(e.base, href); isValidURL(abs) {
			listing.URL = abs
		}
	}

	listing.Price = firstCascadeText(item, e.selectors.PriceCascade)
	listing.Location = firstCascadeText(item, e.selectors.LocationCascade)
	listing.Description = truncateRunes(firstCascadeText(item, e.selectors.DescriptionCascade), maxDescriptionLen)

	seen := make(map[string]struct{})
	item.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		abs := resolveURL(e.base, src)
		if !isValidURL(abs) {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		listing.Images = append(listing.Images, abs)
	})

	listing.ID = deriveListingID(listing.URL, listing.Title)
	return listing, true
}

// firstCascadeText returns the text of the first selector in the
// cascade that matches a non-empty element.
func firstCascadeText(s *goquery.Selection, cascade []string) string {
	for _, selector := range cascade {
		if text := cleanText(s.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// textAfterLineBreak returns the text node immediately following the
// first <br> after the anchor, in document order. The board renders
// the listing description that way.
func textAfterLineBreak(anchor *goquery.Selection) string {
	if anchor.Length() == 0 {
		return ""
	}
	br := nextElement(anchor.Get(0), "br")
	if br == nil {
		return ""
	}
	if sib := br.NextSibling; sib != nil && sib.Type == html.TextNode {
		return strings.TrimSpace(sib.Data)
	}
	return ""
}

// nextElement finds the next element with the given tag after start in
// document order, descending into start's own subtree first.
func nextElement(start *html.Node, tag string) *html.Node {
	for n := nextNode(start); n != nil; n = nextNode(n) {
		if n.Type == html.ElementNode && n.Data == tag {
			return n
		}
	}
	return nil
}

func nextNode(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}
