package scraper

import (
	"context"
	"time"
)

// Listing is one normalized classified-ad record extracted from a page.
// Listings are immutable after creation; ownership transfers to the
// store on save.
type Listing struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Price       string    `json:"price"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	Images      []string  `json:"images,omitempty"`
	ParsedAt    time.Time `json:"parsed_at"`
}

// Category is a discovered section link grouping listings on the site.
// FoundBy records which selector produced it, for diagnostics.
type Category struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	FoundBy string `json:"found_by"`
}

// Page is the result of a successful fetch.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
}

// Fetcher retrieves a page over plain HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// Renderer retrieves fully-rendered HTML via a headless browser.
type Renderer interface {
	Render(ctx context.Context, rawURL string) (string, error)
}

// RobotsPolicy answers whether a URL may be fetched.
type RobotsPolicy interface {
	Allowed(rawURL string) bool
}

// ListingStore is the persistence collaborator consumed by the pipeline.
type ListingStore interface {
	SaveListing(ctx context.Context, listing Listing) error
	TotalCount(ctx context.Context) (int64, error)
}

// Notifier is the notification collaborator. Sends are fire-and-forget;
// the pipeline never blocks on delivery.
type Notifier interface {
	Send(text string)
	SendHTML(text string)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
