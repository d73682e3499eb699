// Package storage provides listing persistence backends.
package storage

import (
	"context"
	"time"

	"github.com/boardwatch/doski-crawler/internal/scraper"
)

// Stats summarizes what a store holds.
type Stats struct {
	TotalListings int64     `json:"total_listings"`
	LastParsedAt  time.Time `json:"last_parsed_at"`
}

// Store persists listings and answers aggregate queries. Saving an
// already-stored listing ID is a no-op, re-crawls do not duplicate.
type Store interface {
	SaveListing(ctx context.Context, listing scraper.Listing) error
	TotalCount(ctx context.Context) (int64, error)
	Statistics(ctx context.Context) (Stats, error)
	Close()
}
