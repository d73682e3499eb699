package storage

import (
	"context"
	"sync"
	"time"

	"github.com/boardwatch/doski-crawler/internal/scraper"
)

// MemoryStore keeps listings in process memory. It backs runs without
// a database and the test suite.
type MemoryStore struct {
	mu       sync.RWMutex
	listings map[string]scraper.Listing
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{listings: make(map[string]scraper.Listing)}
}

// SaveListing stores the listing unless its ID is already present.
func (s *MemoryStore) SaveListing(_ context.Context, listing scraper.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[listing.ID]; ok {
		return nil
	}
	s.listings[listing.ID] = listing
	return nil
}

// TotalCount returns the number of stored listings.
func (s *MemoryStore) TotalCount(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.listings)), nil
}

// Statistics returns aggregate counters over the stored listings.
func (s *MemoryStore) Statistics(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := Stats{TotalListings: int64(len(s.listings))}
	var last time.Time
	for _, l := range s.listings {
		if l.ParsedAt.After(last) {
			last = l.ParsedAt
		}
	}
	stats.LastParsedAt = last
	return stats, nil
}

// Close implements Store.
func (s *MemoryStore) Close() {}
