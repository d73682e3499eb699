package scraper

import (
	"context"
	"sync"
	"time"
)

// Shared test doubles for the scraper package.

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testClock() fixedClock {
	return fixedClock{t: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)}
}

type recordingNotifier struct {
	mu   sync.Mutex
	text []string
	html []string
}

func (n *recordingNotifier) Send(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.text = append(n.text, text)
}

func (n *recordingNotifier) SendHTML(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.html = append(n.html, text)
}

func (n *recordingNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.text...)
}

func (n *recordingNotifier) sentHTML() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.html...)
}

type stubFetcher struct {
	pages map[string]Page
	err   error
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string) (Page, error) {
	if f.err != nil {
		return Page{}, f.err
	}
	page, ok := f.pages[rawURL]
	if !ok {
		return Page{}, &RequestError{URL: rawURL, StatusCode: 404}
	}
	return page, nil
}

type stubRenderer struct {
	html map[string]string
	errs map[string]error
}

func (r *stubRenderer) Render(_ context.Context, rawURL string) (string, error) {
	if err, ok := r.errs[rawURL]; ok {
		return "", err
	}
	return r.html[rawURL], nil
}

type memoryListingStore struct {
	mu       sync.Mutex
	listings map[string]Listing
	saveErr  error
}

func newMemoryListingStore() *memoryListingStore {
	return &memoryListingStore{listings: make(map[string]Listing)}
}

func (s *memoryListingStore) SaveListing(_ context.Context, listing Listing) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[listing.ID] = listing
	return nil
}

func (s *memoryListingStore) TotalCount(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.listings)), nil
}
