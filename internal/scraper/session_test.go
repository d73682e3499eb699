package scraper

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sessionHomeHTML = `<html><body>
<a href="/cat-odin/">Первая категория</a>
<a href="/cat-dva/">Вторая категория</a>
<a href="/cat-tri/">Третья категория</a>
</body></html>`

func listingPageHTML(id, title string) string {
	return `<html><body><table class="ml"><tr>
<td><a class="sbj" href="/msk/` + id + `.html">` + title + `</a><br>описание</td>
<td align="right"><b>100 руб.</b></td>
</tr></table></body></html>`
}

func newTestSession(t *testing.T, renderer Renderer, store ListingStore, notifier Notifier) *Session {
	t.Helper()
	fetcher := &stubFetcher{pages: map[string]Page{
		"https://www.doski.ru": {StatusCode: 200, Body: []byte(sessionHomeHTML)},
	}}
	discoverer := newTestDiscoverer(t, fetcher)
	extractor := newTestExtractor(t)
	s := NewSession(
		SessionConfig{MaxCategories: 5, CategoryDelay: time.Second},
		discoverer, fetcher, renderer, extractor, store, notifier, testClock(), zap.NewNop(),
	)
	s.pause = func(context.Context, time.Duration) {}
	return s
}

func TestSessionRunHappyPath(t *testing.T) {
	renderer := &stubRenderer{html: map[string]string{
		"https://www.doski.ru/cat-odin/": listingPageHTML("divan-1", "Диван"),
		"https://www.doski.ru/cat-dva/":  listingPageHTML("stol-2", "Стол"),
		"https://www.doski.ru/cat-tri/":  listingPageHTML("shkaf-3", "Шкаф"),
	}}
	store := newMemoryListingStore()
	notifier := &recordingNotifier{}
	s := newTestSession(t, renderer, store, notifier)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, summary.CategoriesFound)
	require.Equal(t, 3, summary.CategoriesParsed)
	require.Equal(t, 3, summary.TotalListings)
	require.Equal(t, int64(3), summary.TotalStored)
	require.NotEmpty(t, summary.SessionID)

	sent := notifier.sent()
	require.NotEmpty(t, sent)
	require.Contains(t, sent[0], "🚀 Starting full parse session")
	require.Contains(t, sent[1], "📂 Found 3 categories")
	require.Contains(t, sent[len(sent)-1], "✅ Parse session completed!")

	// One formatted Telegram message per extracted listing.
	html := notifier.sentHTML()
	require.Len(t, html, 3)
	require.True(t, strings.HasPrefix(html[0], "<b>Диван</b>"))
}

func TestSessionCategoryFailureDoesNotAbort(t *testing.T) {
	renderer := &stubRenderer{
		html: map[string]string{
			"https://www.doski.ru/cat-odin/": listingPageHTML("divan-1", "Диван"),
			"https://www.doski.ru/cat-tri/":  listingPageHTML("shkaf-3", "Шкаф"),
		},
		errs: map[string]error{
			"https://www.doski.ru/cat-dva/": &RenderError{URL: "https://www.doski.ru/cat-dva/", Err: errors.New("timeout")},
		},
	}
	store := newMemoryListingStore()
	notifier := &recordingNotifier{}
	s := newTestSession(t, renderer, store, notifier)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, summary.CategoriesParsed)
	require.Equal(t, 2, summary.TotalListings)

	var failureNotes int
	for _, msg := range notifier.sent() {
		if strings.Contains(msg, "❌ Error parsing category Вторая категория") {
			failureNotes++
		}
	}
	require.Equal(t, 1, failureNotes)
}

func TestSessionHonorsMaxCategories(t *testing.T) {
	renderer := &stubRenderer{html: map[string]string{
		"https://www.doski.ru/cat-odin/": listingPageHTML("divan-1", "Диван"),
		"https://www.doski.ru/cat-dva/":  listingPageHTML("stol-2", "Стол"),
		"https://www.doski.ru/cat-tri/":  listingPageHTML("shkaf-3", "Шкаф"),
	}}
	store := newMemoryListingStore()
	notifier := &recordingNotifier{}
	s := newTestSession(t, renderer, store, notifier)
	s.cfg.MaxCategories = 1

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, summary.CategoriesFound)
	require.Equal(t, 1, summary.CategoriesParsed)
	require.Equal(t, 1, summary.TotalListings)
}

func TestSessionSaveFailureCountsCategoryAsFailed(t *testing.T) {
	renderer := &stubRenderer{html: map[string]string{
		"https://www.doski.ru/cat-odin/": listingPageHTML("divan-1", "Диван"),
		"https://www.doski.ru/cat-dva/":  listingPageHTML("stol-2", "Стол"),
		"https://www.doski.ru/cat-tri/":  listingPageHTML("shkaf-3", "Шкаф"),
	}}
	store := newMemoryListingStore()
	store.saveErr = errors.New("db down")
	notifier := &recordingNotifier{}
	s := newTestSession(t, renderer, store, notifier)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, summary.CategoriesParsed)
	// Failed saves never reach Telegram.
	require.Empty(t, notifier.sentHTML())
}

func TestSessionWithoutRendererUsesFetcher(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]Page{
		"https://www.doski.ru":           {StatusCode: 200, Body: []byte(sessionHomeHTML)},
		"https://www.doski.ru/cat-odin/": {StatusCode: 200, Body: []byte(listingPageHTML("divan-1", "Диван"))},
		"https://www.doski.ru/cat-dva/":  {StatusCode: 200, Body: []byte(listingPageHTML("stol-2", "Стол"))},
		"https://www.doski.ru/cat-tri/":  {StatusCode: 200, Body: []byte(listingPageHTML("shkaf-3", "Шкаф"))},
	}}
	discoverer := newTestDiscoverer(t, fetcher)
	extractor := newTestExtractor(t)
	store := newMemoryListingStore()
	notifier := &recordingNotifier{}
	s := NewSession(
		SessionConfig{MaxCategories: 5},
		discoverer, fetcher, nil, extractor, store, notifier, testClock(), zap.NewNop(),
	)
	s.pause = func(context.Context, time.Duration) {}

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, summary.CategoriesParsed)
	require.Equal(t, int64(3), summary.TotalStored)
}

func TestSessionCancelledContextStopsLoop(t *testing.T) {
	renderer := &stubRenderer{html: map[string]string{}}
	store := newMemoryListingStore()
	notifier := &recordingNotifier{}
	s := newTestSession(t, renderer, store, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
