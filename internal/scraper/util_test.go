package scraper

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveListingID(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		title  string
		want   string
	}{
		{"segment with extension", "https://www.doski.ru/msk/prodam-divan-12345.html", "t", "prodam-divan-12345"},
		{"trailing slash", "https://www.doski.ru/cat-rabota/vakansii/", "t", "vakansii"},
		{"no url falls back to title hash", "", "Продам диван", hashID("Продам диван")},
		{"root path falls back to title hash", "https://www.doski.ru/", "Продам диван", hashID("Продам диван")},
		{"nothing to derive from", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, deriveListingID(tt.rawURL, tt.title))
		})
	}
}

func TestHashIDIsStableAndShort(t *testing.T) {
	require.Equal(t, hashID("Продам диван"), hashID("Продам диван"))
	require.Len(t, hashID("anything"), 10)
	require.NotEqual(t, hashID("a"), hashID("b"))
}

func TestIsValidURL(t *testing.T) {
	require.True(t, isValidURL("https://www.doski.ru/cat-rabota/"))
	require.True(t, isValidURL("http://example.com"))
	require.False(t, isValidURL("/relative/path"))
	require.False(t, isValidURL("javascript:void(0)"))
	require.False(t, isValidURL("mailto:x@example.com"))
	require.False(t, isValidURL("://broken"))
}

func TestResolveURL(t *testing.T) {
	base, err := url.Parse("https://www.doski.ru")
	require.NoError(t, err)
	require.Equal(t, "https://www.doski.ru/cat-a/", resolveURL(base, "/cat-a/"))
	require.Equal(t, "https://other.example/x", resolveURL(base, "https://other.example/x"))
	require.Equal(t, "https://www.doski.ru/cat-b/", resolveURL(base, "  /cat-b/  "))
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "Продам диван", cleanText("  Продам \n\t диван  "))
	require.Empty(t, cleanText("   "))
}

func TestTruncateRunes(t *testing.T) {
	require.Equal(t, "Прод", truncateRunes("Продам", 4))
	require.Equal(t, "Продам", truncateRunes("Продам", 10))
}
