package scraper

import (
	"crypto/sha1" //nolint:gosec
	"encoding/hex"
	"net/url"
	"strings"
)

// deriveListingID produces a stable identifier: the last non-empty URL
// path segment stripped of its extension, falling back to a hash of the
// title when the URL yields nothing.
func deriveListingID(rawURL, title string) string {
	if seg := lastPathSegment(rawURL); seg != "" {
		if i := strings.IndexByte(seg, '.'); i > 0 {
			seg = seg[:i]
		}
		if seg != "" {
			return seg
		}
	}
	if title != "" {
		return hashID(title)
	}
	return ""
}

// hashID is a short deterministic digest used where no natural key
// exists. sha1 is fine here, the ID is not a security boundary.
func hashID(s string) string {
	sum := sha1.Sum([]byte(s)) //nolint:gosec
	return hex.EncodeToString(sum[:])[:10]
}

func lastPathSegment(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(u.Path, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}

// isValidURL accepts absolute http(s) URLs only.
func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// resolveURL resolves href against base, returning "" on a malformed
// reference.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// cleanText collapses runs of whitespace to single spaces and trims.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
