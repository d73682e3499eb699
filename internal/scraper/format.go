package scraper

import (
	"fmt"
	"html"
	"strings"
)

// FormatListingHTML renders a listing as a Telegram HTML message:
// bold title, price and description lines, and a details link.
func FormatListingHTML(listing Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(listing.Title))
	if listing.Price != "" {
		b.WriteString(html.EscapeString(listing.Price))
		b.WriteByte('\n')
	}
	if listing.Description != "" {
		b.WriteString(html.EscapeString(listing.Description))
		b.WriteByte('\n')
	}
	if listing.URL != "" {
		fmt.Fprintf(&b, "<a href=%q>Подробнее</a>", listing.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}
