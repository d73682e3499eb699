package scraper

// SelectorSet is the site-specific markup knowledge used by the
// extractor and the category discoverer. Keeping it as data means
// retargeting the pipeline is a matter of swapping the set, not
// touching control flow.
type SelectorSet struct {
	// Table-row listing strategy.
	ListingRow   string
	ListingTitle string
	ListingPrice string

	// Generic-item fallback strategy.
	ItemContainer      string
	TitleCascade       []string
	PriceCascade       []string
	LocationCascade    []string
	DescriptionCascade []string

	// Category discovery, most specific first.
	CategoryCascade []string
}

// DefaultSelectorSet targets the doski.ru board markup.
func DefaultSelectorSet() SelectorSet {
	return SelectorSet{
		ListingRow:   "table.ml tr",
		ListingTitle: "a.sbj",
		ListingPrice: `td[align="right"] b`,

		ItemContainer:      `div[class*="listing"], div[class*="item"], article`,
		TitleCascade:       []string{"h2", "h3", ".title", `[class*="title"]`, "a"},
		PriceCascade:       []string{".price", `[class*="price"]`, `[class*="cost"]`},
		LocationCascade:    []string{".location", `[class*="location"]`, `[class*="city"]`},
		DescriptionCascade: []string{".description", ".desc", `[class*="description"]`},

		CategoryCascade: []string{
			`a[href*="/cat-"]`,
			`a[href*="/category/"]`,
			`a[href*="/cat/"]`,
			`a[href*="/section/"]`,
			`a[href*="/region/"]`,
			`a[href*="/city/"]`,
			".category-link",
			`[class*="category"] a`,
			"nav a",
			".menu a",
			"a",
		},
	}
}
