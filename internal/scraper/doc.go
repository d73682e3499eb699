// Package scraper implements the fetch-and-extract pipeline for the
// doski.ru classifieds board: politeness policy, proxy rotation,
// resilient fetching, headless rendering, listing extraction, and
// category discovery.
package scraper
