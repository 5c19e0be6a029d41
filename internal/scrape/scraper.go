// Package scrape fetches company homepages and pulls descriptive text out
// of them.
package scrape

import "context"

// Page is a fetched page. HTML is empty when the fetcher only returns text.
type Page struct {
	URL        string
	Title      string
	HTML       string
	Text       string
	StatusCode int
	Source     string
}

// Scraper fetches a single URL.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Page, error)
	Name() string
}
