// Package scraper contains the source adapters that feed the pipeline.
//
// Adapters fail independently; the orchestrator isolates a failing
// adapter from the rest of the scraping stage.
package scraper

// FeedSource is one configured RSS feed.
type FeedSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}
