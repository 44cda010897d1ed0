// Package fetcher retrieves rendered page content for the extractors.
// Two backends exist: a static HTTP fetch (fast, fails on JS-rendered
// content) and a rod browser fetch (slow, handles dynamic pages).
package fetcher

import (
	"context"
	"time"
)

// WaitStrategy controls how long the browser backend waits before sampling
// page text. Sites that populate prices asynchronously need the stricter
// strategy.
type WaitStrategy string

const (
	// WaitDOMReady samples as soon as the document has loaded.
	WaitDOMReady WaitStrategy = "domready"
	// WaitNetworkIdle additionally waits for the page to stop changing.
	WaitNetworkIdle WaitStrategy = "networkidle"
)

// Backend names, recorded on attempt logs.
const (
	BackendBrowser = "browser"
	BackendStatic  = "static"
)

// Options tune a single page fetch.
type Options struct {
	Wait    WaitStrategy
	Timeout time.Duration
	// Settle is an extra fixed delay after the wait strategy completes.
	// For some sites this is a correctness requirement, not a nicety:
	// their price renders several seconds after navigation.
	Settle time.Duration
}

// PageContent is the fetched page in both rendered-text and raw-HTML form.
// Extractors prefer Text since price strings appear in rendered text, and
// fall back to HTML when only markup carries the value.
type PageContent struct {
	URL  string
	Text string
	HTML string
}

// PageFetcher retrieves one page. Implementations must release all
// per-fetch resources on every exit path.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, opts Options) (*PageContent, error)
	Name() string
}
