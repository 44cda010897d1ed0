// Package extractor turns raw or rendered page content into candidate
// prices, one implementation per supported site. Site specifics live in
// declarative policies so the reconciler stays oblivious to them.
package extractor

import (
	"net/url"
	"strings"

	"coinwatch/fetcher"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// Candidate is an extracted price in the site's native currency, plus
// optional product metadata. Currency is NOT normalized here.
type Candidate struct {
	Price       float64
	Currency    string
	ProductName string
	ImageURL    string
}

// SiteExtractor is the capability contract every supported site implements.
// Extract returns nil when no price matched; it never fails for "price not
// found". Transport and parse failures surface earlier, at the fetch layer.
type SiteExtractor interface {
	// Site is the hostname this extractor handles.
	Site() string
	// Policy exposes the fetch requirements (backend, wait strategy,
	// settle delay) the reconciler must honor for this site.
	Policy() Policy
	// Extract picks a plausible price out of the page for the hinted
	// product type.
	Extract(page *fetcher.PageContent, hint Hint) *Candidate
}

// Registry looks extractors up by hostname, with a generic fallback for
// unknown sites.
type Registry struct {
	extractors map[string]SiteExtractor
	fallback   SiteExtractor
}

// NewRegistry builds a registry over the given extractors.
func NewRegistry(fallback SiteExtractor, extractors ...SiteExtractor) *Registry {
	r := &Registry{
		extractors: make(map[string]SiteExtractor),
		fallback:   fallback,
	}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds or replaces the extractor for its site.
func (r *Registry) Register(e SiteExtractor) {
	r.extractors[e.Site()] = e
}

// DefaultRegistry wires up every supported site.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewGeneric(),
		NewBullionStar(),
		NewAPMEX(),
		NewLPM(),
		NewYBX(),
	)
}

// ForURL resolves the extractor responsible for rawURL's hostname,
// falling back to the generic extractor for unknown sites.
func (r *Registry) ForURL(rawURL string) SiteExtractor {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return r.fallback
	}

	hostname := strings.TrimPrefix(parsed.Hostname(), "www.")
	for site, e := range r.extractors {
		if strings.Contains(hostname, site) || strings.Contains(site, hostname) {
			return e
		}
	}

	log.WithFields(log.Fields{"host": hostname}).Debug("No dedicated extractor, using generic")
	return r.fallback
}

// Sites lists the registered hostnames.
func (r *Registry) Sites() []string {
	sites := make([]string, 0, len(r.extractors))
	for site := range r.extractors {
		sites = append(sites, site)
	}
	return sites
}

// extractName tries a list of selectors against the page HTML and returns
// the first non-empty text, trimmed.
func extractName(html string, selectors ...string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	for _, selector := range selectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// extractImage returns the first image src matching any of the selectors.
func extractImage(html string, selectors ...string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	for _, selector := range selectors {
		if src, ok := doc.Find(selector).First().Attr("src"); ok && src != "" {
			return src
		}
	}
	return ""
}
