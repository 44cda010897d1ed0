package models

import (
	"strings"
	"time"
)

// Observation statuses for a single site fetch attempt.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusError   = "error"
)

// Product represents one tracked product with its per-site source URLs
// and the latest per-site price observations.
type Product struct {
	Key          string                      `json:"key" db:"key"`
	Name         string                      `json:"name" db:"name"`
	SiteURLs     map[string]string           `json:"site_urls" db:"site_urls"`
	SitePrices   map[string]PriceObservation `json:"site_prices" db:"site_prices"`
	CurrentPrice float64                     `json:"current_price" db:"current_price"`
	BestSite     string                      `json:"best_site" db:"best_site"`
	OwnURL       string                      `json:"own_url" db:"own_url"`
	ImageURL     string                      `json:"image_url" db:"image_url"`
	Enabled      bool                        `json:"enabled" db:"enabled"`
	CreatedAt    time.Time                   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at" db:"updated_at"`
}

// HasURLs returns true if the product has at least one site URL registered.
func (p *Product) HasURLs() bool {
	return len(p.SiteURLs) > 0
}

// ActiveObservations returns the successful observations whose site still has
// a registered URL. Stale entries from removed URLs are tolerated in storage
// but excluded here.
func (p *Product) ActiveObservations() map[string]PriceObservation {
	active := make(map[string]PriceObservation)
	for site, obs := range p.SitePrices {
		if _, ok := p.SiteURLs[site]; !ok {
			continue
		}
		if obs.Status == StatusSuccess && obs.Price > 0 {
			active[site] = obs
		}
	}
	return active
}

// PriceObservation is one site's price reading at a point in time.
// Price is in the home currency; zero means no valid price was found.
type PriceObservation struct {
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// SiteResult is a successful observation tagged with its site, as reported
// inside a ComparisonResult.
type SiteResult struct {
	Site        string    `json:"site"`
	URL         string    `json:"url"`
	Price       float64   `json:"price"`
	RawPrice    float64   `json:"raw_price"`
	RawCurrency string    `json:"raw_currency"`
	Currency    string    `json:"currency"`
	ProductName string    `json:"product_name,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// SiteAttempt records one fetch attempt in enough detail to diagnose which
// site broke and why. Every site URL of a run gets exactly one attempt entry,
// successful or not.
type SiteAttempt struct {
	Site    string  `json:"site"`
	URL     string  `json:"url"`
	Backend string  `json:"backend"`
	Status  string  `json:"status"`
	Price   float64 `json:"price,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// PriceRange summarizes the successful observations of one comparison run.
type PriceRange struct {
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Average       float64 `json:"average"`
	Spread        float64 `json:"spread"`
	SpreadPercent float64 `json:"spread_percent"`
}

// ComparisonResult is the outcome of reconciling one product across all of
// its registered sites. Sites is sorted ascending by price; BestDeal is its
// first element, nil when no site succeeded.
type ComparisonResult struct {
	ProductKey    string        `json:"product_key"`
	ProductName   string        `json:"product_name"`
	SitesCompared int           `json:"sites_compared"`
	PriceRange    PriceRange    `json:"price_range"`
	BestDeal      *SiteResult   `json:"best_deal,omitempty"`
	Sites         []SiteResult  `json:"sites"`
	Attempts      []SiteAttempt `json:"attempts"`
	Failed        bool          `json:"failed"`
	GeneratedAt   time.Time     `json:"generated_at"`
}

// PriceHistory is one best-price point in time for a product.
type PriceHistory struct {
	ID         int       `json:"id" db:"id"`
	ProductKey string    `json:"product_key" db:"product_key"`
	Price      float64   `json:"price" db:"price"`
	Currency   string    `json:"currency" db:"currency"`
	CheckedAt  time.Time `json:"checked_at" db:"checked_at"`
}

// RunSummary aggregates one batch run of the driver.
type RunSummary struct {
	Total    int       `json:"total"`
	Success  int       `json:"success"`
	Failed   int       `json:"failed"`
	Skipped  int       `json:"skipped"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

// AddProductRequest creates a new tracked product.
type AddProductRequest struct {
	Name     string `json:"name"`
	Key      string `json:"key,omitempty"`
	OwnURL   string `json:"own_url,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// AddSiteURLRequest registers one site URL on an existing product.
type AddSiteURLRequest struct {
	Site string `json:"site"`
	URL  string `json:"url"`
}

// SlugifyKey derives a stable product key from a display name.
func SlugifyKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := false
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
