// Package reconciler gathers per-site prices for one product and computes a
// best-price comparison record.
package reconciler

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"coinwatch/currency"
	"coinwatch/extractor"
	"coinwatch/fetcher"
	"coinwatch/models"

	log "github.com/sirupsen/logrus"
)

// Config carries the reconciler's externally-tunable knobs. SiteDelay is a
// politeness measure between consecutive fetches; tests inject zero.
type Config struct {
	SiteDelay    time.Duration
	FetchTimeout time.Duration
}

// Reconciler compares one product across all of its registered site URLs.
// Sites run strictly sequentially; target shops rate-limit and block rapid
// or concurrent scraping, so throughput is traded for reliability.
type Reconciler struct {
	registry   *extractor.Registry
	fetchers   map[string]fetcher.PageFetcher
	normalizer *currency.Normalizer
	cfg        Config
}

// New builds a reconciler over the given site registry and fetch backends,
// keyed by backend name.
func New(registry *extractor.Registry, fetchers map[string]fetcher.PageFetcher, normalizer *currency.Normalizer, cfg Config) *Reconciler {
	return &Reconciler{
		registry:   registry,
		fetchers:   fetchers,
		normalizer: normalizer,
		cfg:        cfg,
	}
}

// Compare fetches every registered site of the product, extracts and
// normalizes prices, and reconciles them into a single comparison. Site
// failures never abort the remaining sites; zero successes yield a result
// with Failed set and no BestDeal.
func (r *Reconciler) Compare(ctx context.Context, product *models.Product) *models.ComparisonResult {
	result := &models.ComparisonResult{
		ProductKey:  product.Key,
		ProductName: product.Name,
		GeneratedAt: time.Now(),
	}

	// JSON objects do not preserve registration order, so sites are
	// visited in sorted key order for deterministic runs.
	sites := make([]string, 0, len(product.SiteURLs))
	for site := range product.SiteURLs {
		sites = append(sites, site)
	}
	sort.Strings(sites)

	for i, site := range sites {
		if i > 0 && r.cfg.SiteDelay > 0 {
			select {
			case <-time.After(r.cfg.SiteDelay):
			case <-ctx.Done():
				result.Attempts = append(result.Attempts, models.SiteAttempt{
					Site:   site,
					URL:    product.SiteURLs[site],
					Status: models.StatusError,
					Error:  ctx.Err().Error(),
				})
				continue
			}
		}

		attempt := r.checkSite(ctx, site, product.SiteURLs[site])
		result.Attempts = append(result.Attempts, attempt.SiteAttempt)
		if attempt.SiteAttempt.Status == models.StatusSuccess {
			result.Sites = append(result.Sites, attempt.result)
		}
	}

	reconcile(result)
	return result
}

// siteAttempt carries the public attempt log plus the successful result.
type siteAttempt struct {
	models.SiteAttempt
	result models.SiteResult
}

func (r *Reconciler) checkSite(ctx context.Context, site, url string) siteAttempt {
	logger := log.WithFields(log.Fields{"site": site, "url": url})
	logger.Info("Fetching site price")

	ext := r.registry.ForURL(url)
	policy := ext.Policy()
	hint := extractor.HintFromURL(url)

	attempt := siteAttempt{SiteAttempt: models.SiteAttempt{
		Site:    site,
		URL:     url,
		Backend: policy.Backend,
	}}

	f, ok := r.fetchers[policy.Backend]
	if !ok {
		attempt.Status = models.StatusError
		attempt.Error = fmt.Sprintf("no %q fetch backend configured", policy.Backend)
		logger.Error(attempt.Error)
		return attempt
	}

	page, err := f.Fetch(ctx, url, fetcher.Options{
		Wait:    policy.Wait,
		Timeout: r.cfg.FetchTimeout,
		Settle:  policy.Settle,
	})
	if err != nil {
		attempt.Status = models.StatusError
		attempt.Error = err.Error()
		logger.Warnf("Fetch failed: %v", err)
		return attempt
	}

	candidate := ext.Extract(page, hint)
	if candidate == nil {
		attempt.Status = models.StatusFailed
		attempt.Error = fmt.Sprintf("no price matched (hint %s)", hint)
		logger.Warn("No price found on page")
		return attempt
	}

	normalized, err := r.normalizer.Normalize(candidate.Price, candidate.Currency)
	if err != nil {
		attempt.Status = models.StatusError
		attempt.Error = err.Error()
		logger.Warnf("Normalization failed: %v", err)
		return attempt
	}

	attempt.Status = models.StatusSuccess
	attempt.Price = normalized
	attempt.result = models.SiteResult{
		Site:        site,
		URL:         url,
		Price:       normalized,
		RawPrice:    candidate.Price,
		RawCurrency: candidate.Currency,
		Currency:    r.normalizer.Home(),
		ProductName: candidate.ProductName,
		ImageURL:    candidate.ImageURL,
		ScrapedAt:   time.Now(),
	}

	logger.WithFields(log.Fields{
		"raw":   fmt.Sprintf("%.2f %s", candidate.Price, candidate.Currency),
		"price": normalized,
	}).Info("Price extracted")
	return attempt
}

// reconcile sorts the successful observations, picks the best deal and
// computes the range statistics. The sort is stable: equal prices keep
// their input order.
func reconcile(result *models.ComparisonResult) {
	result.SitesCompared = len(result.Sites)
	if result.SitesCompared == 0 {
		result.Failed = true
		return
	}

	sort.SliceStable(result.Sites, func(i, j int) bool {
		return result.Sites[i].Price < result.Sites[j].Price
	})

	min := result.Sites[0].Price
	max := result.Sites[0].Price
	sum := 0.0
	for _, site := range result.Sites {
		if site.Price < min {
			min = site.Price
		}
		if site.Price > max {
			max = site.Price
		}
		sum += site.Price
	}

	spread := max - min
	spreadPercent := 0.0
	if spread > 0 && min > 0 {
		spreadPercent = math.Round(spread / min * 100)
	}

	result.PriceRange = models.PriceRange{
		Min:           min,
		Max:           max,
		Average:       math.Round(sum / float64(result.SitesCompared)),
		Spread:        spread,
		SpreadPercent: spreadPercent,
	}
	result.BestDeal = &result.Sites[0]
}

// Apply merges a comparison into the product's stored observations. A
// failed attempt never erases a prior successful observation for that
// site, and a fully failed run leaves the stored best price untouched.
func Apply(product *models.Product, result *models.ComparisonResult) {
	if product.SitePrices == nil {
		product.SitePrices = make(map[string]models.PriceObservation)
	}

	for _, attempt := range result.Attempts {
		if attempt.Status == models.StatusSuccess {
			continue
		}
		if prev, ok := product.SitePrices[attempt.Site]; ok && prev.Status == models.StatusSuccess {
			continue
		}
		product.SitePrices[attempt.Site] = models.PriceObservation{
			Currency:  "",
			Status:    attempt.Status,
			Timestamp: result.GeneratedAt,
		}
	}

	for _, site := range result.Sites {
		product.SitePrices[site.Site] = models.PriceObservation{
			Price:     site.Price,
			Currency:  site.Currency,
			Status:    models.StatusSuccess,
			Timestamp: site.ScrapedAt,
		}
	}

	if !result.Failed && result.BestDeal != nil {
		product.CurrentPrice = result.BestDeal.Price
		product.BestSite = result.BestDeal.Site
		product.UpdatedAt = result.GeneratedAt
	}
}
