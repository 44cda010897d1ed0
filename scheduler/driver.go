package scheduler

import (
	"context"
	"fmt"
	"time"

	"coinwatch/models"
	"coinwatch/reconciler"

	log "github.com/sirupsen/logrus"
)

// Store is the persistence surface the driver needs.
type Store interface {
	GetProducts() ([]models.Product, error)
	GetProduct(key string) (*models.Product, error)
	UpdatePrices(product *models.Product) error
	AppendPriceHistory(key string, price float64, currency string, checkedAt time.Time) error
}

// Comparer runs one product's multi-site comparison.
type Comparer interface {
	Compare(ctx context.Context, product *models.Product) *models.ComparisonResult
}

// Driver iterates the product catalog, reconciles each enabled product and
// persists the results. One product's failure never stops the batch.
type Driver struct {
	store        Store
	comparer     Comparer
	productDelay time.Duration
	homeCurrency string
}

// NewDriver builds the orchestration driver. productDelay separates
// consecutive products in a batch; tests inject zero.
func NewDriver(store Store, comparer Comparer, productDelay time.Duration, homeCurrency string) *Driver {
	return &Driver{
		store:        store,
		comparer:     comparer,
		productDelay: productDelay,
		homeCurrency: homeCurrency,
	}
}

// RunAll processes every enabled product in catalog order and returns the
// batch summary. Products without configured URLs or disabled ones are
// counted as skipped.
func (d *Driver) RunAll(ctx context.Context) (*models.RunSummary, error) {
	summary := &models.RunSummary{Started: time.Now()}

	products, err := d.store.GetProducts()
	if err != nil {
		return nil, fmt.Errorf("failed to load product catalog: %w", err)
	}
	summary.Total = len(products)

	log.Infof("Starting batch price update for %d products", len(products))

	first := true
	for i := range products {
		product := &products[i]

		if !product.Enabled || !product.HasURLs() {
			summary.Skipped++
			log.WithFields(log.Fields{"product": product.Key}).Info("Skipping product (disabled or no URLs)")
			continue
		}

		if !first && d.productDelay > 0 {
			select {
			case <-time.After(d.productDelay):
			case <-ctx.Done():
				summary.Finished = time.Now()
				return summary, ctx.Err()
			}
		}
		first = false

		result, err := d.processProduct(ctx, product)
		if err != nil || result.Failed {
			summary.Failed++
			logger := log.WithFields(log.Fields{"product": product.Key})
			if err != nil {
				logger.Errorf("Product update failed: %v", err)
			} else {
				logger.Warn("No site produced a price; stored price left untouched")
			}
			continue
		}
		summary.Success++

		log.WithFields(log.Fields{
			"product": product.Key,
			"sites":   result.SitesCompared,
			"best":    result.BestDeal.Site,
			"price":   result.BestDeal.Price,
		}).Info("Product reconciled")
	}

	summary.Finished = time.Now()
	log.Infof("Batch finished: %d success, %d failed, %d skipped",
		summary.Success, summary.Failed, summary.Skipped)
	return summary, nil
}

// RunOne reconciles a single product on demand, sharing the batch path.
func (d *Driver) RunOne(ctx context.Context, key string) (*models.ComparisonResult, error) {
	product, err := d.store.GetProduct(key)
	if err != nil {
		return nil, err
	}
	if !product.HasURLs() {
		return nil, fmt.Errorf("product %s has no site URLs configured", key)
	}
	return d.processProduct(ctx, product)
}

// processProduct runs one comparison and persists its outcome. The browser
// layer can panic deep inside the protocol handling, so the comparison is
// fenced with a recover to honor catch-and-continue.
func (d *Driver) processProduct(ctx context.Context, product *models.Product) (result *models.ComparisonResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("comparison panicked for %s: %v", product.Key, r)
		}
	}()

	result = d.comparer.Compare(ctx, product)
	reconciler.Apply(product, result)

	if err := d.store.UpdatePrices(product); err != nil {
		return result, fmt.Errorf("store write failed for %s: %w", product.Key, err)
	}

	if !result.Failed && result.BestDeal != nil {
		if err := d.store.AppendPriceHistory(product.Key, result.BestDeal.Price, d.homeCurrency, result.GeneratedAt); err != nil {
			log.WithFields(log.Fields{"product": product.Key}).Errorf("Failed to append price history: %v", err)
		}
	}

	return result, nil
}
