package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"coinwatch/database"
	"coinwatch/models"
)

// ErrNotFound is returned when a product key has no row.
var ErrNotFound = fmt.Errorf("product not found")

type ProductRepository struct{}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

const productColumns = `key, name, site_urls, site_prices, current_price, best_site,
	own_url, image_url, enabled, created_at, updated_at`

// CreateProduct inserts a new product with empty URL and price maps.
func (r *ProductRepository) CreateProduct(key, name, ownURL, imageURL string) (*models.Product, error) {
	query := `
		INSERT INTO products (key, name, site_urls, site_prices, own_url, image_url, enabled, created_at, updated_at)
		VALUES ($1, $2, '{}', '{}', $3, $4, TRUE, $5, $5)
		RETURNING ` + productColumns

	now := time.Now()
	row := database.DB.QueryRow(query, key, name, ownURL, imageURL, now)
	product, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// GetProducts returns all products in catalog order (creation time).
func (r *ProductRepository) GetProducts() ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at ASC`

	rows, err := database.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

// GetProduct returns one product by key.
func (r *ProductRepository) GetProduct(key string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE key = $1`

	product, err := scanProduct(database.DB.QueryRow(query, key))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// SaveSiteURLs persists the product's site URL map.
func (r *ProductRepository) SaveSiteURLs(key string, siteURLs map[string]string) error {
	blob, err := json.Marshal(siteURLs)
	if err != nil {
		return fmt.Errorf("failed to serialize site URLs: %w", err)
	}

	query := `UPDATE products SET site_urls = $2, updated_at = $3 WHERE key = $1`
	if _, err := database.DB.Exec(query, key, string(blob), time.Now()); err != nil {
		return fmt.Errorf("failed to save site URLs: %w", err)
	}
	return nil
}

// UpdatePrices persists the per-site observations and the reconciled best
// price for a product.
func (r *ProductRepository) UpdatePrices(product *models.Product) error {
	blob, err := json.Marshal(product.SitePrices)
	if err != nil {
		return fmt.Errorf("failed to serialize site prices: %w", err)
	}

	query := `
		UPDATE products
		SET site_prices = $2, current_price = $3, best_site = $4, updated_at = $5
		WHERE key = $1
	`
	if _, err := database.DB.Exec(query, product.Key, string(blob),
		product.CurrentPrice, product.BestSite, time.Now()); err != nil {
		return fmt.Errorf("failed to update prices: %w", err)
	}
	return nil
}

// SetEnabled toggles a product's participation in scheduled runs.
func (r *ProductRepository) SetEnabled(key string, enabled bool) error {
	query := `UPDATE products SET enabled = $2, updated_at = $3 WHERE key = $1`
	if _, err := database.DB.Exec(query, key, enabled, time.Now()); err != nil {
		return fmt.Errorf("failed to set enabled: %w", err)
	}
	return nil
}

// DeleteProduct removes a product and, via cascade, its history.
func (r *ProductRepository) DeleteProduct(key string) error {
	if _, err := database.DB.Exec(`DELETE FROM products WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// AppendPriceHistory records one best-price point for a product.
func (r *ProductRepository) AppendPriceHistory(key string, price float64, currencyCode string, checkedAt time.Time) error {
	query := `
		INSERT INTO price_history (product_key, price, currency, checked_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := database.DB.Exec(query, key, price, currencyCode, checkedAt); err != nil {
		return fmt.Errorf("failed to append price history: %w", err)
	}
	return nil
}

// GetPriceHistory returns recent best-price points, newest first.
func (r *ProductRepository) GetPriceHistory(key string, limit int) ([]models.PriceHistory, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, product_key, price, currency, checked_at
		FROM price_history
		WHERE product_key = $1
		ORDER BY checked_at DESC
		LIMIT $2
	`
	rows, err := database.DB.Query(query, key, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}
	defer rows.Close()

	var history []models.PriceHistory
	for rows.Next() {
		var entry models.PriceHistory
		if err := rows.Scan(&entry.ID, &entry.ProductKey, &entry.Price, &entry.Currency, &entry.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price history: %w", err)
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var product models.Product
	var siteURLs, sitePrices string
	var bestSite, ownURL, imageURL sql.NullString
	var currentPrice sql.NullFloat64

	err := row.Scan(
		&product.Key, &product.Name, &siteURLs, &sitePrices,
		&currentPrice, &bestSite, &ownURL, &imageURL,
		&product.Enabled, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.CurrentPrice = currentPrice.Float64
	product.BestSite = bestSite.String
	product.OwnURL = ownURL.String
	product.ImageURL = imageURL.String

	if err := json.Unmarshal([]byte(siteURLs), &product.SiteURLs); err != nil {
		return nil, fmt.Errorf("corrupt site_urls for %s: %w", product.Key, err)
	}
	if err := json.Unmarshal([]byte(sitePrices), &product.SitePrices); err != nil {
		return nil, fmt.Errorf("corrupt site_prices for %s: %w", product.Key, err)
	}
	if product.SiteURLs == nil {
		product.SiteURLs = make(map[string]string)
	}
	if product.SitePrices == nil {
		product.SitePrices = make(map[string]models.PriceObservation)
	}
	return &product, nil
}
