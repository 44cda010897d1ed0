package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

var DB *sql.DB

// InitDatabase opens the Postgres connection from the given URL.
func InitDatabase(databaseURL string) error {
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	var err error
	DB, err = sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Successfully connected to database")
	return nil
}

// CreateTables creates the necessary tables if they don't exist.
// site_urls and site_prices are serialized JSON objects keyed by site id,
// mirroring the shape the API exposes.
func CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS products (
			key TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			site_urls TEXT NOT NULL DEFAULT '{}',
			site_prices TEXT NOT NULL DEFAULT '{}',
			current_price DECIMAL(12,2) DEFAULT 0,
			best_site TEXT,
			own_url TEXT,
			image_url TEXT,
			enabled BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS price_history (
			id SERIAL PRIMARY KEY,
			product_key TEXT REFERENCES products(key) ON DELETE CASCADE,
			price DECIMAL(12,2) NOT NULL,
			currency VARCHAR(3) DEFAULT 'JPY',
			checked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_history_product
			ON price_history (product_key, checked_at DESC)`,
	}

	for _, query := range queries {
		if _, err := DB.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// CloseDatabase closes the database connection.
func CloseDatabase() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
