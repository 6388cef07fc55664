package storage

import (
	"database/sql"
	"fmt"
	"log"
)

// Migrations follow the shared MigrationInterface: each one checks the
// bookkeeping table, applies its DDL once and records itself.

type CatalogSchema struct{}

func (m *CatalogSchema) UpMigration(db *sql.DB) error {
	_, err := db.Exec(`CREATE SCHEMA IF NOT EXISTS catalog;`)
	if err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return nil
}

type MigrationsSchema struct{}

func (m *MigrationsSchema) UpMigration(db *sql.DB) error {
	query := `
		CREATE SCHEMA IF NOT EXISTS migrations;
		CREATE TABLE IF NOT EXISTS migrations.migrations (
			name VARCHAR(255) PRIMARY KEY,
			time TIMESTAMP NOT NULL
		);
		`
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create migrations bookkeeping: %w", err)
	}
	return nil
}

func migrationDone(db *sql.DB, name string) (bool, error) {
	var exists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM migrations.migrations WHERE name = $1)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return exists, nil
}

func markMigrationDone(db *sql.DB, name string) error {
	_, err := db.Exec("INSERT INTO migrations.migrations (name, time) VALUES ($1, current_timestamp)", name)
	if err != nil {
		return fmt.Errorf("failed to mark %s migration as complete: %w", name, err)
	}
	return nil
}

func applyOnce(db *sql.DB, name, query string) error {
	done, err := migrationDone(db, name)
	if err != nil {
		return err
	}
	if done {
		log.Printf("Migration '%s' already completed. Skipping.", name)
		return nil
	}
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("migration '%s' failed: %w", name, err)
	}
	if err := markMigrationDone(db, name); err != nil {
		return err
	}
	log.Printf("Migration '%s' completed successfully.", name)
	return nil
}

type CatalogProducts struct{}

func (m *CatalogProducts) UpMigration(db *sql.DB) error {
	return applyOnce(db, "catalog.products", `
		CREATE TABLE IF NOT EXISTS catalog.products (
			ean VARCHAR(32) PRIMARY KEY,
			supplier_product_id VARCHAR(64),
			name TEXT,
			short_description TEXT,
			long_description TEXT,
			description_lang VARCHAR(8),
			producer VARCHAR(255),
			unit VARCHAR(64),
			vat_rate VARCHAR(16),
			active BOOLEAN NOT NULL DEFAULT TRUE,
			is_featured BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
		`)
}

type CatalogCategories struct{}

func (m *CatalogCategories) UpMigration(db *sql.DB) error {
	return applyOnce(db, "catalog.categories", `
		CREATE TABLE IF NOT EXISTS catalog.categories (
			categoryid VARCHAR(255) PRIMARY KEY,
			name TEXT,
			path TEXT,
			parent_id VARCHAR(255) REFERENCES catalog.categories(categoryid),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS categories_path_idx ON catalog.categories(path);
		`)
}

type CatalogProductCategories struct{}

func (m *CatalogProductCategories) UpMigration(db *sql.DB) error {
	return applyOnce(db, "catalog.product_categories", `
		CREATE TABLE IF NOT EXISTS catalog.product_categories (
			product_ean VARCHAR(32) NOT NULL REFERENCES catalog.products(ean),
			category_id VARCHAR(255) NOT NULL REFERENCES catalog.categories(categoryid),
			UNIQUE (product_ean, category_id)
		);
		`)
}

type CatalogVariants struct{}

func (m *CatalogVariants) UpMigration(db *sql.DB) error {
	return applyOnce(db, "catalog.product_variants", `
		CREATE TABLE IF NOT EXISTS catalog.product_variants (
			variantid VARCHAR(128) PRIMARY KEY,
			ean VARCHAR(32) NOT NULL REFERENCES catalog.products(ean),
			name TEXT,
			stock_quantity INT NOT NULL DEFAULT 0,
			supplier_price NUMERIC(12,2),
			on_sale BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
		`)
}

type CatalogPriceLists struct{}

func (m *CatalogPriceLists) UpMigration(db *sql.DB) error {
	return applyOnce(db, "catalog.price_lists", `
		CREATE TABLE IF NOT EXISTS catalog.price_lists (
			price_list_id INT PRIMARY KEY,
			name VARCHAR(64) NOT NULL,
			description TEXT
		);
		INSERT INTO catalog.price_lists (price_list_id, name, description) VALUES
			(1, 'Supplier Price', 'Supplier cost price, written verbatim from the feed'),
			(2, 'Base Selling Price', 'Derived selling price: supplier price plus configured markup'),
			(3, 'Promotional Price', 'Temporary promotional price, maintained manually')
		ON CONFLICT (price_list_id) DO NOTHING;
		`)
}

type CatalogPrices struct{}

func (m *CatalogPrices) UpMigration(db *sql.DB) error {
	return applyOnce(db, "catalog.prices", `
		CREATE TABLE IF NOT EXISTS catalog.prices (
			variantid VARCHAR(128) NOT NULL REFERENCES catalog.product_variants(variantid),
			price_list_id INT NOT NULL REFERENCES catalog.price_lists(price_list_id),
			price NUMERIC(12,2) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE (variantid, price_list_id)
		);
		`)
}

type CatalogImages struct{}

func (m *CatalogImages) UpMigration(db *sql.DB) error {
	return applyOnce(db, "catalog.product_images", `
		CREATE TABLE IF NOT EXISTS catalog.product_images (
			ean VARCHAR(32) NOT NULL REFERENCES catalog.products(ean),
			url TEXT NOT NULL,
			alt TEXT,
			is_primary BOOLEAN NOT NULL DEFAULT FALSE,
			sort_order INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE (ean, url)
		);
		`)
}

type CatalogAttributes struct{}

func (m *CatalogAttributes) UpMigration(db *sql.DB) error {
	return applyOnce(db, "catalog.product_attributes", `
		CREATE TABLE IF NOT EXISTS catalog.product_attributes (
			product_ean VARCHAR(32) NOT NULL REFERENCES catalog.products(ean),
			key VARCHAR(255) NOT NULL,
			value TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE (product_ean, key)
		);
		`)
}

type Metadata struct{}

func (m *Metadata) UpMigration(db *sql.DB) error {
	return applyOnce(db, "catalog.metadata", `
		CREATE TABLE IF NOT EXISTS catalog.metadata (
			key_name VARCHAR(128) PRIMARY KEY,
			last_update TIMESTAMP
		);
		`)
}
