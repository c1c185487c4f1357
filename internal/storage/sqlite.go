package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/souq/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price REAL NOT NULL DEFAULT 0,
		original_price REAL NOT NULL DEFAULT 0,
		discount_percent REAL NOT NULL DEFAULT 0,
		rating REAL NOT NULL DEFAULT 0,
		review_count INTEGER NOT NULL DEFAULT 0,
		stock_quantity INTEGER NOT NULL DEFAULT 0,
		is_best_seller INTEGER NOT NULL DEFAULT 0,
		is_new_arrival INTEGER NOT NULL DEFAULT 0,
		is_free_delivery INTEGER NOT NULL DEFAULT 0,
		colors TEXT,
		sizes TEXT,
		category TEXT,
		material TEXT,
		description TEXT,
		image_url TEXT,
		store_name TEXT,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
	CREATE INDEX IF NOT EXISTS idx_products_updated_at ON products(updated_at);
	`
	_, err := db.Exec(schema)
	return err
}

const productColumns = `id, name, price, original_price, discount_percent, rating, review_count,
	stock_quantity, is_best_seller, is_new_arrival, is_free_delivery, colors, sizes,
	category, material, description, image_url, store_name`

// SaveProducts inserts or replaces products in a transaction. Products without an id
// are skipped.
func (s *SQLiteStorage) SaveProducts(ctx context.Context, products []*models.Candidate) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO products (`+productColumns+`, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now()
	saved := 0
	for _, p := range products {
		if p == nil || p.ID == "" {
			continue
		}
		colors, err := json.Marshal(p.Colors)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal colors: %w", err)
		}
		sizes, err := json.Marshal(p.Sizes)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal sizes: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.Name, p.Price, p.OriginalPrice, p.DiscountPercent, p.Rating, p.ReviewCount,
			p.StockQuantity, p.IsBestSeller, p.IsNewArrival, p.IsFreeDelivery, string(colors), string(sizes),
			p.Category, p.Material, p.Description, p.ImageURL, p.StoreName, now,
		); err != nil {
			return 0, fmt.Errorf("failed to save product %s: %w", p.ID, err)
		}
		saved++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return saved, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Candidate, error) {
	var p models.Candidate
	var colors, sizes, category, material, description, imageURL, storeName sql.NullString
	if err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.OriginalPrice, &p.DiscountPercent, &p.Rating, &p.ReviewCount,
		&p.StockQuantity, &p.IsBestSeller, &p.IsNewArrival, &p.IsFreeDelivery, &colors, &sizes,
		&category, &material, &description, &imageURL, &storeName,
	); err != nil {
		return nil, err
	}
	p.Category = category.String
	p.Material = material.String
	p.Description = description.String
	p.ImageURL = imageURL.String
	p.StoreName = storeName.String
	if colors.String != "" {
		if err := json.Unmarshal([]byte(colors.String), &p.Colors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal colors: %w", err)
		}
	}
	if sizes.String != "" {
		if err := json.Unmarshal([]byte(sizes.String), &p.Sizes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sizes: %w", err)
		}
	}
	return &p, nil
}

// GetProduct returns a product by ID.
func (s *SQLiteStorage) GetProduct(ctx context.Context, id string) (*models.Candidate, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProducts returns products, most recently saved first, with offset and limit.
func (s *SQLiteStorage) ListProducts(ctx context.Context, offset, limit int) ([]*models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY updated_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Candidate
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// DeleteProduct removes a product by ID.
func (s *SQLiteStorage) DeleteProduct(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	return err
}

// CountProducts returns the total number of products.
func (s *SQLiteStorage) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
