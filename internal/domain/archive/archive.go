// Package archive keeps a SQLite copy of the sample sales records so the
// dashboard has a dataset to load before anyone uploads one.
package archive

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gocarina/gocsv"
	_ "modernc.org/sqlite"

	"github.com/12402940/Regional-Sales-Website-AI-based/internal/domain/dataset"
)

// SaleRecord is the fixed schema of the archived sales table.
type SaleRecord struct {
	Region   string  `csv:"region"`
	Product  string  `csv:"product"`
	Quantity float64 `csv:"quantity"`
	Price    float64 `csv:"price"`
	Date     string  `csv:"date"`
}

// Store is the SQLite-backed sales archive.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the archive database. When the sales table
// is empty and seed data is provided, the seed CSV is loaded into it.
func Open(ctx context.Context, path string, seedCSV []byte, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS sales (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			region   TEXT NOT NULL,
			product  TEXT NOT NULL,
			quantity REAL NOT NULL,
			price    REAL NOT NULL,
			date     TEXT NOT NULL
		)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sales table: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if len(seedCSV) > 0 {
		if err := s.seedIfEmpty(ctx, seedCSV); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) seedIfEmpty(ctx context.Context, seedCSV []byte) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&count); err != nil {
		return fmt.Errorf("count sales: %w", err)
	}
	if count > 0 {
		return nil
	}

	var records []SaleRecord
	if err := gocsv.Unmarshal(bytes.NewReader(seedCSV), &records); err != nil {
		return fmt.Errorf("parse seed csv: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sales (region, product, quantity, price, date) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare seed insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Region, rec.Product, rec.Quantity, rec.Price, rec.Date); err != nil {
			return fmt.Errorf("insert seed row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	s.logger.Info("seeded sales archive", slog.Int("rows", len(records)))
	return nil
}

// Insert appends one sale to the archive.
func (s *Store) Insert(ctx context.Context, rec SaleRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sales (region, product, quantity, price, date) VALUES (?, ?, ?, ?, ?)`,
		rec.Region, rec.Product, rec.Quantity, rec.Price, rec.Date)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// Fetch returns all archived sales as a dataset table, insertion order.
func (s *Store) Fetch(ctx context.Context) (*dataset.Table, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT region, product, quantity, price, date FROM sales ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("fetch sales: %w", err)
	}
	defer rows.Close()

	headers := []string{"Region", "Product", "Quantity", "Price", "Date"}
	var records [][]string
	for rows.Next() {
		var rec SaleRecord
		if err := rows.Scan(&rec.Region, &rec.Product, &rec.Quantity, &rec.Price, &rec.Date); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		records = append(records, []string{
			rec.Region,
			rec.Product,
			strconv.FormatFloat(rec.Quantity, 'f', -1, 64),
			strconv.FormatFloat(rec.Price, 'f', -1, 64),
			rec.Date,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}

	return dataset.New(headers, records), nil
}
