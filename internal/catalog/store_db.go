package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
	seedTimeout  = 10 * time.Second
)

const selectProducts = `
	SELECT id, name, price, category, brand, sizes, stock, status,
	       image, images, discount_percent, condition
	FROM products
`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres opens a pgx-backed database/sql pool.
func OpenPostgres(dsn string, maxOpen, maxIdle int, maxLifetime time.Duration) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)
	return db, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) ListSortedByID(ctx context.Context) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, selectProducts+`ORDER BY length(id) ASC, id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 16)
		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Product, bool, error) {
	var (
		p   Product
		err error
	)

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var serr error
		p, serr = scanProduct(s.db.QueryRowContext(ctx, selectProducts+`WHERE id = $1`, id))
		return serr
	})

	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, err
	}
	return p, true, nil
}

// Seed inserts products that are not present yet. Existing rows are left as
// they are.
func (s *PostgresStore) Seed(ctx context.Context, products []Product) error {
	return withTimeout(ctx, seedTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO products (id, name, price, category, brand, sizes, stock, status,
			                      image, images, discount_percent, condition)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (id) DO NOTHING
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, p := range products {
			sizes, err := json.Marshal(p.Sizes)
			if err != nil {
				return err
			}
			images, err := json.Marshal(nonNil(p.Images))
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx,
				string(p.ID), p.Name, p.Price, p.Category.String(), p.Brand, sizes, p.Stock,
				p.Status.String(), p.Image, images, p.DiscountPercent, p.Condition,
			); err != nil {
				return fmt.Errorf("seed product %s: %w", p.ID, err)
			}
		}

		return tx.Commit()
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p                     Product
		category, status      string
		sizesJSON, imagesJSON []byte
	)

	if err := row.Scan(
		&p.ID, &p.Name, &p.Price, &category, &p.Brand, &sizesJSON, &p.Stock, &status,
		&p.Image, &imagesJSON, &p.DiscountPercent, &p.Condition,
	); err != nil {
		return Product{}, err
	}

	if err := json.Unmarshal(sizesJSON, &p.Sizes); err != nil {
		return Product{}, fmt.Errorf("product %s sizes: %w", p.ID, err)
	}
	if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
		return Product{}, fmt.Errorf("product %s images: %w", p.ID, err)
	}

	p.Category = ParseCategory(category)
	p.Status = ParseStatus(status)
	p.Normalize()
	return p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
