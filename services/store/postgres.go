package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pricewatch/jofogasworker/logger"
)

// PostgresStore implements Store on a pgx connection pool
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore opens a connection pool, verifies connectivity and runs
// the schema migration
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	logger.ForStore().Info().Msg("Connected to Postgres")
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS products (
			product_id  BIGINT PRIMARY KEY,
			title       TEXT NOT NULL,
			listed_date TEXT NOT NULL DEFAULT '',
			link        TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL DEFAULT '',
			location    TEXT NOT NULL DEFAULT '',
			delivery    TEXT NOT NULL DEFAULT '',
			image       TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS prices (
			seq                 BIGSERIAL,
			product_id          BIGINT PRIMARY KEY REFERENCES products(product_id),
			initial_price       BIGINT NOT NULL,
			initial_search_date INTEGER NOT NULL,
			latest_price        BIGINT NOT NULL,
			latest_search_date  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_products_title ON products(title);
	`)
	return err
}

// ProductIDs loads the full set of existing product ids
func (s *PostgresStore) ProductIDs(ctx context.Context) (map[int64]struct{}, error) {
	rows, err := s.pool.Query(ctx, `SELECT product_id FROM products`)
	if err != nil {
		return nil, fmt.Errorf("postgres: select product ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: scan product id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// PriceRows loads all existing price rows keyed by product id
func (s *PostgresStore) PriceRows(ctx context.Context) (map[int64]PriceRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT product_id, initial_price, initial_search_date, latest_price, latest_search_date
		FROM prices
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: select prices: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]PriceRow)
	for rows.Next() {
		var r PriceRow
		if err := rows.Scan(&r.ProductID, &r.InitialPrice, &r.InitialSearchDate, &r.LatestPrice, &r.LatestSearchDate); err != nil {
			return nil, fmt.Errorf("postgres: scan price row: %w", err)
		}
		result[r.ProductID] = r
	}
	return result, rows.Err()
}

// InsertProducts appends new product rows in one batch. The primary key
// constraint is the last line of defense against racing inserts of the same
// id, so conflicts are ignored rather than reported.
func (s *PostgresStore) InsertProducts(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}

	b := &pgx.Batch{}
	for _, p := range products {
		b.Queue(`
			INSERT INTO products (product_id, title, listed_date, link, category, location, delivery, image)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (product_id) DO NOTHING`,
			p.ProductID, p.Title, p.ListedDate, p.Link, p.Category, p.Location, p.Delivery, p.Image)
	}

	if err := s.pool.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("postgres: insert products: %w", err)
	}
	return nil
}

// InsertPrices appends new price rows in one batch, ignoring conflicts for
// the same reason as InsertProducts
func (s *PostgresStore) InsertPrices(ctx context.Context, priceRows []PriceRow) error {
	if len(priceRows) == 0 {
		return nil
	}

	b := &pgx.Batch{}
	for _, r := range priceRows {
		b.Queue(`
			INSERT INTO prices (product_id, initial_price, initial_search_date, latest_price, latest_search_date)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (product_id) DO NOTHING`,
			r.ProductID, r.InitialPrice, r.InitialSearchDate, r.LatestPrice, r.LatestSearchDate)
	}

	if err := s.pool.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("postgres: insert prices: %w", err)
	}
	return nil
}

// UpdateLatestPrices updates latest_price/latest_search_date for the targeted
// products in one batch of parameterized statements. Initial values are never
// touched.
func (s *PostgresStore) UpdateLatestPrices(ctx context.Context, updates []PriceUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	b := &pgx.Batch{}
	for _, u := range updates {
		b.Queue(`
			UPDATE prices
			SET latest_price = $2, latest_search_date = $3
			WHERE product_id = $1`,
			u.ProductID, u.LatestPrice, u.LatestSearchDate)
	}

	if err := s.pool.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("postgres: update prices: %w", err)
	}
	return nil
}

// QueryByTitle joins products and prices for every title containing the
// filter substring and computes the price change per row
func (s *PostgresStore) QueryByTitle(ctx context.Context, filter string) ([]FilteredRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT products.product_id, products.image, products.title, products.link,
		       prices.initial_price, prices.initial_search_date,
		       prices.latest_price, prices.latest_search_date,
		       prices.latest_price - prices.initial_price AS price_change
		FROM prices
		JOIN products ON prices.product_id = products.product_id
		WHERE products.title LIKE '%' || $1 || '%'
		ORDER BY prices.seq
	`, filter)
	if err != nil {
		return nil, fmt.Errorf("postgres: query by title: %w", err)
	}
	defer rows.Close()

	var result []FilteredRow
	for rows.Next() {
		var r FilteredRow
		if err := rows.Scan(&r.ProductID, &r.Image, &r.Title, &r.Link,
			&r.InitialPrice, &r.InitialSearchDate,
			&r.LatestPrice, &r.LatestSearchDate, &r.PriceChange); err != nil {
			return nil, fmt.Errorf("postgres: scan filtered row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Close releases the connection pool
func (s *PostgresStore) Close() {
	s.pool.Close()
}
