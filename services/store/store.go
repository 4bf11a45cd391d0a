package store

import "context"

// Product is a durable product row. Rows are immutable after first insert.
type Product struct {
	ProductID  int64  `json:"product_id"`
	Title      string `json:"title"`
	ListedDate string `json:"listed_date"`
	Link       string `json:"link"`
	Category   string `json:"category"`
	Location   string `json:"location"`
	Delivery   string `json:"delivery"`
	Image      string `json:"image"`
}

// PriceRow is the two-point price history for one product: the first-seen
// price/date pair and the most recent one
type PriceRow struct {
	ProductID         int64 `json:"product_id"`
	InitialPrice      int   `json:"initial_price"`
	InitialSearchDate int   `json:"initial_search_date"`
	LatestPrice       int   `json:"latest_price"`
	LatestSearchDate  int   `json:"latest_search_date"`
}

// PriceUpdate targets the latest price/date pair of one existing price row
type PriceUpdate struct {
	ProductID        int64
	LatestPrice      int
	LatestSearchDate int
}

// FilteredRow is one row of the filtered read path: product display fields
// joined with its price history and the computed price change
type FilteredRow struct {
	ProductID         int64  `json:"product_id"`
	Image             string `json:"image"`
	Title             string `json:"title"`
	Link              string `json:"link"`
	InitialPrice      int    `json:"initial_price"`
	InitialSearchDate int    `json:"initial_search_date"`
	LatestPrice       int    `json:"latest_price"`
	LatestSearchDate  int    `json:"latest_search_date"`
	PriceChange       int    `json:"price_change"`
}

// Store is the persisted product/price state behind reconciliation and the
// filtered read path
type Store interface {
	// ProductIDs returns the full set of persisted product ids
	ProductIDs(ctx context.Context) (map[int64]struct{}, error)

	// PriceRows returns all persisted price rows keyed by product id
	PriceRows(ctx context.Context) (map[int64]PriceRow, error)

	// InsertProducts appends new product rows; existing ids are left untouched
	InsertProducts(ctx context.Context, products []Product) error

	// InsertPrices appends new price rows; existing ids are left untouched
	InsertPrices(ctx context.Context, rows []PriceRow) error

	// UpdateLatestPrices updates only latest_price/latest_search_date for the
	// targeted product ids
	UpdateLatestPrices(ctx context.Context, updates []PriceUpdate) error

	// QueryByTitle returns all product/price rows whose title contains the
	// filter substring, in insertion order
	QueryByTitle(ctx context.Context, filter string) ([]FilteredRow, error)

	// Close releases the underlying connections
	Close()
}
