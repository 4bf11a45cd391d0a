package reconcile

import (
	"context"
	"encoding/json"

	"pricewatch/jofogasworker/internal/scraper"
	"pricewatch/jofogasworker/logger"
	apperr "pricewatch/jofogasworker/pkg/errors"
	"pricewatch/jofogasworker/services/publisher"
	"pricewatch/jofogasworker/services/store"
)

// Result reports what one reconciliation run changed
type Result struct {
	NewProducts   int `json:"new_products"`
	NewPrices     int `json:"new_prices"`
	UpdatedPrices int `json:"updated_prices"`
}

// PriceEvent is published when an existing product's latest price moves
type PriceEvent struct {
	ProductID int64  `json:"product_id"`
	Keyword   string `json:"keyword"`
	Title     string `json:"title"`
	OldPrice  int    `json:"old_price"`
	NewPrice  int    `json:"new_price"`
	OldDate   int    `json:"old_date"`
	NewDate   int    `json:"new_date"`
}

// Reconciler merges freshly scraped listings into the persisted product and
// price state. Runs are idempotent: every step re-checks current persisted
// state, so re-running with the same batch converges to the same end state.
type Reconciler struct {
	store     store.Store
	publisher publisher.Publisher
}

// NewReconciler creates a reconciler. The publisher is optional; when set,
// price changes are published as events.
func NewReconciler(s store.Store, pub publisher.Publisher) *Reconciler {
	return &Reconciler{store: s, publisher: pub}
}

// Reconcile applies one scraped batch to the store:
//  1. products not yet persisted are inserted (product rows are immutable
//     after that),
//  2. products without a price row get one with initial == latest,
//  3. products with a price row are updated only when the scraped price or
//     date differs from the stored latest pair; initial values never change.
func (r *Reconciler) Reconcile(ctx context.Context, listings []scraper.Listing) (Result, error) {
	var result Result
	if len(listings) == 0 {
		return result, nil
	}

	keyword := listings[0].Keyword
	log := logger.ForScraper(keyword)

	// A product can appear on more than one result page; only its first
	// occurrence in the batch counts
	listings = dedupeByProductID(listings)

	existingIDs, err := r.store.ProductIDs(ctx)
	if err != nil {
		return result, apperr.NewPersistence(keyword, "failed to load product ids", err)
	}

	var newProducts []store.Product
	for _, l := range listings {
		if _, ok := existingIDs[l.ProductID]; ok {
			continue
		}
		newProducts = append(newProducts, store.Product{
			ProductID:  l.ProductID,
			Title:      l.Title,
			ListedDate: l.ListedDate,
			Link:       l.Link,
			Category:   l.Category,
			Location:   l.Location,
			Delivery:   l.Delivery,
			Image:      l.Image,
		})
	}

	if err := r.store.InsertProducts(ctx, newProducts); err != nil {
		return result, apperr.NewPersistence(keyword, "failed to insert products", err)
	}
	result.NewProducts = len(newProducts)

	priceRows, err := r.store.PriceRows(ctx)
	if err != nil {
		return result, apperr.NewPersistence(keyword, "failed to load price rows", err)
	}

	var newPrices []store.PriceRow
	var updates []store.PriceUpdate
	var events []PriceEvent

	for _, l := range listings {
		existing, ok := priceRows[l.ProductID]
		if !ok {
			newPrices = append(newPrices, store.PriceRow{
				ProductID:         l.ProductID,
				InitialPrice:      l.Price,
				InitialSearchDate: l.SearchedDate,
				LatestPrice:       l.Price,
				LatestSearchDate:  l.SearchedDate,
			})
			continue
		}

		if existing.LatestPrice == l.Price && existing.LatestSearchDate == l.SearchedDate {
			continue
		}

		updates = append(updates, store.PriceUpdate{
			ProductID:        l.ProductID,
			LatestPrice:      l.Price,
			LatestSearchDate: l.SearchedDate,
		})
		events = append(events, PriceEvent{
			ProductID: l.ProductID,
			Keyword:   l.Keyword,
			Title:     l.Title,
			OldPrice:  existing.LatestPrice,
			NewPrice:  l.Price,
			OldDate:   existing.LatestSearchDate,
			NewDate:   l.SearchedDate,
		})
	}

	if err := r.store.InsertPrices(ctx, newPrices); err != nil {
		return result, apperr.NewPersistence(keyword, "failed to insert price rows", err)
	}
	result.NewPrices = len(newPrices)

	if err := r.store.UpdateLatestPrices(ctx, updates); err != nil {
		return result, apperr.NewPersistence(keyword, "failed to update price rows", err)
	}
	result.UpdatedPrices = len(updates)

	r.publishEvents(keyword, events)

	log.Info().
		Int("new_products", result.NewProducts).
		Int("new_prices", result.NewPrices).
		Int("updated_prices", result.UpdatedPrices).
		Msg("Reconciliation complete")

	return result, nil
}

// publishEvents publishes price-change events best-effort; a publisher
// failure never fails the reconciliation that already committed
func (r *Reconciler) publishEvents(keyword string, events []PriceEvent) {
	if r.publisher == nil {
		return
	}

	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			logger.LogError("reconcile", err, "failed to marshal price event")
			continue
		}
		if err := r.publisher.Publish(keyword, data); err != nil {
			logger.LogError("reconcile", err, "failed to publish price event")
		}
	}

	if len(events) > 0 {
		if err := r.publisher.TrimStreams(); err != nil {
			logger.LogError("reconcile", err, "failed to trim event streams")
		}
	}
}

func dedupeByProductID(listings []scraper.Listing) []scraper.Listing {
	seen := make(map[int64]struct{}, len(listings))
	deduped := listings[:0:0]
	for _, l := range listings {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		deduped = append(deduped, l)
	}
	return deduped
}
