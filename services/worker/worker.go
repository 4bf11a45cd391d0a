package worker

import (
	"context"
	"time"

	"pricewatch/jofogasworker/internal/scraper"
	"pricewatch/jofogasworker/logger"
)

// SearchService is the part of the search service the watcher needs
type SearchService interface {
	Scrape(ctx context.Context, keyword string) ([]scraper.Listing, string, error)
}

// Worker periodically re-scrapes a fixed set of watched keywords so their
// price histories keep moving without a user request
type Worker struct {
	ctx      context.Context
	service  SearchService
	keywords []string
	interval time.Duration
}

// NewWorker creates a new watch worker
func NewWorker(ctx context.Context, service SearchService, keywords []string, interval time.Duration) *Worker {
	return &Worker{
		ctx:      ctx,
		service:  service,
		keywords: keywords,
		interval: interval,
	}
}

// Start runs the watch loop until the context is cancelled
func (w *Worker) Start() error {
	log := logger.ForWorker()
	log.Info().
		Strs("keywords", w.keywords).
		Dur("interval", w.interval).
		Msg("Starting keyword watcher")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runKeywords()
	for {
		select {
		case <-w.ctx.Done():
			log.Info().Msg("Keyword watcher stopped")
			return w.ctx.Err()
		case <-ticker.C:
			w.runKeywords()
		}
	}
}

// runKeywords scrapes every watched keyword sequentially; the page fetches
// inside one scrape already fan out, so there is no reason to hammer the
// site with parallel keyword runs
func (w *Worker) runKeywords() {
	log := logger.ForWorker()
	start := time.Now()

	for _, keyword := range w.keywords {
		if w.ctx.Err() != nil {
			return
		}

		listings, _, err := w.service.Scrape(w.ctx, keyword)
		if err != nil {
			logger.LogError("worker", err, "watch scrape failed for %q", keyword)
			continue
		}

		log.Debug().
			Str("keyword", keyword).
			Int("listings", len(listings)).
			Msg("Watch scrape complete")
	}

	log.Info().
		Dur("elapsed", time.Since(start)).
		Int("keywords", len(w.keywords)).
		Msg("Watch round complete")
}
