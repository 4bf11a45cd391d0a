package search

import (
	"context"
	"strings"
	"time"

	"pricewatch/jofogasworker/internal/scraper"
	"pricewatch/jofogasworker/logger"
	apperr "pricewatch/jofogasworker/pkg/errors"
	"pricewatch/jofogasworker/services/cache"
	"pricewatch/jofogasworker/services/locker"
	"pricewatch/jofogasworker/services/reconcile"
	"pricewatch/jofogasworker/services/store"
)

const (
	blockKeyPrefix = "keyword_block:"
	lockTTL        = 2 * time.Minute
)

// Scraper fetches and extracts the listings for one keyword
type Scraper interface {
	Scrape(ctx context.Context, keyword string) ([]scraper.Listing, string, error)
}

// Reconciler merges a scraped batch into the persisted state
type Reconciler interface {
	Reconcile(ctx context.Context, listings []scraper.Listing) (reconcile.Result, error)
}

// Service is the inbound surface consumed by the presentation layer: scrape
// a keyword (persisting what was found) or query previously seen items
type Service struct {
	scraper    Scraper
	reconciler Reconciler
	store      store.Store
	cache      cache.CacheService
	locker     locker.Locker
	blockTime  time.Duration
}

// NewService creates a search service. Cache and locker are optional; when
// nil the corresponding guard is skipped.
func NewService(
	sc Scraper,
	rec Reconciler,
	st store.Store,
	cacheSvc cache.CacheService,
	lock locker.Locker,
	blockTime time.Duration,
) *Service {
	return &Service{
		scraper:    sc,
		reconciler: rec,
		store:      st,
		cache:      cacheSvc,
		locker:     lock,
		blockTime:  blockTime,
	}
}

// Scrape runs the full pipeline for a keyword and returns the final records
// plus an optional pagination truncation note
func (s *Service) Scrape(ctx context.Context, keyword string) ([]scraper.Listing, string, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, "", apperr.NewValidation(keyword, "keyword must not be empty")
	}

	// Repeat scrapes of the same keyword are blocked for a cool-down period
	if s.cache != nil {
		if _, err := s.cache.Get(blockKeyPrefix + keyword); err == nil {
			return nil, "", apperr.NewRateLimit(keyword, s.blockTime)
		}
	}

	if s.locker != nil {
		acquired, err := s.locker.Acquire(ctx, keyword, lockTTL)
		if err != nil {
			logger.ForScraper(keyword).Warn().Err(err).Msg("Lock acquisition failed, proceeding without lock")
		} else if !acquired {
			return nil, "", apperr.NewRateLimit(keyword, lockTTL)
		} else {
			defer func() {
				if err := s.locker.Release(context.WithoutCancel(ctx), keyword); err != nil {
					logger.ForScraper(keyword).Warn().Err(err).Msg("Lock release failed")
				}
			}()
		}
	}

	listings, note, err := s.scraper.Scrape(ctx, keyword)
	if err != nil {
		return nil, "", err
	}

	if _, err := s.reconciler.Reconcile(ctx, listings); err != nil {
		return nil, "", err
	}

	if s.cache != nil && s.blockTime > 0 {
		if err := s.cache.Set(blockKeyPrefix+keyword, []byte("1"), s.blockTime); err != nil {
			logger.ForScraper(keyword).Warn().Err(err).Msg("Failed to set keyword block")
		}
	}

	return listings, note, nil
}

// QueryByTitle returns all previously seen items whose title contains the
// filter substring, with their two-point price history and price change
func (s *Service) QueryByTitle(ctx context.Context, filter string) ([]store.FilteredRow, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, apperr.NewValidation(filter, "filter must not be empty")
	}

	rows, err := s.store.QueryByTitle(ctx, filter)
	if err != nil {
		return nil, apperr.NewPersistence(filter, "failed to query products", err)
	}
	return rows, nil
}
