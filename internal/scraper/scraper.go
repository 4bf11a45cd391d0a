package scraper

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"pricewatch/jofogasworker/helpers"
	"pricewatch/jofogasworker/logger"
	apperr "pricewatch/jofogasworker/pkg/errors"
)

// Scraper fetches and extracts listings for one keyword search
type Scraper struct {
	baseURL   string
	maxPages  int
	client    *http.Client
	headers   map[string]string
	selectors Selectors
	now       func() time.Time
}

// NewScraper creates a scraper with the shared fetch configuration
func NewScraper(baseURL string, maxPages int, fetchCfg helpers.FetchConfig) (*Scraper, error) {
	client, err := helpers.NewFetchClient(fetchCfg)
	if err != nil {
		return nil, apperr.NewConfiguration("invalid fetch configuration", err)
	}

	return &Scraper{
		baseURL:   baseURL,
		maxPages:  maxPages,
		client:    client,
		headers:   fetchCfg.Headers,
		selectors: DefaultSelectors(),
		now:       time.Now,
	}, nil
}

// Scrape runs the whole pipeline for one keyword: fetch the first page,
// discover pagination, fetch the remaining pages concurrently, collect
// listing nodes, extract fields, assemble records and drop unparseable
// ones. It returns the final records plus an optional truncation note.
func (s *Scraper) Scrape(ctx context.Context, keyword string) ([]Listing, string, error) {
	log := logger.ForScraper(keyword)

	firstURL := SearchURL(s.baseURL, keyword, 1)
	firstBody, err := helpers.FetchPage(ctx, s.client, firstURL, s.headers)
	if err != nil {
		return nil, "", apperr.NewFetch(keyword, "failed to fetch first page", err)
	}

	firstDoc, err := goquery.NewDocumentFromReader(bytes.NewReader(firstBody))
	if err != nil {
		return nil, "", apperr.NewExtraction(keyword, "failed to parse first page", err)
	}

	lastPage := LastPage(firstDoc, s.selectors)
	pages, note := CapPages(keyword, lastPage, s.maxPages)
	log.Debug().
		Int("last_page", lastPage).
		Int("pages", pages).
		Msg("Discovered pagination")

	bodies := [][]byte{firstBody}
	if pages > 1 {
		restURLs := PageURLs(s.baseURL, keyword, 2, pages)
		rest, err := helpers.FetchAll(ctx, s.client, restURLs, s.headers)
		if err != nil {
			return nil, "", apperr.NewFetch(keyword, "failed to fetch result pages", err)
		}
		bodies = append(bodies, rest...)
	}

	nodes, err := CollectListings(bodies, s.selectors)
	if err != nil {
		return nil, "", apperr.NewExtraction(keyword, "failed to collect listings", err)
	}

	listings := s.assemble(nodes, keyword)
	log.Info().
		Int("nodes", len(nodes)).
		Int("listings", len(listings)).
		Msg("Scrape complete")

	return listings, note, nil
}

// assemble zips the per-field extractor outputs positionally into one record
// per listing node, then drops records missing an id, price or listed date
func (s *Scraper) assemble(nodes []*goquery.Selection, keyword string) []Listing {
	extractor := NewExtractor(s.selectors, s.now)

	ids := extractor.ProductIDs(nodes)
	titles := extractor.Titles(nodes)
	prices := extractor.Prices(nodes)
	dates := extractor.ListedDates(nodes)
	links := extractor.Links(nodes)
	categories := extractor.Categories(nodes)
	locations := extractor.Locations(nodes)
	deliveries := extractor.Deliveries(nodes)
	images := extractor.Images(nodes)
	searchedDate := extractor.SearchedDate()

	var listings []Listing
	for i := range nodes {
		listing := Listing{
			ProductID:    ids.At(i),
			Title:        titles.At(i),
			Price:        prices.At(i),
			ListedDate:   dates.At(i),
			Link:         links.At(i),
			Category:     categories.At(i),
			Location:     locations.At(i),
			Delivery:     deliveries.At(i),
			Image:        images.At(i),
			SearchedDate: searchedDate,
			Keyword:      keyword,
		}

		// Listings without an id, price or date are non-offers ("call for
		// price") or unparseable; they never reach reconciliation
		if listing.ProductID == 0 || listing.Price == 0 || listing.ListedDate == "" {
			continue
		}

		listings = append(listings, listing)
	}

	return listings
}
