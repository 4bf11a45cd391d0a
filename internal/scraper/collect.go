package scraper

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// CollectListings parses raw page bodies and returns every listing container
// node as one flat sequence, preserving page order and within-page order
func CollectListings(bodies [][]byte, selectors Selectors) ([]*goquery.Selection, error) {
	var nodes []*goquery.Selection
	for i, body := range bodies {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("parse page %d: %w", i+1, err)
		}
		doc.Find(selectors.Listing).Each(func(_ int, s *goquery.Selection) {
			nodes = append(nodes, s)
		})
	}
	return nodes, nil
}
