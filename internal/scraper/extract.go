package scraper

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"pricewatch/jofogasworker/helpers"
)

// Extractor turns a batch of listing nodes into per-field value sequences.
// Every extractor returns one value per node, or the uniform absent marker
// when the field's markup is missing from the entire batch.
type Extractor struct {
	selectors Selectors
	now       func() time.Time
}

// NewExtractor creates an extractor for the given page schema
func NewExtractor(selectors Selectors, now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{selectors: selectors, now: now}
}

// batchAbsent reports a batch-shape failure: a non-empty batch in which the
// selector matches nothing at all
func batchAbsent(nodes []*goquery.Selection, selector string) bool {
	if len(nodes) == 0 {
		return false
	}
	for _, node := range nodes {
		if node.Find(selector).Length() > 0 {
			return false
		}
	}
	return true
}

// ProductIDs extracts the numeric product id from each listing link. The id
// is the last underscore-separated token of the link's path basename.
func (e *Extractor) ProductIDs(nodes []*goquery.Selection) Field[int64] {
	if batchAbsent(nodes, e.selectors.TitleLink) {
		return AbsentField[int64]()
	}

	ids := make([]int64, len(nodes))
	for i, node := range nodes {
		href, exists := node.Find(e.selectors.TitleLink).Attr("href")
		if !exists {
			continue
		}
		ids[i] = parseProductID(href)
	}
	return Field[int64]{Values: ids}
}

func parseProductID(href string) int64 {
	base := helpers.GetLastSplitPart(href, "/")
	base, _, _ = strings.Cut(base, ".")
	idString := helpers.GetLastSplitPart(base, "_")

	id, err := strconv.ParseInt(idString, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Titles extracts the listing titles
func (e *Extractor) Titles(nodes []*goquery.Selection) Field[string] {
	if batchAbsent(nodes, e.selectors.Subject) {
		return AbsentField[string]()
	}

	titles := make([]string, len(nodes))
	for i, node := range nodes {
		titles[i] = strings.TrimSpace(node.Find(e.selectors.Subject).Text())
	}
	return Field[string]{Values: titles}
}

// Prices extracts whole-number prices, stripping every non-digit character.
// A missing or empty price string yields 0 for that node.
func (e *Extractor) Prices(nodes []*goquery.Selection) Field[int] {
	if batchAbsent(nodes, e.selectors.Price) {
		return AbsentField[int]()
	}

	prices := make([]int, len(nodes))
	for i, node := range nodes {
		raw := strings.TrimSpace(node.Find(e.selectors.Price).Text())
		prices[i] = parsePrice(raw)
	}
	return Field[int]{Values: prices}
}

func parsePrice(raw string) int {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	price, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return price
}

// ListedDates extracts and normalizes the listing dates. A node without a
// date element yields an empty string, which later filtering drops.
func (e *Extractor) ListedDates(nodes []*goquery.Selection) Field[string] {
	if batchAbsent(nodes, e.selectors.Time) {
		return AbsentField[string]()
	}

	now := e.now()
	dates := make([]string, len(nodes))
	for i, node := range nodes {
		timeSel := node.Find(e.selectors.Time)
		if timeSel.Length() == 0 {
			continue
		}
		dates[i] = normalizeListedDate(strings.TrimSpace(timeSel.Text()), now)
	}
	return Field[string]{Values: dates}
}

// Links extracts the listing detail-page links
func (e *Extractor) Links(nodes []*goquery.Selection) Field[string] {
	if batchAbsent(nodes, e.selectors.TitleLink) {
		return AbsentField[string]()
	}

	links := make([]string, len(nodes))
	for i, node := range nodes {
		if href, exists := node.Find(e.selectors.TitleLink).Attr("href"); exists {
			links[i] = strings.TrimSpace(href)
		}
	}
	return Field[string]{Values: links}
}

// Categories extracts the listing categories
func (e *Extractor) Categories(nodes []*goquery.Selection) Field[string] {
	if batchAbsent(nodes, e.selectors.Category) {
		return AbsentField[string]()
	}

	categories := make([]string, len(nodes))
	for i, node := range nodes {
		categories[i] = strings.TrimSpace(node.Find(e.selectors.Category).Text())
	}
	return Field[string]{Values: categories}
}

// Locations extracts the seller locations; listings without one yield ""
func (e *Extractor) Locations(nodes []*goquery.Selection) Field[string] {
	if batchAbsent(nodes, e.selectors.Location) {
		return AbsentField[string]()
	}

	locations := make([]string, len(nodes))
	for i, node := range nodes {
		locations[i] = strings.TrimSpace(node.Find(e.selectors.Location).Text())
	}
	return Field[string]{Values: locations}
}

// Deliveries extracts the delivery badges. The business-seller marker is
// rewritten to a parenthesized prefix.
func (e *Extractor) Deliveries(nodes []*goquery.Selection) Field[string] {
	if batchAbsent(nodes, e.selectors.Badges) {
		return AbsentField[string]()
	}

	deliveries := make([]string, len(nodes))
	for i, node := range nodes {
		badgeSel := node.Find(e.selectors.Badges)
		if badgeSel.Length() == 0 {
			continue
		}
		deliveries[i] = strings.ReplaceAll(strings.TrimSpace(badgeSel.Text()), "Üzleti\n", "(Üzleti) ")
	}
	return Field[string]{Values: deliveries}
}

// Images extracts the listing image URLs
func (e *Extractor) Images(nodes []*goquery.Selection) Field[string] {
	if batchAbsent(nodes, e.selectors.Image) {
		return AbsentField[string]()
	}

	images := make([]string, len(nodes))
	for i, node := range nodes {
		if src, exists := node.Find(e.selectors.Image).Attr("src"); exists {
			images[i] = strings.TrimSpace(src)
		}
	}
	return Field[string]{Values: images}
}

// SearchedDate returns the scrape date as a YYYYMMDD integer, identical for
// every record in the batch
func (e *Extractor) SearchedDate() int {
	date, _ := strconv.Atoi(e.now().Format("20060102"))
	return date
}
