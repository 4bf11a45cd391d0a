package scraper

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time {
	return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
}

const listingHTML = `<html><body>
	<div class="contentArea">
		<section class="reLiSection imageBox"><a href="#"><img src="https://img.example.com/1.jpg"/></a></section>
		<h3 class="item-title"><a class="subject" href="https://www.jofogas.hu/budapest/iphone_14_128gb_123456789.htm"> iPhone 14 </a></h3>
		<div class="time">tegnap 10:30</div>
		<span class="price-value">150 000 Ft</span>
		<div class="category">Mobiltelefon</div>
		<section class="reLiSection cityname">Budapest</section>
		<section class="reLiSection badges">Üzleti
Házhozszállítás</section>
	</div>
	<div class="contentArea">
		<section class="reLiSection imageBox"><a href="#"><img src="https://img.example.com/2.jpg"/></a></section>
		<h3 class="item-title"><a class="subject" href="https://www.jofogas.hu/pest/iphone_13_987654321.htm">iPhone 13</a></h3>
		<div class="time">márc 5. 14:20</div>
		<span class="price-value"></span>
		<div class="category">Mobiltelefon</div>
	</div>
</body></html>`

func parseNodes(t *testing.T, html string) []*goquery.Selection {
	t.Helper()
	nodes, err := CollectListings([][]byte{[]byte(html)}, DefaultSelectors())
	require.NoError(t, err)
	return nodes
}

func TestExtractorFields(t *testing.T) {
	nodes := parseNodes(t, listingHTML)
	require.Len(t, nodes, 2)

	extractor := NewExtractor(DefaultSelectors(), fixedNow)

	ids := extractor.ProductIDs(nodes)
	assert.False(t, ids.Absent)
	assert.Equal(t, []int64{123456789, 987654321}, ids.Values)

	titles := extractor.Titles(nodes)
	assert.Equal(t, []string{"iPhone 14", "iPhone 13"}, titles.Values)

	prices := extractor.Prices(nodes)
	assert.Equal(t, []int{150000, 0}, prices.Values)

	dates := extractor.ListedDates(nodes)
	assert.Equal(t, []string{"Mar 09", "Mar 5"}, dates.Values)

	links := extractor.Links(nodes)
	assert.Equal(t, "https://www.jofogas.hu/budapest/iphone_14_128gb_123456789.htm", links.At(0))

	categories := extractor.Categories(nodes)
	assert.Equal(t, []string{"Mobiltelefon", "Mobiltelefon"}, categories.Values)

	locations := extractor.Locations(nodes)
	assert.Equal(t, "Budapest", locations.At(0))
	assert.Equal(t, "", locations.At(1))

	deliveries := extractor.Deliveries(nodes)
	assert.Equal(t, "(Üzleti) Házhozszállítás", deliveries.At(0))
	assert.Equal(t, "", deliveries.At(1))

	images := extractor.Images(nodes)
	assert.Equal(t, []string{"https://img.example.com/1.jpg", "https://img.example.com/2.jpg"}, images.Values)

	assert.Equal(t, 20240310, extractor.SearchedDate())
}

// Every extractor must return one value per node
func TestExtractorLengthMatchesBatch(t *testing.T) {
	nodes := parseNodes(t, listingHTML)
	extractor := NewExtractor(DefaultSelectors(), fixedNow)

	assert.Equal(t, len(nodes), extractor.ProductIDs(nodes).Len())
	assert.Equal(t, len(nodes), extractor.Titles(nodes).Len())
	assert.Equal(t, len(nodes), extractor.Prices(nodes).Len())
	assert.Equal(t, len(nodes), extractor.ListedDates(nodes).Len())
	assert.Equal(t, len(nodes), extractor.Links(nodes).Len())
	assert.Equal(t, len(nodes), extractor.Categories(nodes).Len())
	assert.Equal(t, len(nodes), extractor.Locations(nodes).Len())
	assert.Equal(t, len(nodes), extractor.Deliveries(nodes).Len())
	assert.Equal(t, len(nodes), extractor.Images(nodes).Len())
}

// A selector that matches nothing anywhere in the batch downgrades the whole
// field to absent instead of aborting the batch
func TestExtractorBatchShapeFailure(t *testing.T) {
	html := `<html><body>
		<div class="contentArea"><h3 class="item-title"><a class="subject" href="/x_1.htm">A</a></h3></div>
		<div class="contentArea"><h3 class="item-title"><a class="subject" href="/y_2.htm">B</a></h3></div>
	</body></html>`
	nodes := parseNodes(t, html)
	extractor := NewExtractor(DefaultSelectors(), fixedNow)

	prices := extractor.Prices(nodes)
	assert.True(t, prices.Absent)
	assert.Equal(t, 0, prices.At(0))

	dates := extractor.ListedDates(nodes)
	assert.True(t, dates.Absent)
	assert.Equal(t, "", dates.At(1))

	// Fields whose markup is present stay extracted
	titles := extractor.Titles(nodes)
	assert.False(t, titles.Absent)
	assert.Equal(t, []string{"A", "B"}, titles.Values)
}

// A single node missing its selector yields a default for that node only
func TestExtractorPerNodeFailureStaysLocal(t *testing.T) {
	html := `<html><body>
		<div class="contentArea">
			<h3 class="item-title"><a class="subject" href="/a_11.htm">A</a></h3>
			<span class="price-value">1 000 Ft</span>
		</div>
		<div class="contentArea">
			<h3 class="item-title"><a class="subject" href="/b_22.htm">B</a></h3>
		</div>
	</body></html>`
	nodes := parseNodes(t, html)
	extractor := NewExtractor(DefaultSelectors(), fixedNow)

	prices := extractor.Prices(nodes)
	assert.False(t, prices.Absent)
	assert.Equal(t, []int{1000, 0}, prices.Values)
}

func TestParseProductID(t *testing.T) {
	testCases := []struct {
		href     string
		expected int64
	}{
		{"https://www.jofogas.hu/budapest/iphone_14_128gb_123456789.htm", 123456789},
		{"/pest/tv_55_7654321.htm", 7654321},
		{"no-id-here", 0},
		{"", 0},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, parseProductID(tc.href), "href: %q", tc.href)
	}
}

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		raw      string
		expected int
	}{
		{"150 000 Ft", 150000},
		{"1.500.000 Ft", 1500000},
		{"", 0},
		{"Ár nélkül", 0},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, parsePrice(tc.raw), "raw: %q", tc.raw)
	}
}

func TestFieldAt(t *testing.T) {
	f := Field[string]{Values: []string{"a", "b"}}
	assert.Equal(t, "a", f.At(0))
	assert.Equal(t, "", f.At(5))
	assert.Equal(t, "", f.At(-1))

	absent := AbsentField[string]()
	assert.True(t, absent.Absent)
	assert.Equal(t, "", absent.At(0))
}

func TestBatchAbsentEmptyBatch(t *testing.T) {
	assert.False(t, batchAbsent(nil, "div.time"))
}

func TestCollectListingsPreservesOrder(t *testing.T) {
	page1 := `<div class="contentArea"><a class="subject">one</a></div><div class="contentArea"><a class="subject">two</a></div>`
	page2 := `<div class="contentArea"><a class="subject">three</a></div>`

	nodes, err := CollectListings([][]byte{[]byte(page1), []byte(page2)}, DefaultSelectors())
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	var titles []string
	for _, node := range nodes {
		titles = append(titles, strings.TrimSpace(node.Find("a.subject").Text()))
	}
	assert.Equal(t, []string{"one", "two", "three"}, titles)
}
