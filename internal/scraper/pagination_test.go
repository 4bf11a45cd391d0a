package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchURL(t *testing.T) {
	assert.Equal(t,
		"https://www.jofogas.hu/magyarorszag?q=iphone&o=1",
		SearchURL("https://www.jofogas.hu", "iphone", 1))

	// Keywords with spaces must be query-escaped
	assert.Equal(t,
		"https://www.jofogas.hu/magyarorszag?q=iphone+14+pro&o=3",
		SearchURL("https://www.jofogas.hu", "iphone 14 pro", 3))
}

func TestLastPage(t *testing.T) {
	html := `<html><body>
		<a class="ad-list-pager-item-last" href="/magyarorszag?q=iphone&o=12">last</a>
	</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	assert.Equal(t, 12, LastPage(doc, DefaultSelectors()))
}

func TestLastPageMissingPager(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)

	// A missing pager means a single-page result, not an error
	assert.Equal(t, 1, LastPage(doc, DefaultSelectors()))
}

func TestLastPageUnparseableHref(t *testing.T) {
	html := `<a class="ad-list-pager-item-last" href="/magyarorszag?q=iphone">last</a>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	assert.Equal(t, 1, LastPage(doc, DefaultSelectors()))
}

func TestCapPages(t *testing.T) {
	pages, note := CapPages("iphone", 12, 5)
	assert.Equal(t, 5, pages)
	assert.NotEmpty(t, note)
	assert.Contains(t, note, "12")
	assert.Contains(t, note, "5")
	assert.Contains(t, note, `"iphone"`)

	pages, note = CapPages("iphone", 3, 5)
	assert.Equal(t, 3, pages)
	assert.Empty(t, note)

	pages, note = CapPages("iphone", 5, 5)
	assert.Equal(t, 5, pages)
	assert.Empty(t, note)
}

func TestPageURLs(t *testing.T) {
	urls := PageURLs("https://www.jofogas.hu", "tv", 2, 4)
	assert.Equal(t, []string{
		"https://www.jofogas.hu/magyarorszag?q=tv&o=2",
		"https://www.jofogas.hu/magyarorszag?q=tv&o=3",
		"https://www.jofogas.hu/magyarorszag?q=tv&o=4",
	}, urls)

	assert.Empty(t, PageURLs("https://www.jofogas.hu", "tv", 2, 1))
}
