package scraper

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"pricewatch/jofogasworker/helpers"
)

// SearchURL builds the listing-page URL for a keyword and page number
func SearchURL(baseURL, keyword string, page int) string {
	return fmt.Sprintf("%s/magyarorszag?q=%s&o=%d", baseURL, url.QueryEscape(keyword), page)
}

// LastPage inspects the pager of the first result page and returns the total
// page count. A missing pager means a single-page result, not an error.
func LastPage(doc *goquery.Document, selectors Selectors) int {
	href, exists := doc.Find(selectors.PagerLast).Attr("href")
	if !exists {
		return 1
	}

	last, err := strconv.Atoi(helpers.GetLastSplitPart(href, "="))
	if err != nil || last < 1 {
		return 1
	}
	return last
}

// CapPages limits the discovered page count to maxPages. When the true count
// exceeds the cap, a human-readable truncation note is produced.
func CapPages(keyword string, lastPage, maxPages int) (int, string) {
	if lastPage <= maxPages {
		return lastPage, ""
	}

	note := fmt.Sprintf(
		`Note: Your search for "%s" returned a large number of results, with a total of %d pages. `+
			`Consider using a more specific keyword for a search f.e. "iPhone 14 Pro 128GB" instead of "iPhone". `+
			`We have provided the first %d pages of this specific search.`,
		keyword, lastPage, maxPages)

	return maxPages, note
}

// PageURLs builds the URL set for pages from..to inclusive
func PageURLs(baseURL, keyword string, from, to int) []string {
	var urls []string
	for page := from; page <= to; page++ {
		urls = append(urls, SearchURL(baseURL, keyword, page))
	}
	return urls
}
