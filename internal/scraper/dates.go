package scraper

import (
	"strings"
	"time"
)

// moreThanOneMonth is the label for the site's fixed "older than a month" phrase
const moreThanOneMonth = "more than 1 month"

// monthReplacer maps the site's abbreviated Hungarian month tokens to English
var monthReplacer = strings.NewReplacer(
	"márc", "Mar",
	"ápr", "Apr",
	"máj", "May",
)

// normalizeListedDate turns a raw listing date string into a normalized
// month/day label. Relative tokens are resolved against now; trailing
// time-of-day suffixes after the first "." are dropped.
func normalizeListedDate(raw string, now time.Time) string {
	switch {
	case strings.HasPrefix(raw, "tegnap"):
		return now.AddDate(0, 0, -1).Format("Jan 02")
	case strings.HasPrefix(raw, "ma"):
		return now.Format("Jan 02")
	case raw == "több, mint egy hónapja":
		return moreThanOneMonth
	}

	if idx := strings.Index(raw, "."); idx >= 0 {
		raw = raw[:idx]
	}

	return monthReplacer.Replace(raw)
}
