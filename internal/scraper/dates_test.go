package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeListedDate(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		raw      string
		expected string
	}{
		{
			raw:      "tegnap 10:30",
			expected: "Mar 09",
		},
		{
			raw:      "ma",
			expected: "Mar 10",
		},
		{
			raw:      "ma 08:15",
			expected: "Mar 10",
		},
		{
			raw:      "több, mint egy hónapja",
			expected: "more than 1 month",
		},
		{
			raw:      "márc 5. 14:20",
			expected: "Mar 5",
		},
		{
			raw:      "ápr 12",
			expected: "Apr 12",
		},
		{
			raw:      "máj 1.",
			expected: "May 1",
		},
		{
			raw:      "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, normalizeListedDate(tc.raw, now), "raw: %q", tc.raw)
	}
}

func TestNormalizeListedDateYearBoundary(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)
	assert.Equal(t, "Dec 31", normalizeListedDate("tegnap 23:59", now))
	assert.Equal(t, "Jan 01", normalizeListedDate("ma 00:10", now))
}
