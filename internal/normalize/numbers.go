package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Hem1234567/laras-07/internal/model"
)

var (
	plainNumber = regexp.MustCompile(`^\d+(\.\d+)?$`)
	kmSuffix    = regexp.MustCompile(`(?i)\s*km$`)
)

// ParseNumber accepts an unsigned decimal ("12", "1200.5") and returns 0 for
// anything else, including thousands separators, signs and units.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if !plainNumber.MatchString(s) {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseLength strips a trailing kilometre unit before ParseNumber.
func ParseLength(s string) float64 {
	return ParseNumber(kmSuffix.ReplaceAllString(strings.TrimSpace(s), ""))
}

var dateLayouts = []string{
	model.DateLayout,
	"02-01-2006",
	"02/01/2006",
	"2-1-2006",
	"2/1/2006",
	"02.01.2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"02 January 2006",
	"2 January 2006",
	"2 January, 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate reads the day-first date formats used on Indian government
// pages. Unparsable input returns nil.
func ParseDate(s string) *model.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &model.Date{Time: t}
		}
	}
	return nil
}
