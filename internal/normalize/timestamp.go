package normalize

import (
	"strconv"
	"strings"
	"time"

	"finboard/internal/core"
)

// Layouts tried in order. Slash and dash forms with a two-digit first
// component are ambiguous and resolved by DayFirst.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"2006.01.02",
	"20060102",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006 15:04",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"Mon, 02 Jan 2006 15:04:05 -0700",
	"Mon Jan 2 15:04:05 2006",
}

var monthFirstLayouts = []string{
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"01-02-2006",
	"1/2/06",
}

var dayFirstLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"2/1/06",
}

// Spreadsheet serial dates count days from 1899-12-30.
var sheetsEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Serials are accepted only from 1970-01-01 through 9999-12-31; smaller bare
// numbers are years, counts or ids rather than dates.
const (
	minSerial = 25569
	maxSerial = 2958466
)

// ParseTimestamp parses a date-time cell tolerantly. Values without a zone
// are interpreted in loc. It returns core.ErrInvalidTimestamp instead of
// guessing when nothing matches.
func ParseTimestamp(s string, dayFirst bool, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, core.ErrInvalidTimestamp
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	primary, secondary := monthFirstLayouts, dayFirstLayouts
	if dayFirst {
		primary, secondary = dayFirstLayouts, monthFirstLayouts
	}
	for _, layouts := range [][]string{primary, secondary} {
		for _, layout := range layouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, nil
			}
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= minSerial && f < maxSerial {
		days := int(f)
		frac := f - float64(days)
		t := sheetsEpoch.AddDate(0, 0, days).Add(time.Duration(frac * float64(24*time.Hour)).Round(time.Second))
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}

	return time.Time{}, core.ErrInvalidTimestamp
}
