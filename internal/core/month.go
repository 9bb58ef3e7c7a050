package core

import (
	"fmt"
	"time"
)

// Month is a calendar month key, e.g. 2024-01.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a "2006-01" key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Start returns midnight UTC of the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	return m.AddMonths(1)
}

// AddMonths advances m by n calendar months (n may be negative).
func (m Month) AddMonths(n int) Month {
	idx := m.Year*12 + int(m.Month) - 1 + n
	return Month{Year: idx / 12, Month: time.Month(idx%12 + 1)}
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// MonthsBetween returns the inclusive, contiguous list of months from first to last.
// It returns nil when last is before first.
func MonthsBetween(first, last Month) []Month {
	if last.Before(first) {
		return nil
	}
	var out []Month
	for m := first; !last.Before(m); m = m.Next() {
		out = append(out, m)
	}
	return out
}

// WeekStart returns the Monday (midnight UTC) of the week containing t.
func WeekStart(t time.Time) time.Time {
	d := DateOf(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return d.AddDate(0, 0, -offset)
}
