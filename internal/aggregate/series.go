package aggregate

import (
	"sort"
	"time"

	"finboard/internal/core"
)

type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// Bucket is one point of a time series. Start is midnight UTC of the first
// day in the bucket; weeks start on Monday.
type Bucket struct {
	Start   time.Time  `json:"start"`
	Label   string     `json:"label"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Count   int        `json:"count"`
}

// Net returns income minus expense for the bucket.
func (b Bucket) Net() core.Money {
	return b.Income.Sub(b.Expense)
}

// Series groups transactions with a timestamp by the given granularity.
// Daily series contain only days that have transactions; weekly and monthly
// series are contiguous between the first and last bucket, zero-filled.
func Series(txs []core.Transaction, g Granularity) []Bucket {
	byStart := map[time.Time]*Bucket{}
	for _, tx := range txs {
		if !tx.HasTimestamp() {
			continue
		}
		start := bucketStart(tx.Timestamp, g)
		b, ok := byStart[start]
		if !ok {
			b = &Bucket{Start: start, Label: bucketLabel(start, g)}
			byStart[start] = b
		}
		b.Count++
		if !tx.HasAmount() {
			continue
		}
		switch tx.Kind {
		case core.KindIncome:
			b.Income = b.Income.Add(tx.Amount)
		case core.KindExpense:
			b.Expense = b.Expense.Add(tx.Amount)
		}
	}
	if len(byStart) == 0 {
		return []Bucket{}
	}

	starts := make([]time.Time, 0, len(byStart))
	for s := range byStart {
		starts = append(starts, s)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	if g == Day {
		out := make([]Bucket, 0, len(starts))
		for _, s := range starts {
			out = append(out, *byStart[s])
		}
		return out
	}

	out := []Bucket{}
	last := starts[len(starts)-1]
	for s := starts[0]; !s.After(last); s = nextBucket(s, g) {
		if b, ok := byStart[s]; ok {
			out = append(out, *b)
			continue
		}
		out = append(out, Bucket{Start: s, Label: bucketLabel(s, g)})
	}
	return out
}

func bucketStart(t time.Time, g Granularity) time.Time {
	switch g {
	case Week:
		return core.WeekStart(t)
	case Month:
		return core.MonthOf(t).Start()
	default:
		return core.DateOf(t)
	}
}

func nextBucket(t time.Time, g Granularity) time.Time {
	switch g {
	case Week:
		return t.AddDate(0, 0, 7)
	case Month:
		return core.MonthOf(t).Next().Start()
	default:
		return t.AddDate(0, 0, 1)
	}
}

func bucketLabel(t time.Time, g Granularity) string {
	if g == Month {
		return core.MonthOf(t).String()
	}
	return t.Format(time.DateOnly)
}

// MonthlySeries is the summed amount of one kind per calendar month.
// Months is contiguous; months without transactions of that kind hold zero.
type MonthlySeries struct {
	Kind    core.Kind    `json:"kind"`
	Months  []core.Month `json:"-"`
	Amounts []core.Money `json:"amounts"`
}

// Len returns the number of months in the series.
func (s MonthlySeries) Len() int {
	return len(s.Months)
}

// Get returns the amount for m and whether m is inside the series.
func (s MonthlySeries) Get(m core.Month) (core.Money, bool) {
	for i, mm := range s.Months {
		if mm == m {
			return s.Amounts[i], true
		}
	}
	return core.Money{}, false
}

// Labels returns the month keys of the series.
func (s MonthlySeries) Labels() []string {
	out := make([]string, len(s.Months))
	for i, m := range s.Months {
		out[i] = m.String()
	}
	return out
}

// MonthlyByKind sums amounts of the given kind per month over [first, last].
func MonthlyByKind(txs []core.Transaction, kind core.Kind, first, last core.Month) MonthlySeries {
	months := core.MonthsBetween(first, last)
	s := MonthlySeries{Kind: kind, Months: months, Amounts: make([]core.Money, len(months))}
	if len(months) == 0 {
		return s
	}
	index := make(map[core.Month]int, len(months))
	for i, m := range months {
		index[m] = i
	}
	for _, tx := range txs {
		if tx.Kind != kind || !tx.HasTimestamp() || !tx.HasAmount() {
			continue
		}
		if i, ok := index[core.MonthOf(tx.Timestamp)]; ok {
			s.Amounts[i] = s.Amounts[i].Add(tx.Amount)
		}
	}
	return s
}

// MonthlyPair returns income and expense series over the same contiguous
// months, spanning the first to the last month that has any transaction.
func MonthlyPair(txs []core.Transaction) (income, expense MonthlySeries) {
	first, last, ok := monthRange(txs)
	if !ok {
		return MonthlySeries{Kind: core.KindIncome, Amounts: []core.Money{}}, MonthlySeries{Kind: core.KindExpense, Amounts: []core.Money{}}
	}
	return MonthlyByKind(txs, core.KindIncome, first, last), MonthlyByKind(txs, core.KindExpense, first, last)
}

func monthRange(txs []core.Transaction) (first, last core.Month, ok bool) {
	for _, tx := range txs {
		if !tx.HasTimestamp() {
			continue
		}
		m := core.MonthOf(tx.Timestamp)
		if !ok || m.Before(first) {
			first = m
		}
		if !ok || last.Before(m) {
			last = m
		}
		ok = true
	}
	return first, last, ok
}
