// Package filter narrows canonical transactions to a date range and a set of
// categories.
package filter

import (
	"sort"
	"time"

	"finboard/internal/core"
	"finboard/internal/normalize"
)

// Criteria selects transactions whose calendar date lies in [Start, End] and
// whose category is in Categories. An empty Categories set selects nothing;
// use Default to build the "everything observed" criteria.
type Criteria struct {
	Start      time.Time
	End        time.Time
	Categories map[string]struct{}
}

// NewCriteria builds criteria from day bounds and category labels.
// Labels are cleaned the same way the normalizer cleans categories.
func NewCriteria(start, end time.Time, categories ...string) Criteria {
	c := Criteria{
		Start:      core.DateOf(start),
		End:        core.DateOf(end),
		Categories: make(map[string]struct{}, len(categories)),
	}
	for _, cat := range categories {
		if cat = normalize.CleanCategory(cat); cat != "" {
			c.Categories[cat] = struct{}{}
		}
	}
	return c
}

// Validate fails with *core.InvalidRangeError when Start is after End.
func (c Criteria) Validate() error {
	if core.DateOf(c.Start).After(core.DateOf(c.End)) {
		return &core.InvalidRangeError{Start: c.Start, End: c.End}
	}
	return nil
}

// CategoryList returns the selected categories sorted.
func (c Criteria) CategoryList() []string {
	out := make([]string, 0, len(c.Categories))
	for cat := range c.Categories {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// Matches reports whether tx passes the criteria. Transactions with a
// missing timestamp or an empty category never match.
func (c Criteria) Matches(tx core.Transaction) bool {
	if !tx.HasTimestamp() || tx.Category == "" {
		return false
	}
	d := tx.Date()
	if d.Before(core.DateOf(c.Start)) || d.After(core.DateOf(c.End)) {
		return false
	}
	_, ok := c.Categories[tx.Category]
	return ok
}

// Apply returns the matching subsequence, preserving relative order.
func Apply(txs []core.Transaction, c Criteria) ([]core.Transaction, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if c.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Options describes what a caller may filter on: the observed date bounds
// and the observed categories. It backs the dashboard's default selection.
type Options struct {
	First      time.Time `json:"first"`
	Last       time.Time `json:"last"`
	Categories []string  `json:"categories"`
	HasData    bool      `json:"has_data"`
}

// Observe scans transactions with a timestamp and a category.
func Observe(txs []core.Transaction) Options {
	opts := Options{Categories: []string{}}
	seen := map[string]struct{}{}
	for _, tx := range txs {
		if !tx.HasTimestamp() || tx.Category == "" {
			continue
		}
		d := tx.Date()
		if !opts.HasData || d.Before(opts.First) {
			opts.First = d
		}
		if !opts.HasData || d.After(opts.Last) {
			opts.Last = d
		}
		opts.HasData = true
		if _, ok := seen[tx.Category]; !ok {
			seen[tx.Category] = struct{}{}
			opts.Categories = append(opts.Categories, tx.Category)
		}
	}
	sort.Strings(opts.Categories)
	return opts
}

// Default returns criteria spanning the full observed range and every
// observed category. With no usable transactions it selects nothing.
func Default(txs []core.Transaction) Criteria {
	o := Observe(txs)
	return NewCriteria(o.First, o.Last, o.Categories...)
}
