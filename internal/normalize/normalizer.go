// Package normalize turns raw spreadsheet rows into canonical transactions.
//
// Normalization never drops rows and never aborts a batch: a field that
// cannot be parsed is flagged as missing on the transaction and recorded as
// a core.ParseError in the result.
package normalize

import (
	"slices"
	"strings"
	"time"

	"finboard/internal/core"
)

// Columns lists accepted header names per canonical field, in priority order.
// Names are compared after lower-casing and trimming.
type Columns struct {
	Timestamp []string
	Amount    []string
	Kind      []string
	Category  []string
	Merchant  []string
}

// DefaultColumns matches the bank_transactions sheet layout and common variants.
func DefaultColumns() Columns {
	return Columns{
		Timestamp: []string{"txn_timestamp", "timestamp", "date", "datetime", "txn_date", "transaction_date"},
		Amount:    []string{"amount", "amt", "value", "txn_amount"},
		Kind:      []string{"type", "kind", "txn_type", "transaction_type", "direction"},
		Category:  []string{"category", "primary", "category_name"},
		Merchant:  []string{"merchant", "payee", "description", "merchant_name"},
	}
}

// Options configures a Normalizer. Zero values select the defaults.
type Options struct {
	Columns  Columns
	Kinds    map[string]core.Kind // extra raw type values, merged over the built-in table
	DayFirst bool
	Location *time.Location
}

type Normalizer struct {
	cols     Columns
	kinds    map[string]core.Kind
	dayFirst bool
	loc      *time.Location
}

// Stats counts degraded rows in a normalized batch.
type Stats struct {
	Rows             int `json:"rows"`
	MissingTimestamp int `json:"missing_timestamp"`
	MissingAmount    int `json:"missing_amount"`
	UnknownKind      int `json:"unknown_kind"`
	EmptyCategory    int `json:"empty_category"`
}

type Result struct {
	Transactions []core.Transaction
	Issues       []*core.ParseError
	Stats        Stats
}

func New(opts Options) *Normalizer {
	cols := opts.Columns
	def := DefaultColumns()
	if len(cols.Timestamp) == 0 {
		cols.Timestamp = def.Timestamp
	}
	if len(cols.Amount) == 0 {
		cols.Amount = def.Amount
	}
	if len(cols.Kind) == 0 {
		cols.Kind = def.Kind
	}
	if len(cols.Category) == 0 {
		cols.Category = def.Category
	}
	if len(cols.Merchant) == 0 {
		cols.Merchant = def.Merchant
	}
	kinds := KindTable()
	for raw, k := range opts.Kinds {
		kinds[strings.ToLower(strings.TrimSpace(raw))] = k
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{cols: cols, kinds: kinds, dayFirst: opts.DayFirst, loc: loc}
}

// Normalize converts every record; the output has the same length and order.
func (n *Normalizer) Normalize(records []core.RawRecord) Result {
	res := Result{
		Transactions: make([]core.Transaction, 0, len(records)),
		Stats:        Stats{Rows: len(records)},
	}
	for i, rec := range records {
		tx, issues := n.normalizeRecord(i, rec)
		res.Transactions = append(res.Transactions, tx)
		res.Issues = append(res.Issues, issues...)
		if !tx.HasTimestamp() {
			res.Stats.MissingTimestamp++
		}
		if !tx.HasAmount() {
			res.Stats.MissingAmount++
		}
		if tx.Kind == core.KindUnknown {
			res.Stats.UnknownKind++
		}
		if tx.Category == "" {
			res.Stats.EmptyCategory++
		}
	}
	return res
}

func (n *Normalizer) normalizeRecord(seq int, rec core.RawRecord) (core.Transaction, []*core.ParseError) {
	fields := lowerKeys(rec)
	tx := core.Transaction{Seq: seq, Kind: core.KindUnknown}
	var issues []*core.ParseError

	rawTS := lookup(fields, n.cols.Timestamp)
	ts, err := ParseTimestamp(rawTS, n.dayFirst, n.loc)
	if err != nil {
		tx.Missing |= core.FieldTimestamp
		issues = append(issues, &core.ParseError{Row: seq, Field: core.FieldTimestamp, Value: rawTS, Err: err})
	} else {
		tx.Timestamp = ts
	}

	rawAmount := lookup(fields, n.cols.Amount)
	amount, negative, err := core.ParseAmount(rawAmount)
	if err != nil {
		tx.Missing |= core.FieldAmount
		issues = append(issues, &core.ParseError{Row: seq, Field: core.FieldAmount, Value: rawAmount, Err: err})
	} else {
		tx.Amount = amount
	}

	if k, ok := lookupKind(n.kinds, lookup(fields, n.cols.Kind)); ok {
		tx.Kind = k
	} else if err == nil && negative {
		// Pre-signed sources without a usable type column.
		tx.Kind = core.KindExpense
	}

	tx.Category = CleanCategory(lookup(fields, n.cols.Category))
	tx.Merchant = strings.Join(strings.Fields(lookup(fields, n.cols.Merchant)), " ")
	return tx, issues
}

// CleanCategory lower-cases a category label and collapses its whitespace.
func CleanCategory(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// lowerKeys folds header case and padding. When several headers fold to the
// same key, the first non-blank value in sorted header order wins.
func lowerKeys(rec core.RawRecord) map[string]string {
	out := make(map[string]string, len(rec))
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		v := rec[k]
		key := strings.ToLower(strings.TrimSpace(k))
		if prev, ok := out[key]; ok && strings.TrimSpace(prev) != "" {
			continue
		}
		out[key] = v
	}
	return out
}

func lookup(fields map[string]string, names []string) string {
	for _, name := range names {
		if v, ok := fields[name]; ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
