package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	KindUnknown Kind = "unknown"
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Fields that may fail to parse during normalization.
const (
	FieldTimestamp Field = 1 << iota
	FieldAmount
)

type (
	Kind string

	// Field is a bit set of canonical transaction fields.
	Field uint8

	// RawRecord is one row as fetched from a store: header name -> cell text.
	RawRecord map[string]string

	Money struct {
		Cents int64
	}

	// Transaction is a canonical, normalized transaction row.
	//
	// Amount is always an unsigned magnitude; the direction is carried by
	// Kind. Fields listed in Missing failed to parse and hold zero values.
	Transaction struct {
		Seq       int // position in the fetched batch
		Timestamp time.Time
		Amount    Money
		Kind      Kind
		Category  string
		Merchant  string
		Missing   Field
	}

	// CategoryAmount represents an amount aggregated by category name.
	CategoryAmount struct {
		Name   string `json:"name"`
		Amount Money  `json:"amount"`
	}
)

// IsValid reports whether k is one of the three known kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindIncome, KindExpense, KindUnknown:
		return true
	default:
		return false
	}
}

func (f Field) String() string {
	var parts []string
	if f&FieldTimestamp != 0 {
		parts = append(parts, "timestamp")
	}
	if f&FieldAmount != 0 {
		parts = append(parts, "amount")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// Has reports whether the field parsed successfully.
func (t Transaction) Has(f Field) bool {
	return t.Missing&f == 0
}

// HasTimestamp is shorthand for Has(FieldTimestamp).
func (t Transaction) HasTimestamp() bool {
	return t.Has(FieldTimestamp)
}

// HasAmount is shorthand for Has(FieldAmount).
func (t Transaction) HasAmount() bool {
	return t.Has(FieldAmount)
}

// Date returns the calendar day of the timestamp at midnight UTC.
func (t Transaction) Date() time.Time {
	return DateOf(t.Timestamp)
}

// Signed returns +amount for income, -amount for expense and zero otherwise.
func (t Transaction) Signed() Money {
	if !t.HasAmount() {
		return Money{}
	}
	switch t.Kind {
	case KindIncome:
		return t.Amount
	case KindExpense:
		return Money{Cents: -t.Amount.Cents}
	default:
		return Money{}
	}
}

func (t Transaction) String() string {
	ts := "-"
	if t.HasTimestamp() {
		ts = t.Timestamp.Format(time.RFC3339)
	}
	amt := "-"
	if t.HasAmount() {
		amt = t.Amount.String()
	}
	return fmt.Sprintf("#%d %s %s %s %q", t.Seq, ts, t.Kind, amt, t.Category)
}

// MarshalJSON writes missing fields as null.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type wire struct {
		Seq       int        `json:"seq"`
		Timestamp *time.Time `json:"timestamp"`
		Amount    *Money     `json:"amount"`
		Kind      Kind       `json:"kind"`
		Category  string     `json:"category"`
		Merchant  string     `json:"merchant,omitempty"`
	}
	w := wire{Seq: t.Seq, Kind: t.Kind, Category: t.Category, Merchant: t.Merchant}
	if t.HasTimestamp() {
		ts := t.Timestamp
		w.Timestamp = &ts
	}
	if t.HasAmount() {
		amt := t.Amount
		w.Amount = &amt
	}
	return json.Marshal(w)
}

// DateOf truncates t to its calendar day, keeping the wall-clock date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDate creates a UTC midnight time from year, month, day.
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
