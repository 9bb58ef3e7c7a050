package google

import (
	"errors"
	"testing"

	"finboard/internal/source"
)

func TestParseValues_HeaderAfterBlankRows(t *testing.T) {
	values := [][]interface{}{
		{},
		{"", " "},
		{"txn_timestamp", "amount", "type", "category", "merchant"},
		{"2024-01-05 09:30:00", 1000.0, "Credit", "Salary", "ACME"},
		{"2024-01-10", "200", "Debit", "Food"},
		{"", "", ""},
	}
	got, err := parseValues(values)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d: %v", len(got), got)
	}
	if got[0]["amount"] != "1000" {
		t.Fatalf("numeric cell not stringified: %q", got[0]["amount"])
	}
	if got[1]["merchant"] != "" || got[1]["category"] != "Food" {
		t.Fatalf("unexpected second record %v", got[1])
	}
}

func TestParseValues_Empty(t *testing.T) {
	if _, err := parseValues(nil); !errors.Is(err, source.ErrNoHeader) {
		t.Fatalf("expected ErrNoHeader, got %v", err)
	}
	got, err := parseValues([][]interface{}{{"date", "amount"}})
	if err != nil || len(got) != 0 {
		t.Fatalf("expected no records, got %v err=%v", got, err)
	}
}

func TestQuoteSheet(t *testing.T) {
	cases := map[string]string{
		"bank_transactions": "bank_transactions",
		"2024 Expenses":     "'2024 Expenses'",
		"Bob's":             "'Bob''s'",
	}
	for in, want := range cases {
		if got := quoteSheet(in); got != want {
			t.Errorf("quoteSheet(%q) = %q, want %q", in, got, want)
		}
	}
}
