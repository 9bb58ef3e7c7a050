package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		neg   bool
		ok    bool
	}{
		{"1", 100, false, true},
		{"1.0", 100, false, true},
		{"1.23", 123, false, true},
		{"1,23", 123, false, true},
		{"0", 0, false, true},
		{"0.01", 1, false, true},
		{"1.005", 101, false, true}, // half away from zero
		{" 2.50 ", 250, false, true},
		{"-200", 20000, true, true},
		{"200-", 20000, true, true},
		{"(200.00)", 20000, true, true},
		{"+15", 1500, false, true},
		{"₹1,000", 100000, false, true},
		{"€ 12,34", 1234, false, true},
		{"$1,234,567.89", 123456789, false, true},
		{"1.234,56", 123456, false, true},
		{"1.234.567", 123456700, false, true},
		{"INR 1,500.50", 150050, false, true},
		{"12.50 EUR", 1250, false, true},
		{"1e+06", 100000000, false, true},
		{"abc", 0, false, false},
		{"1.2.3", 0, false, false},
		{"12abc34", 0, false, false},
		{"", 0, false, false},
		{"-", 0, false, false},
		{"1e5000000", 0, false, false},
		{"1e999999999", 0, false, false},
		{"1e-999999999", 0, false, false},
		{"-1e20", 0, false, false},
		{"123456789012345678901", 0, false, false},
		{"0e999999999", 0, false, true},
	}
	for _, tc := range cases {
		got, neg, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.cents || neg != tc.neg {
				t.Fatalf("%q expected %d (neg=%v), got %d (neg=%v, err=%v)", tc.in, tc.cents, tc.neg, got.Cents, neg, err)
			}
		} else {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		5:      "0.05",
		123456: "1234.56",
		-250:   "-2.50",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Fatalf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}

func TestMoneyFromUnits(t *testing.T) {
	if got := MoneyFromUnits(12.345); got.Cents != 1235 {
		t.Fatalf("expected 1235, got %d", got.Cents)
	}
	if got := MoneyFromUnits(-0.5); got.Cents != -50 {
		t.Fatalf("expected -50, got %d", got.Cents)
	}
}
