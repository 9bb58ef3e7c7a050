package source

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"finboard/internal/core"
)

func TestRecordsPadsAndSkipsBlankRows(t *testing.T) {
	header := []string{"Date", "Amount", "", "Category"}
	rows := [][]string{
		{"2024-01-05", "10", "ignored", "food", "extra"},
		{"  ", ""},
		{"2024-01-06"},
	}
	got := Records(header, rows)
	want := []core.RawRecord{
		{"Date": "2024-01-05", "Amount": "10", "Category": "food"},
		{"Date": "2024-01-06", "Amount": "", "Category": ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDecodeCSV(t *testing.T) {
	in := "\ufefftxn_timestamp,amount,type,category,merchant\n" +
		"2024-01-05,\"1,000.00\",Credit,Salary,ACME\n" +
		"2024-01-10,200,Debit,Food\n"
	got, err := DecodeCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0]["txn_timestamp"] != "2024-01-05" || got[0]["amount"] != "1,000.00" {
		t.Fatalf("unexpected first record %v", got[0])
	}
	if got[1]["merchant"] != "" {
		t.Fatalf("expected empty merchant, got %q", got[1]["merchant"])
	}
}

func TestDecodeCSVEmpty(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader(""))
	if !errors.Is(err, ErrNoHeader) {
		t.Fatalf("expected ErrNoHeader, got %v", err)
	}
}

func TestEncodeDecodeKeepsValues(t *testing.T) {
	records := []core.RawRecord{
		{"date": "2024-01-05", "amount": "1,000.00", "category": "Salary"},
		{"date": "2024-01-06", "merchant": "Corner \"Shop\""},
	}
	header := Header(records)
	if !reflect.DeepEqual(header, []string{"amount", "category", "date", "merchant"}) {
		t.Fatalf("unexpected header %v", header)
	}
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, header, records); err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := DecodeCSV(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back[1]["merchant"] != "Corner \"Shop\"" || back[0]["amount"] != "1,000.00" {
		t.Fatalf("values changed: %v", back)
	}
}
