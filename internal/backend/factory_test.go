package backend

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"finboard/internal/config"
	applog "finboard/internal/log"
)

func quietFactory() Factory {
	return NewFactory(applog.New(applog.Config{Output: &bytes.Buffer{}}))
}

func TestBackendType(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Fatalf("%s should be valid", bt)
		}
	}
	if BackendType("postgres").IsValid() {
		t.Fatalf("postgres should not be valid")
	}
	for _, bt := range []BackendType{SheetsBackend, BigQueryBackend, GCSBackend, MemoryBackend} {
		if !bt.Live() {
			t.Fatalf("%s reads a live source", bt)
		}
	}
	if SQLiteBackend.Live() || BackendType("postgres").Live() {
		t.Fatalf("sqlite is the snapshot store, not a live source")
	}
	if got := strings.Join(GetBackendTypeStrings(), ","); got != "memory,sheets,sqlite,bigquery,gcs" {
		t.Fatalf("unexpected backend list %q", got)
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "nope"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "gcs", GCSBucket: "b", GCSObject: "o.csv", DataDir: "d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != GCSBackend || cfg.GCSBucket != "b" || cfg.DataDirectory != "d" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"sheets without credentials", Config{Type: SheetsBackend, GoogleSpreadsheetID: "id"}, true},
		{"sheets with inline credentials", Config{Type: SheetsBackend, GoogleSpreadsheetID: "id", GoogleServiceAccountJSON: "{}"}, false},
		{"bigquery without table", Config{Type: BigQueryBackend, BigQueryProject: "p", BigQueryDataset: "d"}, true},
		{"gcs without object", Config{Type: GCSBackend, GCSBucket: "b"}, true},
		{"unknown", Config{Type: "nope"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	dir := t.TempDir()
	csv := "date,amount,type,category\n2024-01-05,1000,Income,Salary\n"
	if err := os.WriteFile(filepath.Join(dir, "transactions.csv"), []byte(csv), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := quietFactory().CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()

	records, err := res.Fetcher.FetchTransactions(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 1 || records[0]["category"] != "Salary" {
		t.Fatalf("unexpected records %v", records)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "finboard.db")
	res, err := quietFactory().CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()

	records, err := res.Fetcher.FetchTransactions(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty database, got %d rows", len(records))
	}
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	if _, err := quietFactory().CreateBackend(context.Background(), Config{Type: SheetsBackend}); err == nil {
		t.Fatalf("expected validation error")
	}
}
