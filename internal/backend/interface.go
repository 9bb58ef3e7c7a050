package backend

import (
	"context"

	"finboard/internal/source"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the store adapter and an optional cleanup function.
type BackendResult struct {
	Fetcher source.TransactionFetcher
	Cleanup CleanupFunc
}

// Close runs Cleanup if one is set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// BigQuery specific
	BigQueryProject string
	BigQueryDataset string
	BigQueryTable   string

	// Cloud Storage specific
	GCSBucket string
	GCSObject string

	// Memory backend specific
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	SheetsBackend   BackendType = "sheets"
	MemoryBackend   BackendType = "memory"
	BigQueryBackend BackendType = "bigquery"
	GCSBackend      BackendType = "gcs"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend, BigQueryBackend, GCSBackend:
		return true
	default:
		return false
	}
}

// Live reports whether the backend reads rows that change outside finboard.
// The sqlite backend is the snapshot store itself.
func (bt BackendType) Live() bool {
	return bt.IsValid() && bt != SQLiteBackend
}
