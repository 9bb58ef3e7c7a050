// Package backend builds the store adapter selected by DATA_BACKEND.
package backend

import (
	"context"
	"fmt"

	applog "finboard/internal/log"
	"finboard/internal/source/bigquery"
	"finboard/internal/source/gcs"
	"finboard/internal/source/google"
	"finboard/internal/source/memory"
	"finboard/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case BigQueryBackend:
		return f.createBigQueryBackend(ctx, config)
	case GCSBackend:
		return f.createGCSBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Fetcher: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := google.New(ctx, google.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "sheet", config.GoogleSheetName)

	return &BackendResult{Fetcher: cli}, nil
}

func (f *DefaultFactory) createBigQueryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	reader, err := bigquery.New(ctx, bigquery.Options{
		ProjectID: config.BigQueryProject,
		Dataset:   config.BigQueryDataset,
		Table:     config.BigQueryTable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize BigQuery reader: %w", err)
	}

	f.logger.Info("Initialized BigQuery backend",
		"project", config.BigQueryProject,
		"dataset", config.BigQueryDataset,
		"table", config.BigQueryTable)

	return &BackendResult{
		Fetcher: reader,
		Cleanup: reader.Close,
	}, nil
}

func (f *DefaultFactory) createGCSBackend(ctx context.Context, config Config) (*BackendResult, error) {
	obj, err := gcs.New(ctx, config.GCSBucket, config.GCSObject)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloud Storage client: %w", err)
	}

	f.logger.Info("Initialized Cloud Storage backend", "uri", gcs.URI(config.GCSBucket, config.GCSObject))

	return &BackendResult{
		Fetcher: obj,
		Cleanup: obj.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data" // Default directory
	}

	store, err := memory.NewFromDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory backend: %w", err)
	}

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)

	return &BackendResult{Fetcher: store}, nil
}
