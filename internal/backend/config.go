package backend

import (
	"fmt"

	"finboard/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,

		BigQueryProject: appConfig.BigQueryProject,
		BigQueryDataset: appConfig.BigQueryDataset,
		BigQueryTable:   appConfig.BigQueryTable,

		GCSBucket: appConfig.GCSBucket,
		GCSObject: appConfig.GCSObject,

		DataDirectory: appConfig.DataDir,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}

	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			return fmt.Errorf("either GoogleServiceAccountJSON or GoogleServiceAccountFile must be provided for sheets backend")
		}

	case BigQueryBackend:
		if c.BigQueryProject == "" || c.BigQueryDataset == "" || c.BigQueryTable == "" {
			return fmt.Errorf("BigQuery project, dataset and table are required for bigquery backend")
		}

	case GCSBackend:
		if c.GCSBucket == "" || c.GCSObject == "" {
			return fmt.Errorf("GCS bucket and object are required for gcs backend")
		}

	case MemoryBackend:
		// DataDirectory defaults to "data" if empty
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SheetsBackend, SQLiteBackend, BigQueryBackend, GCSBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
