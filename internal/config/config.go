package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Backends accepted by DATA_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSheets   = "sheets"
	BackendSQLite   = "sqlite"
	BackendBigQuery = "bigquery"
	BackendGCS      = "gcs"
)

var validBackends = []string{BackendMemory, BackendSheets, BackendSQLite, BackendBigQuery, BackendGCS}

type Config struct {
	// HTTP Server
	Port               string
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration

	// Backend selection
	DataBackend string
	DataDir     string

	// Database
	SQLiteDBPath string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// BigQuery
	BigQueryProject string
	BigQueryDataset string
	BigQueryTable   string

	// Cloud Storage
	GCSBucket string
	GCSObject string

	// AMQP
	AMQPURL              string
	AMQPExchange         string
	AMQPRequestQueue     string
	AMQPReportRoutingKey string

	// Snapshot scheduler
	SnapshotInterval time.Duration
	SnapshotKeep     int

	// Pipeline
	ForecastHorizon int
	TopN            int
	DateDayFirst    bool
	Timezone        string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	credFile := getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	if credFile == "" {
		credFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),

		DataBackend: getEnv("DATA_BACKEND", BackendMemory),
		DataDir:     getEnv("DATA_DIR", "data"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finboard.db"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "bank_transactions"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: credFile,

		BigQueryProject: getEnv("BIGQUERY_PROJECT", ""),
		BigQueryDataset: getEnv("BIGQUERY_DATASET", ""),
		BigQueryTable:   getEnv("BIGQUERY_TABLE", ""),

		GCSBucket: getEnv("GCS_BUCKET", ""),
		GCSObject: getEnv("GCS_OBJECT", "transactions.csv"),

		AMQPURL:              getEnv("AMQP_URL", ""),
		AMQPExchange:         getEnv("AMQP_EXCHANGE", "finboard"),
		AMQPRequestQueue:     getEnv("AMQP_REQUEST_QUEUE", "dashboard_refresh"),
		AMQPReportRoutingKey: getEnv("AMQP_REPORT_ROUTING_KEY", "dashboard.report"),

		SnapshotInterval: getEnvDuration("SNAPSHOT_INTERVAL", 0),
		SnapshotKeep:     getEnvInt("SNAPSHOT_KEEP", 10),

		ForecastHorizon: getEnvInt("FORECAST_HORIZON", 6),
		TopN:            getEnvInt("TOP_N", 10),
		DateDayFirst:    getEnvBool("DATE_DAY_FIRST", false),
		Timezone:        getEnv("TIMEZONE", "UTC"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// Location resolves Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}

	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets backend")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets backend")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}

	case BackendBigQuery:
		if c.BigQueryProject == "" || c.BigQueryDataset == "" || c.BigQueryTable == "" {
			errors = append(errors, "BIGQUERY_PROJECT, BIGQUERY_DATASET and BIGQUERY_TABLE are required when using bigquery backend")
		}

	case BackendGCS:
		if c.GCSBucket == "" || c.GCSObject == "" {
			errors = append(errors, "GCS_BUCKET and GCS_OBJECT are required when using gcs backend")
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRequestQueue == "" {
			errors = append(errors, "AMQP request queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate pipeline settings
	if c.ForecastHorizon < 1 || c.ForecastHorizon > 60 {
		errors = append(errors, fmt.Sprintf("invalid forecast horizon %d: must be between 1 and 60", c.ForecastHorizon))
	}
	if c.TopN < 1 || c.TopN > 1000 {
		errors = append(errors, fmt.Sprintf("invalid top N %d: must be between 1 and 1000", c.TopN))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}
	if c.SnapshotInterval < 0 {
		errors = append(errors, fmt.Sprintf("invalid snapshot interval %v: must not be negative", c.SnapshotInterval))
	}
	if c.SnapshotInterval > 0 {
		if c.DataBackend == BackendSQLite {
			errors = append(errors, "SNAPSHOT_INTERVAL needs a live data backend: sqlite is the snapshot store")
		}
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when SNAPSHOT_INTERVAL is set")
		}
	}
	if c.SnapshotKeep < 0 {
		errors = append(errors, fmt.Sprintf("invalid snapshot keep %d: must not be negative", c.SnapshotKeep))
	}
	if c.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be positive", c.RequestTimeout))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
