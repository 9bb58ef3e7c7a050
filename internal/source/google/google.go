// Package google reads transaction rows from a Google Sheets worksheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"finboard/internal/core"
	"finboard/internal/source"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Options configures the Sheets adapter. Credentials are taken from
// CredentialsJSON, then CredentialsFile.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ source.TransactionFetcher = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, opts.SpreadsheetID, opts.SheetName), nil
}

// NewWithService wraps an existing service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = "bank_transactions"
	}
	return &Client{svc: svc, spreadsheetID: strings.TrimSpace(spreadsheetID), sheetName: sheetName}
}

// newSheetsService initializes a read-only Sheets service from service
// account credentials.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	credentialsJSON := []byte(strings.TrimSpace(opts.CredentialsJSON))
	file := strings.TrimSpace(opts.CredentialsFile)

	switch {
	case len(credentialsJSON) > 0:
		slog.DebugContext(ctx, "Using inline JSON credentials")
	case file != "":
		slog.DebugContext(ctx, "Reading credentials from file", "path", file)
		var err error
		credentialsJSON, err = os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// FetchTransactions reads the whole worksheet. The first non-empty row is
// the header.
func (c *Client) FetchTransactions(ctx context.Context) ([]core.RawRecord, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quoteSheet(c.sheetName)).
		ValueRenderOption("FORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", c.sheetName, err)
	}
	records, err := parseValues(resp.Values)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", c.sheetName, err)
	}
	slog.DebugContext(ctx, "Fetched sheet rows", "sheet", c.sheetName, "rows", len(records))
	return records, nil
}

// quoteSheet wraps names with spaces or punctuation in single quotes, as
// A1 notation requires.
func quoteSheet(name string) string {
	for _, r := range name {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return "'" + strings.ReplaceAll(name, "'", "''") + "'"
		}
	}
	return name
}
