package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "id"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "id", CredentialsFile: "/nonexistent/creds.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetchTransactions_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if _, err := c.FetchTransactions(context.Background()); err == nil {
		t.Fatal("expected error with nil service")
	}
}

func TestFetchTransactions_AgainstFakeAPI(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"range": "bank_transactions!A1:E3",
			"values": [][]any{
				{"Date", "Amount", "Type", "Category"},
				{"2024-01-05", "1000", "Income", "Salary"},
				{"2024-01-10", "200", "Expense", "Food"},
			},
		})
	}))
	defer srv.Close()

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	c := NewWithService(svc, "sheet-id", "")
	got, err := c.FetchTransactions(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 || got[0]["Category"] != "Salary" {
		t.Fatalf("unexpected records %v", got)
	}
	if !strings.Contains(gotPath, "sheet-id") || !strings.Contains(gotPath, "bank_transactions") {
		t.Fatalf("unexpected request path %q", gotPath)
	}
}
