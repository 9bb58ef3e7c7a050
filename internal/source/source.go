// Package source defines the store adapter port and helpers shared by the
// concrete adapters.
package source

//go:generate mockgen -source=source.go -destination=mock_source.go -package=source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"finboard/internal/core"
)

// ErrNoHeader is returned when a tabular source has no header row.
var ErrNoHeader = errors.New("source has no header row")

// Ports for store adapters.
type (
	// TransactionFetcher returns every raw transaction row, one map per row,
	// keyed by the header names. It is a full-batch fetch.
	TransactionFetcher interface {
		FetchTransactions(ctx context.Context) ([]core.RawRecord, error)
	}

	// SnapshotWriter replaces the stored rows with records.
	SnapshotWriter interface {
		SaveSnapshot(ctx context.Context, records []core.RawRecord) (snapshotID string, err error)
	}
)

// Records pairs each row with header names. Short rows get empty values;
// cells beyond the header are dropped. Rows where every cell is blank are
// skipped.
func Records(header []string, rows [][]string) []core.RawRecord {
	out := make([]core.RawRecord, 0, len(rows))
	for _, row := range rows {
		if blank(row) {
			continue
		}
		rec := make(core.RawRecord, len(header))
		for i, name := range header {
			if strings.TrimSpace(name) == "" {
				continue
			}
			rec[name] = safeGet(row, i)
		}
		out = append(out, rec)
	}
	return out
}

// DecodeCSV reads a CSV document whose first line is the header.
func DecodeCSV(r io.Reader) ([]core.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}
	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return Records(header, rows[1:]), nil
}

// EncodeCSV writes records as CSV using header as the column order.
func EncodeCSV(w io.Writer, header []string, records []core.RawRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		row := make([]string, len(header))
		for i, name := range header {
			row[i] = rec[name]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Header returns the union of keys in records. Keys are taken record by
// record, each record's new keys in sorted order.
func Header(records []core.RawRecord) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
