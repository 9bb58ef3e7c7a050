// Package bigquery reads transaction rows from a BigQuery table.
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"finboard/internal/core"
	"finboard/internal/source"
)

var _ source.TransactionFetcher = (*Reader)(nil)

var identRe = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

type Options struct {
	ProjectID string
	Dataset   string
	Table     string
}

// Validate checks that every identifier is set and safe to interpolate.
func (o Options) Validate() error {
	var errs []error
	for name, v := range map[string]string{"BIGQUERY_PROJECT": o.ProjectID, "BIGQUERY_DATASET": o.Dataset, "BIGQUERY_TABLE": o.Table} {
		switch {
		case v == "":
			errs = append(errs, fmt.Errorf("missing %s", name))
		case !identRe.MatchString(v):
			errs = append(errs, fmt.Errorf("invalid %s %q", name, v))
		}
	}
	return errors.Join(errs...)
}

// Reader runs a full-table SELECT and returns each row as strings.
type Reader struct {
	client *bigquery.Client
	opts   Options
}

// New creates a BigQuery client using application default credentials.
func New(ctx context.Context, opts Options) (*Reader, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	client, err := bigquery.NewClient(ctx, opts.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	return &Reader{client: client, opts: opts}, nil
}

func (r *Reader) Close() error {
	return r.client.Close()
}

func (r *Reader) query() string {
	return fmt.Sprintf("SELECT * FROM `%s.%s.%s`", r.opts.ProjectID, r.opts.Dataset, r.opts.Table)
}

func (r *Reader) FetchTransactions(ctx context.Context) ([]core.RawRecord, error) {
	it, err := r.client.Query(r.query()).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("bigquery: running select: %w", err)
	}
	var out []core.RawRecord
	for {
		var row map[string]bigquery.Value
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bigquery: reading row: %w", err)
		}
		out = append(out, toRecord(row))
	}
	slog.DebugContext(ctx, "Fetched BigQuery rows", "table", r.opts.Table, "rows", len(out))
	return out, nil
}

func toRecord(row map[string]bigquery.Value) core.RawRecord {
	rec := make(core.RawRecord, len(row))
	for k, v := range row {
		rec[k] = cell(v)
	}
	return rec
}

func cell(v bigquery.Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case *big.Rat:
		if x == nil {
			return ""
		}
		return x.FloatString(6)
	case []byte:
		return string(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
