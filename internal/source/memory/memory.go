package memory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"finboard/internal/core"
	"finboard/internal/source"
)

// FileName is the CSV file read from the data directory.
const FileName = "transactions.csv"

var (
	_ source.TransactionFetcher = (*Store)(nil)
	_ source.SnapshotWriter     = (*Store)(nil)
)

// Store keeps raw rows in memory.
type Store struct {
	mu        sync.Mutex
	records   []core.RawRecord
	snapshots int
}

func New(records []core.RawRecord) *Store {
	return &Store{records: cloneAll(records)}
}

// NewFromDir loads base/transactions.csv. A missing file yields an empty
// store; a malformed one is an error.
func NewFromDir(base string) (*Store, error) {
	path := filepath.Join(base, FileName)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := source.DecodeCSV(f)
	if errors.Is(err, source.ErrNoHeader) {
		return New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return New(records), nil
}

// FetchTransactions returns a copy of the stored rows.
func (s *Store) FetchTransactions(ctx context.Context) ([]core.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.records), nil
}

// SaveSnapshot replaces the stored rows.
func (s *Store) SaveSnapshot(_ context.Context, records []core.RawRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = cloneAll(records)
	s.snapshots++
	return fmt.Sprintf("mem:%d", s.snapshots), nil
}

func cloneAll(in []core.RawRecord) []core.RawRecord {
	out := make([]core.RawRecord, len(in))
	for i, rec := range in {
		c := make(core.RawRecord, len(rec))
		for k, v := range rec {
			c[k] = v
		}
		out[i] = c
	}
	return out
}
