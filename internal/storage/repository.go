package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"finboard/internal/core"
	"finboard/internal/source"

	_ "modernc.org/sqlite"
)

var (
	_ source.TransactionFetcher = (*SQLiteRepository)(nil)
	_ source.SnapshotWriter     = (*SQLiteRepository)(nil)
)

// ErrNoSnapshot is returned when the database holds no snapshot yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// createdAtLayout is fixed width so created_at orders correctly as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository stores raw row snapshots. Reads always use the most
// recent snapshot.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db), now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// FetchTransactions returns the rows of the latest snapshot. An empty
// database yields no rows.
func (r *SQLiteRepository) FetchTransactions(ctx context.Context) ([]core.RawRecord, error) {
	snap, err := r.queries.LatestSnapshot(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		slog.WarnContext(ctx, "No snapshot in SQLite, returning no rows")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	return r.SnapshotRecords(ctx, snap.ID)
}

// SnapshotRecords returns the rows of one snapshot in their original order.
func (r *SQLiteRepository) SnapshotRecords(ctx context.Context, id string) ([]core.RawRecord, error) {
	rows, err := r.queries.SnapshotRows(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("snapshot rows %s: %w", id, err)
	}
	out := make([]core.RawRecord, 0, len(rows))
	for i, data := range rows {
		var rec core.RawRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("snapshot %s row %d: %w", id, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// SaveSnapshot stores records as a new snapshot labelled "import".
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, records []core.RawRecord) (string, error) {
	return r.SaveSnapshotFrom(ctx, "import", records)
}

// SaveSnapshotFrom stores records as a new snapshot in one transaction.
func (r *SQLiteRepository) SaveSnapshotFrom(ctx context.Context, sourceName string, records []core.RawRecord) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := r.queries.WithTx(tx)
	snap := Snapshot{
		ID:        uuid.NewString(),
		Source:    sourceName,
		RowCount:  int64(len(records)),
		CreatedAt: r.now().UTC().Format(createdAtLayout),
	}
	if err := q.CreateSnapshot(ctx, snap); err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return "", fmt.Errorf("encode row %d: %w", i, err)
		}
		if err := q.InsertRow(ctx, snap.ID, int64(i), string(data)); err != nil {
			return "", fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot saved to SQLite",
		"id", snap.ID,
		"source", sourceName,
		"rows", snap.RowCount)
	return snap.ID, nil
}

// ListSnapshots returns every snapshot, newest first.
func (r *SQLiteRepository) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	items, err := r.queries.ListSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return items, nil
}

// Prune deletes all but the newest keep snapshots and returns how many were
// removed.
func (r *SQLiteRepository) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		return 0, fmt.Errorf("prune: keep must be at least 1, got %d", keep)
	}
	items, err := r.ListSnapshots(ctx)
	if err != nil {
		return 0, err
	}
	if len(items) <= keep {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	q := r.queries.WithTx(tx)
	for _, s := range items[keep:] {
		if err := q.DeleteSnapshot(ctx, s.ID); err != nil {
			return 0, fmt.Errorf("delete snapshot %s: %w", s.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(items) - keep, nil
}
