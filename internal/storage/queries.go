package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Snapshot struct {
	ID        string
	Source    string
	RowCount  int64
	CreatedAt string
}

const createSnapshot = `INSERT INTO snapshots (id, source, row_count, created_at) VALUES (?, ?, ?, ?)`

func (q *Queries) CreateSnapshot(ctx context.Context, s Snapshot) error {
	_, err := q.db.ExecContext(ctx, createSnapshot, s.ID, s.Source, s.RowCount, s.CreatedAt)
	return err
}

const insertRow = `INSERT INTO snapshot_rows (snapshot_id, seq, data) VALUES (?, ?, ?)`

func (q *Queries) InsertRow(ctx context.Context, snapshotID string, seq int64, data string) error {
	_, err := q.db.ExecContext(ctx, insertRow, snapshotID, seq, data)
	return err
}

const latestSnapshot = `SELECT id, source, row_count, created_at FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1`

func (q *Queries) LatestSnapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	err := q.db.QueryRowContext(ctx, latestSnapshot).Scan(&s.ID, &s.Source, &s.RowCount, &s.CreatedAt)
	return s, err
}

const listSnapshots = `SELECT id, source, row_count, created_at FROM snapshots ORDER BY created_at DESC, rowid DESC`

func (q *Queries) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := q.db.QueryContext(ctx, listSnapshots)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.Source, &s.RowCount, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const snapshotRows = `SELECT data FROM snapshot_rows WHERE snapshot_id = ? ORDER BY seq`

func (q *Queries) SnapshotRows(ctx context.Context, snapshotID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, snapshotRows, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		items = append(items, data)
	}
	return items, rows.Err()
}

const deleteSnapshotRows = `DELETE FROM snapshot_rows WHERE snapshot_id = ?`

const deleteSnapshot = `DELETE FROM snapshots WHERE id = ?`

func (q *Queries) DeleteSnapshot(ctx context.Context, id string) error {
	if _, err := q.db.ExecContext(ctx, deleteSnapshotRows, id); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx, deleteSnapshot, id)
	return err
}
