package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spendlog/internal/snapshot"

	_ "modernc.org/sqlite"
)

// snapshotKey is the single row the ledger snapshot lives under.
const snapshotKey = "ledger"

// SQLiteStore persists the serialized ledger snapshot in a single-row
// key/value table. Every save overwrites the previous payload.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
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

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap snapshot.Snapshot) error {
	payload, err := snapshot.Encode(snap)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		snapshotKey, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: write snapshot: %v", snapshot.ErrUnavailable, err)
	}

	slog.DebugContext(ctx, "Snapshot saved to SQLite",
		"records", len(snap.Records),
		"budget_cents", snap.BudgetCents,
		"bytes", len(payload))
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (snapshot.Snapshot, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE key = ?`, snapshotKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return snapshot.Snapshot{}, false, nil
	}
	if err != nil {
		return snapshot.Snapshot{}, false, fmt.Errorf("%w: read snapshot: %v", snapshot.ErrUnavailable, err)
	}

	snap, err := snapshot.Decode(payload)
	if err != nil {
		return snapshot.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
