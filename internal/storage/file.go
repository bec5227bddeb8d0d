package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"spendlog/internal/snapshot"
)

// FileStore persists the serialized ledger snapshot as a single JSON file.
// Writes go through a temp file plus rename so a crash never leaves a torn
// payload.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Save(ctx context.Context, snap snapshot.Snapshot) error {
	payload, err := snapshot.Encode(snap)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0644); err != nil {
		return fmt.Errorf("%w: write snapshot file: %v", snapshot.ErrUnavailable, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: replace snapshot file: %v", snapshot.ErrUnavailable, err)
	}

	slog.DebugContext(ctx, "Snapshot saved to file",
		"path", s.path,
		"records", len(snap.Records),
		"bytes", len(payload))
	return nil
}

func (s *FileStore) Load(ctx context.Context) (snapshot.Snapshot, bool, error) {
	payload, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return snapshot.Snapshot{}, false, nil
	}
	if err != nil {
		return snapshot.Snapshot{}, false, fmt.Errorf("%w: read snapshot file: %v", snapshot.ErrUnavailable, err)
	}

	snap, err := snapshot.Decode(payload)
	if err != nil {
		return snapshot.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *FileStore) Close() error {
	return nil
}
