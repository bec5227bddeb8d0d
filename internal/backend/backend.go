// Package backend creates the snapshot store the ledger persists through,
// selected by configuration.
package backend

import (
	"fmt"
	"log/slog"

	"spendlog/internal/config"
	"spendlog/internal/snapshot"
	"spendlog/internal/storage"
)

// Type represents the kind of snapshot persistence backing the ledger.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	FileBackend   Type = "file"
)

func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is supported.
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, FileBackend:
		return true
	default:
		return false
	}
}

// Result holds the created store. Close releases whatever resources the
// concrete store holds.
type Result struct {
	Store snapshot.Store
}

// Factory creates snapshot stores based on configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the snapshot store named by the application config.
func (f *Factory) Create(cfg *config.Config) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app config is nil")
	}

	backendType := Type(cfg.DataBackend)
	switch backendType {
	case SQLiteBackend:
		store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: store}, nil

	case FileBackend:
		store, err := storage.NewFileStore(cfg.SnapshotPath)
		if err != nil {
			return nil, fmt.Errorf("initialize file store: %w", err)
		}
		f.logger.Info("Initialized file backend", "path", cfg.SnapshotPath)
		return &Result{Store: store}, nil

	default:
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}
}
