// Package snapshot defines the persistence port of the ledger: the whole
// ledger state is serialized and written wholesale after every mutation,
// and read back once at startup. Adapters treat the payload as opaque
// bytes; the wire layout lives here.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"spendlog/internal/core"
)

// ErrUnavailable marks a failed adapter read or write. Stores wrap their
// medium-specific errors with it so callers can match the condition
// without knowing the storage backend.
var ErrUnavailable = errors.New("snapshot store unavailable")

// Snapshot is the full persisted ledger state: the ordered record list
// (newest first) plus the single budget limit.
type Snapshot struct {
	Records     []core.Record `json:"records"`
	BudgetCents int64         `json:"budget_cents"`
}

// Store is the persistence adapter consumed by the ledger.
type Store interface {
	// Save overwrites the previously stored snapshot.
	Save(ctx context.Context, snap Snapshot) error
	// Load returns the last saved snapshot. ok is false when no snapshot
	// has ever been saved; a malformed payload is an error.
	Load(ctx context.Context) (snap Snapshot, ok bool, err error)
	Close() error
}

// Encode serializes a snapshot to its canonical JSON payload. Amounts are
// written as integer cents and dates as YYYY-MM-DD strings, so a decode of
// the result reproduces the snapshot exactly, order included.
func Encode(snap Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a payload produced by Encode.
func Decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
