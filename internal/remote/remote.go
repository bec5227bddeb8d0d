// Package remote defines the boundary to the multi-user CRUD backend that
// mirrors the personal ledger. The core never talks to it directly; the
// sync worker replays local mutations through this interface.
package remote

import (
	"context"
	"errors"

	"spendlog/internal/core"
)

var (
	// ErrNotAuthorized means the record's owner does not match the
	// requesting identity. Terminal; never retried.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrNotFound means no record with that id exists remotely.
	// Terminal; never retried.
	ErrNotFound = errors.New("record not found")
)

// Ledger is the remote collaborator contract. Create is keyed on the
// record id, so replaying the same mutation twice converges instead of
// duplicating rows.
type Ledger interface {
	List(ctx context.Context, ownerID string) ([]core.Record, error)
	Create(ctx context.Context, ownerID string, rec core.Record) (core.Record, error)
	Delete(ctx context.Context, recordID int64, ownerID string) error
}
