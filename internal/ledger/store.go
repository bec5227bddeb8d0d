// Package ledger owns the in-memory expense ledger: the ordered record
// sequence plus the budget limit. Every mutation rewrites the full
// snapshot through the persistence adapter before returning.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/snapshot"
)

// DefaultBudgetCents is the budget limit used when no snapshot exists:
// 5000 currency units.
const DefaultBudgetCents = 500000

// Config carries the fixed category set and the starting budget into the
// store. Both are constructor inputs rather than package globals so that
// independent stores (tests included) never interfere.
type Config struct {
	Categories    []core.Category
	DefaultBudget core.Money
}

// DefaultConfig returns the closed category set and the reference default
// budget of 5000 units.
func DefaultConfig() Config {
	return Config{
		Categories:    core.Categories(),
		DefaultBudget: core.Money{Cents: DefaultBudgetCents},
	}
}

// Store is the ledger aggregate root. Records are kept newest first; that
// is the canonical list order. The mutex keeps the synchronous mutate-
// then-persist sequence intact when the store sits behind an HTTP server.
type Store struct {
	mu        sync.Mutex
	records   []core.Record
	budget    core.Money
	lastID    int64
	snapshots snapshot.Store
	cfg       Config
	now       func() time.Time
}

// Open loads the last snapshot from the adapter. An absent or malformed
// snapshot is not fatal: the store starts from an empty ledger and the
// default budget, per the load fallback policy.
func Open(ctx context.Context, snapshots snapshot.Store, cfg Config) (*Store, error) {
	if len(cfg.Categories) == 0 {
		cfg.Categories = core.Categories()
	}

	s := &Store{
		snapshots: snapshots,
		budget:    cfg.DefaultBudget,
		cfg:       cfg,
		now:       time.Now,
	}

	snap, ok, err := snapshots.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Snapshot load failed, starting from empty ledger",
			"error", err,
			"default_budget_cents", cfg.DefaultBudget.Cents)
		return s, nil
	}
	if !ok {
		slog.InfoContext(ctx, "No snapshot found, starting from empty ledger")
		return s, nil
	}

	s.records = snap.Records
	s.budget = core.Money{Cents: snap.BudgetCents}
	for _, r := range snap.Records {
		if r.ID > s.lastID {
			s.lastID = r.ID
		}
	}

	slog.InfoContext(ctx, "Ledger loaded from snapshot",
		"records", len(s.records),
		"budget_cents", s.budget.Cents)
	return s, nil
}

// Add validates the candidate, assigns a fresh id, prepends the record and
// persists the full snapshot. On validation failure nothing is mutated and
// the error wraps core.ErrInvalidInput. A failed persist does not undo the
// mutation: the stored record is returned together with the wrapped
// snapshot error so the caller can report it.
func (s *Store) Add(ctx context.Context, candidate core.Record) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate.Description = strings.TrimSpace(candidate.Description)
	if candidate.Date.IsZero() {
		// The UI defaults the date field to today; keep the same default
		// for callers that omit it.
		candidate.Date = core.DateOf(s.now())
	}
	if err := candidate.Validate(); err != nil {
		return core.Record{}, err
	}
	if !core.ValidCategory(candidate.Category, s.cfg.Categories) {
		return core.Record{}, fmt.Errorf("%w: %q", core.ErrUnknownCategory, candidate.Category)
	}

	// Creation-timestamp ids, bumped when two adds land on the same
	// millisecond so ids stay strictly increasing and never reused.
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	candidate.ID = id

	s.records = append([]core.Record{candidate}, s.records...)

	if err := s.persistLocked(ctx); err != nil {
		return candidate, err
	}
	return candidate, nil
}

// Remove deletes the record with the given id. Removing an absent id is a
// no-op, not an error; the snapshot is only rewritten when a record was
// actually removed.
func (s *Store) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	return nil
}

// List returns a copy of the record sequence, newest first.
func (s *Store) List() []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Record, len(s.records))
	copy(out, s.records)
	return out
}

// SetBudgetLimit stores a new budget limit and persists. Negative values
// are normalized to zero; the permissive string parsing for user input
// lives in core.ParseBudgetCents at the boundary.
func (s *Store) SetBudgetLimit(ctx context.Context, limit core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit.Cents < 0 {
		limit.Cents = 0
	}
	s.budget = limit
	return s.persistLocked(ctx)
}

// BudgetLimit returns the current budget limit.
func (s *Store) BudgetLimit() core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget
}

// Find returns the record with the given id, if present.
func (s *Store) Find(id int64) (core.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return core.Record{}, false
}

// Snapshot returns a copy of the full persisted state.
func (s *Store) Snapshot() snapshot.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() snapshot.Snapshot {
	records := make([]core.Record, len(s.records))
	copy(records, s.records)
	return snapshot.Snapshot{
		Records:     records,
		BudgetCents: s.budget.Cents,
	}
}

func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.snapshots.Save(ctx, s.snapshotLocked()); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}
