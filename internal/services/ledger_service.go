package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/ledger"
)

// LedgerService orchestrates ledger mutations and the AMQP sync events.
// The store is authoritative: a failed snapshot write or a failed publish
// is logged but never undoes a mutation that already happened in memory.
type LedgerService struct {
	store  *ledger.Store
	events *amqp.Client
}

func NewLedgerService(store *ledger.Store, events *amqp.Client) *LedgerService {
	return &LedgerService{
		store:  store,
		events: events,
	}
}

// Add validates and stores a new record, then publishes a sync event.
// Validation failures come back to the caller untouched; persistence and
// publish failures are reported in the log while the add still succeeds.
func (s *LedgerService) Add(ctx context.Context, candidate core.Record) (core.Record, error) {
	rec, err := s.store.Add(ctx, candidate)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			return core.Record{}, err
		}
		// The record is in memory; only the snapshot write failed.
		slog.ErrorContext(ctx, "Snapshot write failed after add",
			"id", rec.ID, "error", err)
	}

	if err := s.publish(ctx, amqp.NewRecordCreated(rec.ID)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record created event",
			"id", rec.ID, "error", err)
		// Don't fail the request - the record is saved locally.
	}

	return rec, nil
}

// Remove deletes a record by id (no-op when absent) and publishes a
// delete event so the remote copy follows.
func (s *LedgerService) Remove(ctx context.Context, id int64) error {
	if err := s.store.Remove(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Snapshot write failed after remove",
			"id", id, "error", err)
	}

	if err := s.publish(ctx, amqp.NewRecordDeleted(id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record deleted event",
			"id", id, "error", err)
	}

	return nil
}

// SetBudgetLimit stores a new budget limit. The budget is local-only
// state, so no event is published.
func (s *LedgerService) SetBudgetLimit(ctx context.Context, limit core.Money) error {
	if err := s.store.SetBudgetLimit(ctx, limit); err != nil {
		slog.ErrorContext(ctx, "Snapshot write failed after budget change",
			"limit_cents", limit.Cents, "error", err)
	}
	return nil
}

// List returns the current record sequence, newest first.
func (s *LedgerService) List() []core.Record {
	return s.store.List()
}

// BudgetLimit returns the current budget limit.
func (s *LedgerService) BudgetLimit() core.Money {
	return s.store.BudgetLimit()
}

func (s *LedgerService) publish(ctx context.Context, ev *amqp.RecordEvent) error {
	if s.events == nil {
		slog.DebugContext(ctx, "AMQP client not configured, skipping event", "kind", ev.Kind)
		return nil
	}
	return s.events.PublishRecordEvent(ctx, ev)
}

// Close releases the AMQP connection. The snapshot store is owned by the
// caller that opened it.
func (s *LedgerService) Close() error {
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			return fmt.Errorf("close amqp client: %w", err)
		}
	}
	return nil
}
