// Package worker mirrors the local ledger to the remote expense API. It
// replays record events from the queue and runs a periodic reconcile sweep
// to repair whatever the event stream missed.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/remote"
	"spendlog/internal/snapshot"
)

type SyncWorker struct {
	snapshots snapshot.Store
	remote    remote.Ledger
	ownerID   string
	batchSize int
	interval  time.Duration
}

func NewSyncWorker(snapshots snapshot.Store, rl remote.Ledger, ownerID string, batchSize int, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		snapshots: snapshots,
		remote:    rl,
		ownerID:   ownerID,
		batchSize: batchSize,
		interval:  interval,
	}
}

// HandleEvent processes a single record event from the queue. A returned
// error means the event should be redelivered; authorization failures and
// already-deleted records are terminal and consume the event.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.RecordEvent) error {
	slog.InfoContext(ctx, "Processing record event", "kind", ev.Kind, "id", ev.ID)

	switch ev.Kind {
	case amqp.EventRecordCreated:
		return w.handleCreated(ctx, ev.ID)
	case amqp.EventRecordDeleted:
		return w.handleDeleted(ctx, ev.ID)
	default:
		slog.WarnContext(ctx, "Dropping event of unknown kind", "kind", ev.Kind, "id", ev.ID)
		return nil
	}
}

func (w *SyncWorker) handleCreated(ctx context.Context, id int64) error {
	snap, ok, err := w.snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if !ok {
		slog.WarnContext(ctx, "No snapshot available, skipping create event", "id", id)
		return nil
	}

	rec, found := findRecord(snap.Records, id)
	if !found {
		// Deleted locally before we got here; the delete event will follow.
		slog.WarnContext(ctx, "Record no longer in snapshot, skipping", "id", id)
		return nil
	}

	if _, err := w.remote.Create(ctx, w.ownerID, rec); err != nil {
		if errors.Is(err, remote.ErrNotAuthorized) {
			slog.ErrorContext(ctx, "Remote rejected create as unauthorized", "id", id, "error", err)
			return nil
		}
		return fmt.Errorf("create remote record %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Synced record to remote", "id", id)
	return nil
}

func (w *SyncWorker) handleDeleted(ctx context.Context, id int64) error {
	if err := w.remote.Delete(ctx, id, w.ownerID); err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			// Already gone remotely.
			return nil
		}
		if errors.Is(err, remote.ErrNotAuthorized) {
			slog.ErrorContext(ctx, "Remote rejected delete as unauthorized", "id", id, "error", err)
			return nil
		}
		return fmt.Errorf("delete remote record %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Deleted record from remote", "id", id)
	return nil
}

// Reconcile compares the local snapshot with the remote ledger and repairs
// the difference, creating missing records and deleting orphans. At most
// batchSize mutations run per sweep; the rest wait for the next tick.
func (w *SyncWorker) Reconcile(ctx context.Context) error {
	snap, ok, err := w.snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if !ok {
		slog.InfoContext(ctx, "No snapshot available, skipping reconcile")
		return nil
	}

	remoteRecords, err := w.remote.List(ctx, w.ownerID)
	if err != nil {
		return fmt.Errorf("list remote records: %w", err)
	}

	local := make(map[int64]core.Record, len(snap.Records))
	for _, r := range snap.Records {
		local[r.ID] = r
	}
	seen := make(map[int64]bool, len(remoteRecords))
	for _, r := range remoteRecords {
		seen[r.ID] = true
	}

	var created, deleted int
	budget := w.batchSize

	for _, r := range snap.Records {
		if budget <= 0 {
			break
		}
		if seen[r.ID] {
			continue
		}
		if _, err := w.remote.Create(ctx, w.ownerID, r); err != nil {
			if errors.Is(err, remote.ErrNotAuthorized) {
				return fmt.Errorf("reconcile create %d: %w", r.ID, err)
			}
			slog.ErrorContext(ctx, "Reconcile create failed", "id", r.ID, "error", err)
			continue
		}
		created++
		budget--
	}

	for _, r := range remoteRecords {
		if budget <= 0 {
			break
		}
		if _, exists := local[r.ID]; exists {
			continue
		}
		if err := w.remote.Delete(ctx, r.ID, w.ownerID); err != nil {
			if errors.Is(err, remote.ErrNotFound) {
				continue
			}
			slog.ErrorContext(ctx, "Reconcile delete failed", "id", r.ID, "error", err)
			continue
		}
		deleted++
		budget--
	}

	slog.InfoContext(ctx, "Reconcile sweep finished",
		"local", len(snap.Records),
		"remote", len(remoteRecords),
		"created", created,
		"deleted", deleted)
	return nil
}

// Run consumes record events and runs the periodic reconcile sweep until
// the context is cancelled.
func (w *SyncWorker) Run(ctx context.Context, events *amqp.Client) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return events.ConsumeRecordEvents(ctx, func(ev *amqp.RecordEvent) error {
			return w.HandleEvent(ctx, ev)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		// One sweep at startup so a fresh worker converges immediately.
		if err := w.Reconcile(ctx); err != nil {
			slog.ErrorContext(ctx, "Initial reconcile failed", "error", err)
		}

		for {
			select {
			case <-ticker.C:
				if err := w.Reconcile(ctx); err != nil {
					slog.ErrorContext(ctx, "Reconcile failed", "error", err)
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	return g.Wait()
}

func findRecord(records []core.Record, id int64) (core.Record, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return core.Record{}, false
}
