package storage

import (
	"context"
	"path/filepath"
	"testing"

	"spendlog/internal/snapshot"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "spendlog.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	defer store.Close()

	_, ok, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if ok {
		t.Fatalf("expected absent snapshot in a fresh database")
	}

	want := testSnapshot()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatalf("expected snapshot present after save")
	}
	assertSnapshotEqual(t, got, want)

	// A second save replaces the single snapshot row.
	if err := store.Save(ctx, snapshot.Snapshot{BudgetCents: 42}); err != nil {
		t.Fatalf("overwrite save: %v", err)
	}
	got, ok, err = store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("reload: ok=%v err=%v", ok, err)
	}
	if got.BudgetCents != 42 || len(got.Records) != 0 {
		t.Fatalf("expected overwritten snapshot, got %+v", got)
	}
}
