package report

import (
	"testing"
	"time"

	"spendlog/internal/core"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)
}

func TestBuildFiltersAndTotals(t *testing.T) {
	records := []core.Record{
		{ID: 2, Date: core.NewDate(2024, 5, 3), Description: "Bus", Amount: core.Money{Cents: 15000}, Category: core.CategoryTransport},
		{ID: 1, Date: core.NewDate(2024, 5, 1), Description: "Lunch", Amount: core.Money{Cents: 50000}, Category: core.CategoryFood},
	}

	b := NewBuilder(fixedClock)
	doc := b.Build(records, core.NewDate(2024, 5, 1), core.NewDate(2024, 5, 2), "Amma")

	if len(doc.Lines) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(doc.Lines))
	}
	line := doc.Lines[0]
	if line.Description != "Lunch" || line.Category != core.CategoryFood {
		t.Fatalf("unexpected line item: %+v", line)
	}
	if doc.Total.Cents != 50000 {
		t.Fatalf("expected summary total 50000, got %d", doc.Total.Cents)
	}
	if doc.Total.Format() != "LKR 500.00" {
		t.Fatalf("expected LKR 500.00, got %q", doc.Total.Format())
	}
	if doc.Footer.Total != doc.Total {
		t.Fatalf("footer total must equal summary total")
	}
	if doc.Header.Recipient != "Amma" {
		t.Fatalf("unexpected recipient %q", doc.Header.Recipient)
	}
	if !doc.Header.PeriodStart.Equal(core.NewDate(2024, 5, 1)) || !doc.Header.PeriodEnd.Equal(core.NewDate(2024, 5, 2)) {
		t.Fatalf("unexpected period: %v - %v", doc.Header.PeriodStart, doc.Header.PeriodEnd)
	}
}

func TestBuildSortsAscendingWithStableTies(t *testing.T) {
	// Ledger order is newest first; 2024-05-01 holds two records.
	records := []core.Record{
		{ID: 4, Date: core.NewDate(2024, 5, 3), Description: "Bus", Amount: core.Money{Cents: 15000}, Category: core.CategoryTransport},
		{ID: 3, Date: core.NewDate(2024, 5, 1), Description: "Dinner", Amount: core.Money{Cents: 70000}, Category: core.CategoryFood},
		{ID: 2, Date: core.NewDate(2024, 5, 1), Description: "Lunch", Amount: core.Money{Cents: 50000}, Category: core.CategoryFood},
		{ID: 1, Date: core.NewDate(2024, 4, 30), Description: "Notebook", Amount: core.Money{Cents: 30000}, Category: core.CategoryBooks},
	}

	b := NewBuilder(fixedClock)
	doc := b.Build(records, core.NewDate(2024, 4, 1), core.NewDate(2024, 5, 31), "Amma")

	want := []string{"Notebook", "Dinner", "Lunch", "Bus"}
	if len(doc.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(doc.Lines))
	}
	for i, desc := range want {
		if doc.Lines[i].Description != desc {
			t.Fatalf("line %d: expected %q, got %q", i, desc, doc.Lines[i].Description)
		}
	}
}

func TestBuildEmptyRangeIsValid(t *testing.T) {
	b := NewBuilder(fixedClock)
	doc := b.Build(nil, core.NewDate(2024, 5, 1), core.NewDate(2024, 5, 31), "Amma")

	if len(doc.Lines) != 0 {
		t.Fatalf("expected no lines, got %d", len(doc.Lines))
	}
	if doc.Total.Cents != 0 || doc.Footer.Total.Cents != 0 {
		t.Fatalf("expected zero totals, got %d / %d", doc.Total.Cents, doc.Footer.Total.Cents)
	}
	if doc.Header.GeneratedAt.IsZero() {
		t.Fatalf("generation timestamp must be set")
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	records := []core.Record{
		{ID: 2, Date: core.NewDate(2024, 5, 3), Description: "Bus", Amount: core.Money{Cents: 15000}, Category: core.CategoryTransport},
		{ID: 1, Date: core.NewDate(2024, 5, 1), Description: "Lunch", Amount: core.Money{Cents: 50000}, Category: core.CategoryFood},
	}
	b := NewBuilder(fixedClock)

	first := b.Build(records, core.NewDate(2024, 5, 1), core.NewDate(2024, 5, 31), "Amma")
	second := b.Build(records, core.NewDate(2024, 5, 1), core.NewDate(2024, 5, 31), "Amma")

	if first.Total != second.Total {
		t.Fatalf("totals differ between identical builds")
	}
	if len(first.Lines) != len(second.Lines) {
		t.Fatalf("line counts differ between identical builds")
	}
	for i := range first.Lines {
		if first.Lines[i] != second.Lines[i] {
			t.Fatalf("line %d differs between identical builds", i)
		}
	}
	// Building must not reorder the caller's slice.
	if records[0].ID != 2 || records[1].ID != 1 {
		t.Fatalf("input slice mutated by Build")
	}
}
