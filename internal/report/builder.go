package report

import (
	"sort"
	"time"

	"spendlog/internal/core"
)

// Builder assembles report documents from ledger snapshots. It is a pure
// transformation; the only ambient input, the generation timestamp, is
// injected through the clock so builds are reproducible in tests.
type Builder struct {
	now func() time.Time
}

func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now}
}

// Build filters the records to [start, end], sorts them ascending by date
// and assembles the document. Records sharing a date keep their relative
// ledger order (newest first) since no finer timestamp exists. An empty
// range yields a valid document with zero lines and a zero total.
func (b *Builder) Build(records []core.Record, start, end core.Date, recipient string) Document {
	filtered := FilterByRange(records, start, end)

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.Before(filtered[j].Date)
	})

	total := core.PeriodTotal(filtered)

	lines := make([]Line, 0, len(filtered))
	for _, r := range filtered {
		lines = append(lines, Line{
			Date:        r.Date,
			Description: r.Description,
			Category:    r.Category,
			Amount:      r.Amount,
		})
	}

	return Document{
		Header: Header{
			Recipient:   recipient,
			PeriodStart: start,
			PeriodEnd:   end,
			GeneratedAt: b.now().UTC(),
		},
		Total:  total,
		Lines:  lines,
		Footer: Footer{Total: total},
	}
}
