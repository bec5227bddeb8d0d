package report

import "spendlog/internal/core"

// FilterByRange selects records whose date falls within [start, end],
// inclusive of both boundary days at day granularity. The caller is
// responsible for start <= end; an inverted range simply selects nothing.
// The input order is preserved; Build re-sorts anyway.
func FilterByRange(records []core.Record, start, end core.Date) []core.Record {
	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}
