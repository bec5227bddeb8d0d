package core

// CategoryTotal is an amount aggregated under one category.
type CategoryTotal struct {
	Category Category `json:"category"`
	Total    Money    `json:"total_cents"`
}

// PeriodTotal sums the amounts of all given records.
func PeriodTotal(records []Record) Money {
	var total Money
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}

// TotalByCategory sums record amounts per category. Every category of the
// given set appears in the result, with a zero total when no record
// matches, in the order of the set.
func TotalByCategory(records []Record, categories []Category) []CategoryTotal {
	sums := make(map[Category]int64, len(categories))
	for _, r := range records {
		sums[r.Category] += r.Amount.Cents
	}
	totals := make([]CategoryTotal, 0, len(categories))
	for _, c := range categories {
		totals = append(totals, CategoryTotal{Category: c, Total: Money{Cents: sums[c]}})
	}
	return totals
}

// DailyTotal sums the amounts of records dated exactly on the given day.
func DailyTotal(records []Record, day Date) Money {
	var total Money
	for _, r := range records {
		if r.Date.Equal(day) {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// BudgetUsageRatio returns spent/limit clamped to [0, 1] for display. A
// zero or negative limit yields 0 so callers never divide by zero.
func BudgetUsageRatio(spent, limit Money) float64 {
	if limit.Cents <= 0 {
		return 0
	}
	ratio := float64(spent.Cents) / float64(limit.Cents)
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// IsOverBudget reports whether spending exceeds the limit.
func IsOverBudget(spent, limit Money) bool {
	return spent.Cents > limit.Cents
}
