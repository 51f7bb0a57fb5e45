// Package report computes derived views over a single owner's ledger:
// period filtering, totals, category breakdowns and the month statistics
// shown on the reports screen. Everything here is pure; empty input yields
// zero values, never an error.
package report

import (
	"math"
	"sort"
	"time"

	"contable/internal/core"
)

// Totals are the plain sums over a filtered entry list. No rounding happens
// here; amounts stay in cents until display.
type Totals struct {
	Income  core.Money
	Expense core.Money
	Profit  core.Money
}

// CategoryShare is one row of a category breakdown.
type CategoryShare struct {
	Category string
	Amount   core.Money
	Percent  int // rounded share of the kind's total, 0 when the total is 0
}

// MonthStats bundles the per-month figures for the reports screen.
type MonthStats struct {
	Totals             Totals
	EntryCount         int
	OperatingDays      int
	DailyAverageIncome float64
}

// FilterByMonth keeps entries whose date falls in the given calendar month.
func FilterByMonth(entries []core.Entry, year int, month time.Month) []core.Entry {
	var out []core.Entry
	for _, e := range entries {
		if e.Date.Year() == year && e.Date.Month() == month {
			out = append(out, e)
		}
	}
	return out
}

// FilterByRange keeps entries with from <= date <= to (UTC day comparison).
func FilterByRange(entries []core.Entry, from, to core.Date) []core.Entry {
	var out []core.Entry
	for _, e := range entries {
		if core.IsBeforeDayUTC(e.Date.Time, from.Time) {
			continue
		}
		if core.IsBeforeDayUTC(to.Time, e.Date.Time) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Sum totals the entries by kind. Profit is income minus expense.
func Sum(entries []core.Entry) Totals {
	var t Totals
	for _, e := range entries {
		switch e.Kind {
		case core.Income:
			t.Income.Cents += e.Amount.Cents
		case core.Expense:
			t.Expense.Cents += e.Amount.Cents
		}
	}
	t.Profit.Cents = t.Income.Cents - t.Expense.Cents
	return t
}

// CategoryBreakdown groups the entries of one kind by category, computes each
// category's rounded share of the kind's total, sorts descending by amount
// and truncates to topN. Ties keep first-encountered order.
func CategoryBreakdown(entries []core.Entry, kind core.Kind, topN int) []CategoryShare {
	sums := make(map[string]int64)
	var order []string
	var total int64
	for _, e := range entries {
		if e.Kind != kind {
			continue
		}
		if _, seen := sums[e.Category]; !seen {
			order = append(order, e.Category)
		}
		sums[e.Category] += e.Amount.Cents
		total += e.Amount.Cents
	}

	shares := make([]CategoryShare, 0, len(order))
	for _, cat := range order {
		amount := sums[cat]
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(amount) / float64(total) * 100))
		}
		shares = append(shares, CategoryShare{
			Category: cat,
			Amount:   core.Money{Cents: amount},
			Percent:  pct,
		})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Amount.Cents > shares[j].Amount.Cents
	})

	if topN >= 0 && len(shares) > topN {
		shares = shares[:topN]
	}
	return shares
}

// OperatingDays counts the distinct dates present in the entries, the basis
// for the daily-average income figure.
func OperatingDays(entries []core.Entry) int {
	days := make(map[string]struct{})
	for _, e := range entries {
		days[e.Date.ISO()] = struct{}{}
	}
	return len(days)
}

// MonthStatsFor computes the statistics block for one calendar month.
func MonthStatsFor(entries []core.Entry, year int, month time.Month) MonthStats {
	filtered := FilterByMonth(entries, year, month)
	totals := Sum(filtered)
	days := OperatingDays(filtered)

	avg := 0.0
	if days > 0 {
		avg = totals.Income.Soles() / float64(days)
	}

	return MonthStats{
		Totals:             totals,
		EntryCount:         len(filtered),
		OperatingDays:      days,
		DailyAverageIncome: avg,
	}
}
