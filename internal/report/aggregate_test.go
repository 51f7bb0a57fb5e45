package report

import (
	"testing"
	"time"

	"contable/internal/core"
)

func entry(kind core.Kind, category string, cents int64, day int) core.Entry {
	return core.Entry{
		Owner:    "u1",
		Kind:     kind,
		Concept:  "x",
		Category: category,
		Amount:   core.Money{Cents: cents},
		Date:     core.NewDate(2025, time.June, day),
	}
}

func TestFilterByMonth(t *testing.T) {
	entries := []core.Entry{
		entry(core.Income, "Ventas", 100, 1),
		entry(core.Expense, "Insumos", 50, 15),
		{Kind: core.Income, Concept: "x", Category: "Ventas", Amount: core.Money{Cents: 999}, Date: core.NewDate(2025, time.July, 1)},
		{Kind: core.Income, Concept: "x", Category: "Ventas", Amount: core.Money{Cents: 999}, Date: core.NewDate(2024, time.June, 10)},
	}

	got := FilterByMonth(entries, 2025, time.June)
	if len(got) != 2 {
		t.Fatalf("FilterByMonth kept %d entries, want 2", len(got))
	}
}

func TestFilterByRange(t *testing.T) {
	entries := []core.Entry{
		entry(core.Income, "Ventas", 100, 5),
		entry(core.Income, "Ventas", 200, 10),
		entry(core.Income, "Ventas", 300, 20),
	}
	got := FilterByRange(entries, core.NewDate(2025, time.June, 5), core.NewDate(2025, time.June, 10))
	if len(got) != 2 {
		t.Fatalf("FilterByRange kept %d entries, want 2 (bounds inclusive)", len(got))
	}
}

func TestSumProfitIdentity(t *testing.T) {
	tests := []struct {
		name    string
		entries []core.Entry
	}{
		{name: "empty"},
		{name: "income only", entries: []core.Entry{entry(core.Income, "Ventas", 500, 1)}},
		{name: "mixed", entries: []core.Entry{
			entry(core.Income, "Ventas", 120000, 1),
			entry(core.Income, "Servicios", 30000, 2),
			entry(core.Expense, "Insumos", 45000, 2),
			entry(core.Expense, "Alquiler", 80000, 3),
		}},
		{name: "loss", entries: []core.Entry{
			entry(core.Income, "Ventas", 1000, 1),
			entry(core.Expense, "Alquiler", 5000, 1),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sum(tt.entries)
			if got.Profit.Cents != got.Income.Cents-got.Expense.Cents {
				t.Errorf("profit %d != income %d - expense %d",
					got.Profit.Cents, got.Income.Cents, got.Expense.Cents)
			}
		})
	}
}

func TestCategoryBreakdown(t *testing.T) {
	entries := []core.Entry{
		entry(core.Income, "Ventas", 60000, 1),
		entry(core.Income, "Servicios", 30000, 2),
		entry(core.Income, "Otros", 10000, 3),
		entry(core.Income, "Ventas", 0, 4), // merged into Ventas
		entry(core.Expense, "Insumos", 99999, 5),
	}

	got := CategoryBreakdown(entries, core.Income, 3)
	if len(got) != 3 {
		t.Fatalf("breakdown rows = %d, want 3", len(got))
	}
	if got[0].Category != "Ventas" || got[0].Percent != 60 {
		t.Errorf("top row = %+v, want Ventas at 60%%", got[0])
	}
	if got[1].Category != "Servicios" || got[1].Percent != 30 {
		t.Errorf("second row = %+v, want Servicios at 30%%", got[1])
	}

	// Amounts must add up to the kind's total.
	var sum int64
	pctSum := 0
	for _, s := range got {
		sum += s.Amount.Cents
		pctSum += s.Percent
	}
	if sum != 100000 {
		t.Errorf("row amounts sum to %d, want 100000", sum)
	}
	if pctSum < 100-len(got) || pctSum > 100+len(got) {
		t.Errorf("percent sum %d outside rounding tolerance", pctSum)
	}
}

func TestCategoryBreakdownTopNTruncation(t *testing.T) {
	entries := []core.Entry{
		entry(core.Expense, "A", 400, 1),
		entry(core.Expense, "B", 300, 1),
		entry(core.Expense, "C", 200, 1),
		entry(core.Expense, "D", 100, 1),
	}
	got := CategoryBreakdown(entries, core.Expense, 2)
	if len(got) != 2 || got[0].Category != "A" || got[1].Category != "B" {
		t.Errorf("topN truncation got %+v", got)
	}
}

func TestCategoryBreakdownStableTies(t *testing.T) {
	entries := []core.Entry{
		entry(core.Expense, "Luz", 5000, 1),
		entry(core.Expense, "Agua", 5000, 2),
		entry(core.Expense, "Internet", 5000, 3),
	}
	got := CategoryBreakdown(entries, core.Expense, 3)
	want := []string{"Luz", "Agua", "Internet"}
	for i, w := range want {
		if got[i].Category != w {
			t.Fatalf("tie order broken: got[%d] = %s, want %s", i, got[i].Category, w)
		}
	}
}

func TestCategoryBreakdownZeroTotal(t *testing.T) {
	entries := []core.Entry{entry(core.Income, "Ventas", 0, 1)}
	got := CategoryBreakdown(entries, core.Income, 5)
	if len(got) != 1 || got[0].Percent != 0 {
		t.Errorf("zero total must give 0%%, got %+v", got)
	}
}

func TestOperatingDays(t *testing.T) {
	entries := []core.Entry{
		entry(core.Income, "Ventas", 100, 1),
		entry(core.Expense, "Insumos", 100, 1),
		entry(core.Income, "Ventas", 100, 2),
	}
	if got := OperatingDays(entries); got != 2 {
		t.Errorf("OperatingDays = %d, want 2", got)
	}
	if got := OperatingDays(nil); got != 0 {
		t.Errorf("OperatingDays(nil) = %d, want 0", got)
	}
}

func TestMonthStatsFor(t *testing.T) {
	entries := []core.Entry{
		entry(core.Income, "Ventas", 20000, 1),  // S/ 200 on day 1
		entry(core.Income, "Ventas", 10000, 2),  // S/ 100 on day 2
		entry(core.Expense, "Insumos", 5000, 2), // same operating day
	}

	stats := MonthStatsFor(entries, 2025, time.June)
	if stats.EntryCount != 3 {
		t.Errorf("EntryCount = %d, want 3", stats.EntryCount)
	}
	if stats.OperatingDays != 2 {
		t.Errorf("OperatingDays = %d, want 2", stats.OperatingDays)
	}
	if stats.DailyAverageIncome != 150 {
		t.Errorf("DailyAverageIncome = %v, want 150", stats.DailyAverageIncome)
	}

	empty := MonthStatsFor(entries, 2025, time.January)
	if empty.EntryCount != 0 || empty.DailyAverageIncome != 0 {
		t.Errorf("empty month must yield zeros, got %+v", empty)
	}
}
