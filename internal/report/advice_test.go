package report

import (
	"strings"
	"testing"

	"contable/internal/core"
)

func TestAdviceProfit(t *testing.T) {
	stats := MonthStats{Totals: Totals{Profit: core.Money{Cents: 50000}}}
	tips := Advice(stats, nil, nil)
	if len(tips) != 1 {
		t.Fatalf("tips = %d, want 1", len(tips))
	}
	if tips[0].Title != "¡Excelente mes!" || !strings.Contains(tips[0].Text, "S/ 500.00") {
		t.Errorf("unexpected profit tip: %+v", tips[0])
	}
}

func TestAdviceLoss(t *testing.T) {
	stats := MonthStats{Totals: Totals{Profit: core.Money{Cents: -2500}}}
	tips := Advice(stats, nil, nil)
	if len(tips) != 1 {
		t.Fatalf("tips = %d, want 1", len(tips))
	}
	if tips[0].Title != "Revisa tus gastos" || !strings.Contains(tips[0].Text, "S/ 25.00") {
		t.Errorf("loss tip must carry the absolute amount: %+v", tips[0])
	}
}

func TestAdviceCategories(t *testing.T) {
	stats := MonthStats{} // break-even: no profit/loss tip
	income := []CategoryShare{{Category: "Ventas", Percent: 72}}
	expense := []CategoryShare{{Category: "Alquiler", Percent: 40}}

	tips := Advice(stats, income, expense)
	if len(tips) != 2 {
		t.Fatalf("tips = %d, want 2", len(tips))
	}
	if !strings.Contains(tips[0].Text, "Ventas") || !strings.Contains(tips[0].Text, "72%") {
		t.Errorf("income tip: %+v", tips[0])
	}
	if !strings.Contains(tips[1].Text, "Alquiler") || !strings.Contains(tips[1].Text, "40%") {
		t.Errorf("expense tip: %+v", tips[1])
	}
}
