package report

import (
	"fmt"

	"contable/internal/core"
)

// Tip is one personalized suggestion shown under the monthly report.
type Tip struct {
	Title string
	Text  string
}

// Advice derives suggestions from a month's stats and its top income and
// expense categories: profit or loss first, then the dominant income source,
// then the heaviest expense.
func Advice(stats MonthStats, topIncome, topExpense []CategoryShare) []Tip {
	var tips []Tip

	profit := stats.Totals.Profit
	switch {
	case profit.Cents > 0:
		tips = append(tips, Tip{
			Title: "¡Excelente mes!",
			Text:  fmt.Sprintf("Tuviste una ganancia de %s. Sigue así y considera ahorrar parte de estas ganancias.", profit.Format()),
		})
	case profit.Cents < 0:
		loss := core.Money{Cents: -profit.Cents}
		tips = append(tips, Tip{
			Title: "Revisa tus gastos",
			Text:  fmt.Sprintf("Este mes tuviste pérdidas de %s. Analiza tus gastos más grandes y busca formas de reducirlos.", loss.Format()),
		})
	}

	if len(topIncome) > 0 {
		main := topIncome[0]
		tips = append(tips, Tip{
			Title: "Tu fuerte",
			Text:  fmt.Sprintf("%s representa el %d%% de tus ingresos. Es tu principal fuente, mantén el enfoque aquí.", main.Category, main.Percent),
		})
	}

	if len(topExpense) > 0 {
		biggest := topExpense[0]
		tips = append(tips, Tip{
			Title: "Mayor gasto",
			Text:  fmt.Sprintf("%s es tu mayor gasto (%d%% del total). Evalúa si puedes optimizar estos costos.", biggest.Category, biggest.Percent),
		})
	}

	return tips
}
