package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"contable/internal/core"
	"contable/internal/report"
)

const topCategories = 3

type categoryShareJSON struct {
	Categoria  string  `json:"categoria"`
	Monto      float64 `json:"monto"`
	Porcentaje int     `json:"porcentaje"`
}

type tipJSON struct {
	Titulo string `json:"titulo"`
	Texto  string `json:"texto"`
}

type monthReportResponse struct {
	Anio                   int                 `json:"anio"`
	Mes                    int                 `json:"mes"`
	Ingresos               float64             `json:"ingresos"`
	Gastos                 float64             `json:"gastos"`
	Ganancia               float64             `json:"ganancia"`
	NumMovimientos         int                 `json:"num_movimientos"`
	DiasOperativos         int                 `json:"dias_operativos"`
	PromedioDiarioIngresos float64             `json:"promedio_diario_ingresos"`
	TopIngresos            []categoryShareJSON `json:"top_ingresos"`
	TopGastos              []categoryShareJSON `json:"top_gastos"`
	Consejos               []tipJSON           `json:"consejos"`
}

func sharesToJSON(shares []report.CategoryShare) []categoryShareJSON {
	out := make([]categoryShareJSON, 0, len(shares))
	for _, s := range shares {
		out = append(out, categoryShareJSON{
			Categoria:  s.Category,
			Monto:      s.Amount.Soles(),
			Porcentaje: s.Percent,
		})
	}
	return out
}

// handleMonthReport serves the month dashboard. Responses are memoized per
// (owner, year, month); entry writes drop the owner's cached reports.
func (s *Server) handleMonthReport(w http.ResponseWriter, r *http.Request) {
	owner := currentUser(r).ID
	year, month := parseYearMonth(r, s.now())

	key := fmt.Sprintf("%s:month:%d-%02d", owner, year, month)
	if cached, ok := s.reports.Get(key); ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	}

	entries, err := s.store.ListEntries(r.Context(), owner)
	if err != nil {
		writeError(w, storeStatus(err), "No se pudieron cargar los movimientos")
		return
	}

	monthEntries := report.FilterByMonth(entries, year, month)
	stats := report.MonthStatsFor(entries, year, month)
	topIncome := report.CategoryBreakdown(monthEntries, core.Income, topCategories)
	topExpense := report.CategoryBreakdown(monthEntries, core.Expense, topCategories)

	resp := monthReportResponse{
		Anio:                   year,
		Mes:                    int(month),
		Ingresos:               stats.Totals.Income.Soles(),
		Gastos:                 stats.Totals.Expense.Soles(),
		Ganancia:               stats.Totals.Profit.Soles(),
		NumMovimientos:         stats.EntryCount,
		DiasOperativos:         stats.OperatingDays,
		PromedioDiarioIngresos: stats.DailyAverageIncome,
		TopIngresos:            sharesToJSON(topIncome),
		TopGastos:              sharesToJSON(topExpense),
		Consejos:               tipsToJSON(report.Advice(stats, topIncome, topExpense)),
	}

	body, err := json.Marshal(resp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error interno")
		return
	}
	s.reports.Set(key, body)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func tipsToJSON(tips []report.Tip) []tipJSON {
	out := make([]tipJSON, 0, len(tips))
	for _, t := range tips {
		out = append(out, tipJSON{Titulo: t.Title, Texto: t.Text})
	}
	return out
}

// handleCategoryReport serves one kind's category breakdown for a month.
func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	owner := currentUser(r).ID
	year, month := parseYearMonth(r, s.now())

	kind := core.Kind(r.URL.Query().Get("tipo"))
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, "Tipo inválido: debe ser ingreso o gasto")
		return
	}
	top := topCategories
	if v := r.URL.Query().Get("top"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			top = n
		}
	}

	key := fmt.Sprintf("%s:categories:%d-%02d:%s:%d", owner, year, month, kind, top)
	if cached, ok := s.reports.Get(key); ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	}

	entries, err := s.store.ListEntries(r.Context(), owner)
	if err != nil {
		writeError(w, storeStatus(err), "No se pudieron cargar los movimientos")
		return
	}

	monthEntries := report.FilterByMonth(entries, year, month)
	shares := report.CategoryBreakdown(monthEntries, kind, top)

	body, err := json.Marshal(sharesToJSON(shares))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error interno")
		return
	}
	s.reports.Set(key, body)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// monthWindow returns the first and last day of a month.
func monthWindow(year int, month time.Month) (core.Date, core.Date) {
	first := core.NewDate(year, month, 1)
	last := first.AddMonths(1).AddDays(-1)
	return first, last
}
