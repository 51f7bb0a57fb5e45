package http

import (
	"fmt"
	"net/http"
	"time"

	"contable/internal/core"
	"contable/internal/report"
	"contable/internal/tax"
)

type taxEstimateRequest struct {
	Regimen     string  `json:"regimen"`
	Anio        int     `json:"anio"`
	Mes         int     `json:"mes"`
	Coeficiente float64 `json:"coeficiente"`
}

type taxDetailJSON struct {
	ImpuestoFijo        float64 `json:"impuesto_fijo"`
	ImpuestoCoeficiente float64 `json:"impuesto_coeficiente"`
	Metodo              string  `json:"metodo"`
}

type taxEstimateResponse struct {
	Regimen          string         `json:"regimen"`
	Elegible         bool           `json:"elegible"`
	Impuesto         float64        `json:"impuesto"`
	TasaPct          float64        `json:"tasa_pct"`
	Tramo            int            `json:"tramo,omitempty"`
	Descripcion      string         `json:"descripcion"`
	Detalle          *taxDetailJSON `json:"detalle,omitempty"`
	Razon            string         `json:"razon,omitempty"`
	IngresosMes      float64        `json:"ingresos_mes"`
	GastosMes        float64        `json:"gastos_mes"`
	IngresosAnuales  float64        `json:"ingresos_anuales"`
	UIT              float64        `json:"uit"`
}

// handleTaxEstimate computes a regime estimate from the selected month's
// movements. A month with no movements, or with no income, is rejected: the
// estimate would be meaningless.
func (s *Server) handleTaxEstimate(w http.ResponseWriter, r *http.Request) {
	owner := currentUser(r).ID

	var req taxEstimateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Solicitud inválida")
		return
	}

	regime := tax.Regime(req.Regimen)
	if !regime.Valid() {
		writeError(w, http.StatusBadRequest, "Régimen inválido: debe ser rus, rer, mype o general")
		return
	}

	now := s.now()
	year, month := req.Anio, time.Month(req.Mes)
	if year == 0 {
		year = now.Year()
	}
	if req.Mes < 1 || req.Mes > 12 {
		month = now.Month()
	}

	entries, err := s.store.ListEntries(r.Context(), owner)
	if err != nil {
		writeError(w, storeStatus(err), "No se pudieron cargar los movimientos")
		return
	}

	period := fmt.Sprintf("%d-%02d", year, month)
	monthEntries := report.FilterByMonth(entries, year, month)
	if len(monthEntries) == 0 {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("No hay movimientos registrados para %s", period))
		return
	}

	totals := report.Sum(monthEntries)
	if totals.Income.Cents <= 0 {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("No hay ingresos registrados para %s", period))
		return
	}

	// Annual income is the income of the trailing twelve months ending in
	// the selected month.
	_, monthEnd := monthWindow(year, month)
	yearStart := core.NewDate(year-1, month, 1)
	annualIncome := report.Sum(report.FilterByRange(entries, yearStart, monthEnd)).Income

	input := tax.Input{
		MonthlyIncome:  totals.Income.Soles(),
		MonthlyExpense: totals.Expense.Soles(),
		AnnualIncome:   annualIncome.Soles(),
		CoefficientPct: req.Coeficiente,
	}

	result, err := s.estimator.Estimate(regime, input)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Régimen inválido: debe ser rus, rer, mype o general")
		return
	}

	resp := taxEstimateResponse{
		Regimen:         string(result.Regime),
		Elegible:        result.Eligible,
		Impuesto:        result.Tax,
		TasaPct:         result.RatePct,
		Tramo:           result.Bracket,
		Descripcion:     result.Description,
		Razon:           result.Reason,
		IngresosMes:     input.MonthlyIncome,
		GastosMes:       input.MonthlyExpense,
		IngresosAnuales: input.AnnualIncome,
		UIT:             s.estimator.UIT(),
	}
	if result.Detail != nil {
		resp.Detalle = &taxDetailJSON{
			ImpuestoFijo:        result.Detail.FlatTax,
			ImpuestoCoeficiente: result.Detail.CoefficientTax,
			Metodo:              string(result.Detail.Method),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
