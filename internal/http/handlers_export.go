package http

import (
	"fmt"
	"net/http"
	"strings"

	"contable/internal/core"
	"contable/internal/export"
	applog "contable/internal/log"
	"contable/internal/report"
)

// exportEntries loads the owner's entries, optionally narrowed to one month
// via ?year=&month=. Without parameters the full ledger is exported.
func (s *Server) exportEntries(r *http.Request) ([]core.Entry, error) {
	owner := currentUser(r).ID
	entries, err := s.store.ListEntries(r.Context(), owner)
	if err != nil {
		return nil, err
	}

	q := r.URL.Query()
	if strings.TrimSpace(q.Get("year")) == "" && strings.TrimSpace(q.Get("month")) == "" {
		return entries, nil
	}
	year, month := parseYearMonth(r, s.now())
	return report.FilterByMonth(entries, year, month), nil
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	entries, err := s.exportEntries(r)
	if err != nil {
		writeError(w, storeStatus(err), "No se pudieron cargar los movimientos")
		return
	}

	body, err := export.CSV(entries)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "No se pudo generar el CSV")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="reporte.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleExportHTML(w http.ResponseWriter, r *http.Request) {
	entries, err := s.exportEntries(r)
	if err != nil {
		writeError(w, storeStatus(err), "No se pudieron cargar los movimientos")
		return
	}

	body, err := export.HTML(entries)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "No se pudo generar el reporte")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if s.sheets == nil {
		writeError(w, http.StatusServiceUnavailable, "Exportación a Google Sheets no configurada")
		return
	}

	entries, err := s.exportEntries(r)
	if err != nil {
		writeError(w, storeStatus(err), "No se pudieron cargar los movimientos")
		return
	}

	rows, err := s.sheets.AppendEntries(r.Context(), entries)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Sheets export failed",
			applog.FieldOwner, currentUser(r).ID,
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("No se pudo exportar a Google Sheets: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"filas_exportadas": rows})
}
