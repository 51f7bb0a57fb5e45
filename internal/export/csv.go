// Package export renders an owner's movements for sharing: CSV, a printable
// HTML report, and an optional Google Sheets append.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"contable/internal/core"
)

// csvHeader is fixed; downstream spreadsheets key on these column names.
var csvHeader = []string{"Fecha", "Tipo", "Categoría", "Concepto", "Monto"}

// localDate renders a date the way es-PE locales do: day/month/year without
// zero padding.
func localDate(d core.Date) string {
	return fmt.Sprintf("%d/%d/%d", d.Day(), int(d.Month()), d.Year())
}

// CSV renders the entries as UTF-8 CSV, one row per movement, amounts with
// two decimals and no currency symbol.
func CSV(entries []core.Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			localDate(e.Date),
			string(e.Kind),
			e.Category,
			e.Concept,
			fmt.Sprintf("%.2f", e.Amount.Soles()),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
