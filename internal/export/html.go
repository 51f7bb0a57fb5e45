package export

import (
	"bytes"
	"fmt"
	"html/template"

	"contable/internal/core"
)

var reportTmpl = template.Must(template.New("report").Parse(`<html>
  <head>
    <meta charset="utf-8" />
    <style>
      body { font-family: Arial, sans-serif; padding: 24px; }
      h1 { color: #3B82F6; }
      table { width: 100%; border-collapse: collapse; margin-top: 16px; }
      th, td { border: 1px solid #E5E7EB; padding: 8px; font-size: 14px; }
      th { background: #F3F4F6; }
      tr:nth-child(even) { background: #F9FAFB; }
    </style>
  </head>
  <body>
    <h1>Reporte de Movimientos</h1>
    <table>
      <thead>
        <tr>
          <th>Fecha</th>
          <th>Tipo</th>
          <th>Categoría</th>
          <th>Concepto</th>
          <th>Monto</th>
        </tr>
      </thead>
      <tbody>
{{- range .}}
        <tr>
          <td>{{.Date}}</td>
          <td>{{.Kind}}</td>
          <td>{{.Category}}</td>
          <td>{{.Concept}}</td>
          <td style="text-align:right">{{.Amount}}</td>
        </tr>
{{- end}}
      </tbody>
    </table>
  </body>
</html>
`))

type htmlRow struct {
	Date     string
	Kind     string
	Category string
	Concept  string
	Amount   string
}

// HTML renders the printable movement report. Values are escaped by the
// template, so free-text concepts are safe.
func HTML(entries []core.Entry) ([]byte, error) {
	rows := make([]htmlRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, htmlRow{
			Date:     localDate(e.Date),
			Kind:     string(e.Kind),
			Category: e.Category,
			Concept:  e.Concept,
			Amount:   fmt.Sprintf("S/ %.2f", e.Amount.Soles()),
		})
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, rows); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}
