// Package printsheet renders the selected-medications worksheet as a
// standalone printable HTML document.
package printsheet

import (
	"fmt"
	"html/template"
	"io"

	"github.com/giygas/vetdose/dosing"
	"github.com/giygas/vetdose/formulary/entities"
)

// Summary is the patient line printed in the sheet heading.
type Summary struct {
	Species  entities.Species
	WeightKg float64
}

type row struct {
	Name         string
	Presentation string
	Category     string
	Route        string
	Dose         string
	Result       string
	Notes        string
}

type page struct {
	Species  string
	WeightKg string
	Rows     []row
}

var sheetTemplate = template.Must(template.New("sheet").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Selected Meds</title>
<style>body{font-family:ui-sans-serif,system-ui,Segoe UI,Roboto,Helvetica,Arial,sans-serif;margin:24px} h1{font-size:20px;margin:0 0 12px} table{border-collapse:collapse;width:100%} th{background:#f5f5f5;text-align:left;padding:8px;border:1px solid #ddd} td{padding:6px;border:1px solid #ddd}</style>
</head><body>
<h1>Selected Meds — {{.Species}} — {{.WeightKg}} kg</h1>
<table><thead><tr><th>Drug</th><th>Category</th><th>Route</th><th>Dose</th><th>Result</th><th>Notes</th></tr></thead><tbody>
{{- range .Rows}}
<tr><td>{{.Name}}{{if .Presentation}} <span style="color:#666">({{.Presentation}})</span>{{end}}</td><td>{{.Category}}</td><td>{{.Route}}</td><td>{{.Dose}}</td><td><b>{{.Result}}</b></td><td>{{.Notes}}</td></tr>
{{- end}}
</tbody></table>
<p style="margin-top:12px;font-size:12px;color:#666">Generated by Vet Medication Suite. Verify against clinic protocols before administering.</p>
<script>window.onload=()=>{window.print();}</script>
</body></html>
`))

// Render writes the worksheet for the patient and selected items.
func Render(w io.Writer, patient Summary, items []entities.SelectedItem) error {
	p := page{
		Species:  string(patient.Species),
		WeightKg: dosing.FormatNumber(dosing.Round(patient.WeightKg, 2)),
		Rows:     make([]row, 0, len(items)),
	}

	for _, it := range items {
		r := row{
			Name:     it.Name,
			Category: it.Category,
			Route:    it.Route,
			Dose:     it.DoseUnit(),
			Result:   it.ResultText,
			Notes:    it.Notes,
		}
		if it.Dose != nil {
			r.Dose = dosing.FormatNumber(*it.Dose) + " " + it.DoseUnit()
		}
		if it.Presentation != nil {
			r.Presentation = it.Presentation.Label
		}
		p.Rows = append(p.Rows, r)
	}

	if err := sheetTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("failed to render print sheet: %w", err)
	}
	return nil
}
