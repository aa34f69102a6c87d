package visuals

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"shelf-dcs/internal/catalog"
	"shelf-dcs/internal/dcs"
	"shelf-dcs/internal/shelf"
)

// FixtureView is the per-fixture section of a report.
type FixtureView struct {
	ID        string
	Label     string
	Occupancy []shelf.RowOccupancy
	Chart     string
}

// Report is the data behind the HTML report.
type Report struct {
	StoreCode   string
	StoreName   string
	PeriodDays  int
	GeneratedAt time.Time
	Ruleset     string
	Summary     *dcs.Summary
	Proposals   []dcs.Proposal
	Charts      []string
	Fixtures    []FixtureView
}

// BuildReport assembles a report from the current catalog and, optionally,
// the stored evaluation.
func BuildReport(snap *catalog.Snapshot, ev *dcs.Evaluation, now time.Time) Report {
	r := Report{
		StoreCode:   snap.StoreCode,
		StoreName:   snap.StoreName,
		PeriodDays:  snap.PeriodDays,
		GeneratedAt: now,
	}

	if ev != nil {
		r.Ruleset = ev.Ruleset
		r.Summary = &ev.Summary
		r.Proposals = ev.Proposals.Sorted()
		for _, chart := range []string{
			GenerateProposalPie(ev.Summary),
			GenerateRuleChart(ev.Summary),
			GenerateCategoryChart(ev.CategoryStats),
		} {
			if chart != "" {
				r.Charts = append(r.Charts, mermaidBody(chart))
			}
		}
	}

	for _, id := range snap.FixtureIDs() {
		f := snap.Fixtures[id]
		occ := f.Occupancy()
		r.Fixtures = append(r.Fixtures, FixtureView{
			ID:        id,
			Label:     f.CategoryLabel,
			Occupancy: occ,
			Chart:     mermaidBody(GenerateOccupancyChart(id, occ)),
		})
	}
	return r
}

// mermaidBody strips the markdown fence from a generated chart.
func mermaidBody(block string) string {
	block = strings.TrimPrefix(block, "```mermaid\n")
	return strings.TrimSuffix(block, "```")
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"pi": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>Shelf Report {{.StoreCode}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #1e293b; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
th, td { border: 1px solid #cbd5e1; padding: 0.25rem 0.5rem; font-size: 0.85rem; }
th { background: #e2e8f0; }
tr.overflow td { background: #fee2e2; }
.cut { color: #b91c1c; } .faceReduce { color: #b45309; } .faceIncrease { color: #15803d; }
</style>
<script type="module">
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs";
mermaid.initialize({ startOnLoad: true });
</script>
</head>
<body>
<h1>{{.StoreName}} ({{.StoreCode}})</h1>
<p>Period: {{.PeriodDays}} days. Generated {{.GeneratedAt.Format "2006-01-02 15:04"}}.</p>
{{with .Summary}}
<h2>DCS Proposals ({{$.Ruleset}})</h2>
<p>{{.Total}} proposals: {{.Cut}} cut, {{.FaceReduce}} face reduce, {{.FaceIncrease}} face increase.</p>
{{end}}
{{range .Charts}}<pre class="mermaid">{{.}}</pre>
{{end}}
{{if .Proposals}}
<table>
<tr><th>Fixture</th><th>Row</th><th>JAN</th><th>Name</th><th>Category</th><th>Action</th><th>Rule</th><th>Face</th><th>Δ</th><th>PI</th><th>Reason</th><th>Candidate</th></tr>
{{range .Proposals}}<tr>
<td>{{.FixtureID}}</td><td>{{.Row}}</td><td>{{.JAN}}</td><td>{{.Name}}</td><td>{{.CategoryName}}</td>
<td class="{{.Action}}">{{.Action}}</td><td>{{.Rule}}</td><td>{{.CurrentFace}}</td><td>{{.NewFaceDelta}}</td><td>{{pi .PIValue}}</td><td>{{.Reason}}</td>
<td>{{with .Candidates}}{{(index . 0).JAN}} {{(index . 0).Name}}{{end}}</td>
</tr>
{{end}}</table>
{{end}}
<h2>Fixtures</h2>
{{range .Fixtures}}
<h3>{{.ID}}{{with .Label}} {{.}}{{end}}</h3>
<table>
<tr><th>Row</th><th>Height (mm)</th><th>Products</th><th>Occupied (mm)</th><th>Free (mm)</th></tr>
{{range .Occupancy}}<tr{{if .Overflow}} class="overflow"{{end}}><td>{{.Row}}</td><td>{{.HeightMm}}</td><td>{{.Products}}</td><td>{{.OccupiedMm}}</td><td>{{.FreeMm}}</td></tr>
{{end}}</table>
<pre class="mermaid">{{.Chart}}</pre>
{{end}}
</body>
</html>
`))

// WriteHTML renders the report as a standalone HTML page.
func WriteHTML(w io.Writer, r Report) error {
	if err := reportTemplate.Execute(w, r); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
