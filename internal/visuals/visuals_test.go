package visuals

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"shelf-dcs/internal/catalog"
	"shelf-dcs/internal/dcs"
	"shelf-dcs/internal/shelf"
	"shelf-dcs/internal/stats"
)

func TestGenerateOccupancyChart(t *testing.T) {
	occ := []shelf.RowOccupancy{
		{Row: 1, OccupiedMm: 990, ShelfWidthMm: 900, Overflow: true},
		{Row: 2, OccupiedMm: 450, ShelfWidthMm: 900},
	}
	got := GenerateOccupancyChart("G01", occ)

	for _, want := range []string{
		"```mermaid\nxychart-beta\n",
		`title "Row Occupancy (G01)"`,
		`x-axis ["Row 1", "Row 2"]`,
		`y-axis "Width (mm)" 0 --> 1089`,
		"bar [990, 450]",
		"line [900, 900]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("chart missing %q:\n%s", want, got)
		}
	}

	if GenerateOccupancyChart("G01", nil) != "" {
		t.Error("expected empty chart for no rows")
	}
}

func TestGenerateProposalPie(t *testing.T) {
	got := GenerateProposalPie(dcs.Summary{Total: 5, Cut: 3, FaceIncrease: 2})
	if !strings.Contains(got, `"Cut" : 3`) || !strings.Contains(got, `"Face Increase" : 2`) {
		t.Errorf("unexpected pie:\n%s", got)
	}
	if strings.Contains(got, "Face Reduce") {
		t.Errorf("empty slices should be omitted:\n%s", got)
	}
	if GenerateProposalPie(dcs.Summary{}) != "" {
		t.Error("expected empty pie without proposals")
	}
}

func TestGenerateRuleChart_SortedRules(t *testing.T) {
	got := GenerateRuleChart(dcs.Summary{ByRule: map[dcs.Rule]int{dcs.RuleLowPI: 4, dcs.RuleZeroSales: 1}})
	if !strings.Contains(got, `x-axis ["rule1", "rule2"]`) || !strings.Contains(got, "bar [1, 4]") {
		t.Errorf("unexpected chart:\n%s", got)
	}
}

func TestGenerateCategoryChart(t *testing.T) {
	p10 := 0.12
	got := GenerateCategoryChart(map[string]stats.CategoryStats{
		"milk":  {Median: 0.8, P10: &p10},
		"bread": {Median: 1.5},
	})
	if !strings.Contains(got, `x-axis ["bread", "milk"]`) {
		t.Errorf("categories not ordered by median:\n%s", got)
	}
	if !strings.Contains(got, "bar [1.50, 0.80]") || !strings.Contains(got, "line [0.00, 0.12]") {
		t.Errorf("unexpected series:\n%s", got)
	}
}

func TestGenerateWeeklySalesChart(t *testing.T) {
	got := GenerateWeeklySalesChart(shelf.Product{JAN: "4900000000001", SalesWeek: []int{3, 5, 4}})
	if !strings.Contains(got, `title "Weekly Sales (4900000000001)"`) || !strings.Contains(got, "line [3, 5, 4]") {
		t.Errorf("unexpected chart:\n%s", got)
	}
	if GenerateWeeklySalesChart(shelf.Product{}) != "" {
		t.Error("expected empty chart without history")
	}
}

func TestWriteHTML(t *testing.T) {
	snap := &catalog.Snapshot{
		StoreCode:  "0123",
		StoreName:  "Ekimae <Main>",
		PeriodDays: 49,
		Fixtures: map[string]*shelf.Fixture{
			"G01": {ID: "G01", Rows: 1, ShelfWidthMm: 900, Products: []shelf.Product{
				{JAN: "A", Row: 1, Face: 11, WidthMm: 90},
			}},
		},
	}
	ev := &dcs.Evaluation{
		Ruleset: dcs.RulesetBalanced,
		Proposals: dcs.ProposalSet{
			{FixtureID: "G01", JAN: "A"}: {FixtureID: "G01", JAN: "A", Action: dcs.ActionCut, Rule: dcs.RuleBalancedCut, Reason: "zero sales"},
		},
		Summary: dcs.Summary{Total: 1, Cut: 1, ByRule: map[dcs.Rule]int{dcs.RuleBalancedCut: 1}},
	}

	r := BuildReport(snap, ev, time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC))
	if len(r.Charts) != 2 {
		t.Fatalf("expected pie and rule charts, got %d", len(r.Charts))
	}
	if strings.HasPrefix(r.Fixtures[0].Chart, "```") {
		t.Errorf("fence not stripped: %q", r.Fixtures[0].Chart)
	}

	var buf bytes.Buffer
	if err := WriteHTML(&buf, r); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	html := buf.String()
	for _, want := range []string{
		"Ekimae &lt;Main&gt;",
		"Generated 2026-10-01 09:00",
		`<td class="cut">cut</td>`,
		`<tr class="overflow">`,
		`<pre class="mermaid">`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestBuildReport_WithoutEvaluation(t *testing.T) {
	snap := &catalog.Snapshot{Fixtures: map[string]*shelf.Fixture{"G01": {ID: "G01", Rows: 1}}}
	r := BuildReport(snap, nil, time.Now())
	if r.Summary != nil || len(r.Charts) != 0 {
		t.Errorf("expected no DCS section, got %+v", r)
	}
	var buf bytes.Buffer
	if err := WriteHTML(&buf, r); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
}
