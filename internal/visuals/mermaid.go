package visuals

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"shelf-dcs/internal/dcs"
	"shelf-dcs/internal/shelf"
	"shelf-dcs/internal/stats"
)

// maxCategories limits category charts to keep the text chart readable.
const maxCategories = 20

func quote(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "'") + "\""
}

// GenerateOccupancyChart creates a Mermaid xychart-beta with the occupied
// width of every shelf level against the shelf width.
func GenerateOccupancyChart(fixtureID string, occ []shelf.RowOccupancy) string {
	if len(occ) == 0 {
		return ""
	}

	var labels, used, limit []string
	maxVal := 0
	for _, r := range occ {
		labels = append(labels, quote(fmt.Sprintf("Row %d", r.Row)))
		used = append(used, fmt.Sprintf("%d", r.OccupiedMm))
		limit = append(limit, fmt.Sprintf("%d", r.ShelfWidthMm))
		maxVal = max(maxVal, r.OccupiedMm, r.ShelfWidthMm)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Row Occupancy (%s)\"\n", fixtureID))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Width (mm)\" 0 --> %d\n", maxVal+maxVal/10))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(used, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(limit, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateProposalPie creates a Mermaid pie chart of the proposal mix.
func GenerateProposalPie(summary dcs.Summary) string {
	if summary.Total == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("pie title DCS Proposals\n")
	for _, slice := range []struct {
		label string
		count int
	}{
		{"Cut", summary.Cut},
		{"Face Reduce", summary.FaceReduce},
		{"Face Increase", summary.FaceIncrease},
	} {
		if slice.count > 0 {
			sb.WriteString(fmt.Sprintf("    %s : %d\n", quote(slice.label), slice.count))
		}
	}
	sb.WriteString("```")
	return sb.String()
}

// GenerateRuleChart creates a Mermaid bar chart of proposals per rule.
func GenerateRuleChart(summary dcs.Summary) string {
	if len(summary.ByRule) == 0 {
		return ""
	}

	rules := make([]dcs.Rule, 0, len(summary.ByRule))
	for r := range summary.ByRule {
		rules = append(rules, r)
	}
	slices.Sort(rules)

	var labels, values []string
	maxVal := 0
	for _, r := range rules {
		labels = append(labels, quote(string(r)))
		values = append(values, fmt.Sprintf("%d", summary.ByRule[r]))
		maxVal = max(maxVal, summary.ByRule[r])
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Proposals by Rule\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Proposals\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateCategoryChart creates a Mermaid bar chart of the median daily
// sales rate per category, highest first, with the p10 threshold as a line
// where the category was large enough to have one.
func GenerateCategoryChart(categories map[string]stats.CategoryStats) string {
	if len(categories) == 0 {
		return ""
	}

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(categories[b].Median, categories[a].Median); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	if len(names) > maxCategories {
		names = names[:maxCategories]
	}

	var labels, medians, p10s []string
	maxVal := 0.0
	for _, name := range names {
		c := categories[name]
		labels = append(labels, quote(strings.ReplaceAll(name, " ", "_")))
		medians = append(medians, fmt.Sprintf("%.2f", c.Median))
		p10 := 0.0
		if c.HasPercentile() {
			p10 = *c.P10
		}
		p10s = append(p10s, fmt.Sprintf("%.2f", p10))
		maxVal = math.Max(maxVal, c.Median)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Category Median Daily Sales\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Units / Day\" 0 --> %.1f\n", math.Max(1, math.Ceil(maxVal*12)/10)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(medians, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(p10s, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateWeeklySalesChart creates a Mermaid line chart of a product's
// weekly sales history.
func GenerateWeeklySalesChart(p shelf.Product) string {
	if len(p.SalesWeek) == 0 {
		return ""
	}

	var labels, values []string
	maxVal := 0
	for i, qty := range p.SalesWeek {
		labels = append(labels, quote(fmt.Sprintf("W%d", i+1)))
		values = append(values, fmt.Sprintf("%d", qty))
		maxVal = max(maxVal, qty)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Weekly Sales (%s)\"\n", p.JAN))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Units\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}
