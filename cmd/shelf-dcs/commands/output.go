package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"shelf-dcs/internal/dcs"
	"shelf-dcs/internal/shelf"
)

var (
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	headerStyle = cellStyle.Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func renderProposals(w io.Writer, proposals []dcs.Proposal) {
	rows := make([][]string, 0, len(proposals))
	for _, p := range proposals {
		delta := ""
		if p.Action != dcs.ActionCut {
			delta = fmt.Sprintf("%+d", p.NewFaceDelta)
		}
		rows = append(rows, []string{
			p.FixtureID, p.JAN, p.Name, p.CategoryName, string(p.Action), string(p.Rule),
			strconv.Itoa(p.CurrentFace), delta, strconv.FormatFloat(p.PIValue, 'f', 2, 64), p.Reason,
		})
	}
	renderTable(w, []string{"Fixture", "JAN", "Name", "Category", "Action", "Rule", "Face", "Δ", "PI", "Reason"}, rows)
}

func renderOccupancy(w io.Writer, occ []shelf.RowOccupancy) {
	rows := make([][]string, 0, len(occ))
	for _, r := range occ {
		status := okStyle.Render("ok")
		if r.Overflow {
			status = warnStyle.Render("overflow")
		}
		rows = append(rows, []string{
			strconv.Itoa(r.Row), strconv.Itoa(r.HeightMm), strconv.Itoa(r.Products),
			strconv.Itoa(r.OccupiedMm), strconv.Itoa(r.FreeMm), strconv.Itoa(r.ShelfWidthMm), status,
		})
	}
	renderTable(w, []string{"Row", "Height", "Products", "Occupied", "Free", "Width", "Status"}, rows)
}

// overflowConfirmer asks on the terminal before applying an overflowing
// facing change. Non-interactive runs decline unless --yes was given.
func overflowConfirmer(cmd *cobra.Command, yes bool) shelf.Confirmer {
	if yes {
		return shelf.AlwaysConfirm
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return shelf.NeverConfirm
	}
	reader := bufio.NewReader(cmd.InOrStdin())
	return shelf.ConfirmFunc(func(w shelf.OverflowWarning) bool {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\nApply anyway? [y/N] ", warnStyle.Render(w.String()))
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	})
}

// openOutput returns stdout for "-" and a created file otherwise.
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
