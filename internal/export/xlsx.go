package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"shelf-dcs/internal/catalog"
	"shelf-dcs/internal/dcs"
	"shelf-dcs/internal/shelf"
)

// Workbook sheet names.
const (
	SheetPlanogram = "棚割"
	SheetChanges   = "変更"
	SheetProposals = "DCS提案"
)

var proposalHeaders = []string{
	"ゴンドラコード", "棚段", "JAN", "商品名", "カテゴリ", "アクション", "ルール",
	"現フェース", "フェース増減", "PI", "理由", "代替候補JAN", "代替候補スコア",
}

// WorkbookInput is everything a workbook export can contain. Baseline and
// Proposals are optional.
type WorkbookInput struct {
	Snapshot  *catalog.Snapshot
	Baseline  *catalog.Snapshot
	Proposals []dcs.Proposal
}

type sheetWriter struct {
	f      *excelize.File
	header int
}

func (w *sheetWriter) write(sheet string, headers []string, rows [][]any) error {
	head := make([]any, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	if err := w.f.SetSheetRow(sheet, "A1", &head); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	if err := w.f.SetRowStyle(sheet, 1, 1, w.header); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := w.f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return w.f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func planogramRows(snap *catalog.Snapshot) [][]any {
	var rows [][]any
	for _, id := range snap.FixtureIDs() {
		f := snap.Fixtures[id]
		for _, p := range f.Products {
			rows = append(rows, []any{
				id, f.Department, f.CategoryLabel, p.Row, p.Order, p.JAN, p.Name,
				p.Maker, p.Face, p.Price, p.CostRate, p.Rank,
				p.SalesQty, p.TotalSales, p.TotalProfit,
			})
		}
	}
	return rows
}

func changeRows(snap, baseline *catalog.Snapshot) [][]any {
	var rows [][]any
	for _, id := range snap.FixtureIDs() {
		var base *shelf.Fixture
		if baseline != nil {
			base = baseline.Fixtures[id]
		}
		for _, c := range ShelfChanges(snap.Fixtures[id], base) {
			p := c.Product
			rows = append(rows, []any{
				c.FixtureID, p.Row, p.Order, p.JAN, p.Name, p.Maker,
				c.Face, p.Price, p.CostRate, p.Rank,
				p.SalesQty, p.TotalSales, p.TotalProfit, c.Change,
			})
		}
	}
	return rows
}

func proposalRows(proposals []dcs.Proposal) [][]any {
	rows := make([][]any, 0, len(proposals))
	for _, p := range proposals {
		var candJAN string
		var candScore any = ""
		if len(p.Candidates) > 0 {
			candJAN, candScore = p.Candidates[0].JAN, p.Candidates[0].Score
		}
		rows = append(rows, []any{
			p.FixtureID, p.Row, p.JAN, p.Name, p.CategoryName, string(p.Action), string(p.Rule),
			p.CurrentFace, p.NewFaceDelta, p.PIValue, p.Reason, candJAN, candScore,
		})
	}
	return rows
}

// WriteWorkbook writes an XLSX workbook with the planogram, the change list
// against the baseline and, when present, the DCS proposals.
func WriteWorkbook(w io.Writer, in WorkbookInput) error {
	if in.Snapshot == nil {
		return errors.New("workbook export needs a catalog snapshot")
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2E8F0"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	sw := &sheetWriter{f: f, header: header}

	if err := f.SetSheetName("Sheet1", SheetPlanogram); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := sw.write(SheetPlanogram, allFixtureHeaders, planogramRows(in.Snapshot)); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetChanges); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", SheetChanges, err)
	}
	if err := sw.write(SheetChanges, shelfHeaders, changeRows(in.Snapshot, in.Baseline)); err != nil {
		return err
	}

	if len(in.Proposals) > 0 {
		if _, err := f.NewSheet(SheetProposals); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", SheetProposals, err)
		}
		if err := sw.write(SheetProposals, proposalHeaders, proposalRows(in.Proposals)); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	log.Debug().Int("fixtures", len(in.Snapshot.Fixtures)).Int("proposals", len(in.Proposals)).Msg("Workbook written")
	return nil
}
