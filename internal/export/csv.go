package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"shelf-dcs/internal/catalog"
	"shelf-dcs/internal/shelf"
)

// Change types written to the 変更区分 column.
const (
	ChangeNone    = "変更なし"
	ChangeAdded   = "追加"
	ChangeRemoved = "削除"
)

var shelfHeaders = []string{
	"ゴンドラコード", "棚段", "棚順", "JAN", "商品名", "メーカー",
	"フェース数", "売価", "原価率", "ランク",
	"売上数量", "総売上金額", "総荒利金額", "変更区分",
}

var allFixtureHeaders = []string{
	"ゴンドラコード", "部門", "カテゴリ", "棚段", "棚順", "JAN", "商品名",
	"メーカー", "フェース数", "売価", "原価率", "ランク",
	"売上数量", "総売上金額", "総荒利金額",
}

// ChangeRow is one line of a shelf change export.
type ChangeRow struct {
	FixtureID string
	Product   shelf.Product
	Face      int
	Change    string
}

// ChangeType compares a product with its baseline placement. Facing changes
// take precedence over row changes.
func ChangeType(orig *shelf.Product, p shelf.Product) string {
	switch {
	case orig == nil:
		return ChangeAdded
	case orig.Face != p.Face:
		return fmt.Sprintf("フェース変更(%d→%d)", orig.Face, p.Face)
	case orig.Row != p.Row:
		return fmt.Sprintf("段変更(%d→%d)", orig.Row, p.Row)
	default:
		return ChangeNone
	}
}

// ShelfChanges lists the active products of a fixture against a baseline,
// followed by its removed products at face 0. A nil baseline marks every
// active product as added.
func ShelfChanges(f, baseline *shelf.Fixture) []ChangeRow {
	orig := make(map[string]*shelf.Product)
	if baseline != nil {
		for i := range baseline.Products {
			orig[baseline.Products[i].JAN] = &baseline.Products[i]
		}
	}

	rows := make([]ChangeRow, 0, len(f.Products)+len(f.Removed))
	for _, p := range f.Products {
		rows = append(rows, ChangeRow{FixtureID: f.ID, Product: p, Face: p.Face, Change: ChangeType(orig[p.JAN], p)})
	}
	for _, r := range f.Removed {
		rows = append(rows, ChangeRow{FixtureID: f.ID, Product: r.Product, Face: 0, Change: ChangeRemoved})
	}
	return rows
}

func order(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func rate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (r ChangeRow) record() []string {
	p := r.Product
	return []string{
		r.FixtureID, strconv.Itoa(p.Row), order(p.Order), p.JAN, p.Name, p.Maker,
		strconv.Itoa(r.Face), strconv.Itoa(p.Price), rate(p.CostRate), p.Rank,
		strconv.Itoa(p.SalesQty), strconv.FormatInt(p.TotalSales, 10), strconv.FormatInt(p.TotalProfit, 10), r.Change,
	}
}

// newWriter starts an Excel-compatible CSV: UTF-8 BOM and CRLF line endings.
func newWriter(w io.Writer) (*csv.Writer, error) {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return nil, fmt.Errorf("failed to write BOM: %w", err)
	}
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	return cw, nil
}

func writeAll(cw *csv.Writer, headers []string, rows [][]string) error {
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// WriteShelfCSV writes the change export of one fixture.
func WriteShelfCSV(w io.Writer, f, baseline *shelf.Fixture) error {
	cw, err := newWriter(w)
	if err != nil {
		return err
	}
	changes := ShelfChanges(f, baseline)
	rows := make([][]string, len(changes))
	for i, c := range changes {
		rows[i] = c.record()
	}
	return writeAll(cw, shelfHeaders, rows)
}

// WriteAllFixturesCSV writes the current placement of every fixture in id order.
func WriteAllFixturesCSV(w io.Writer, snap *catalog.Snapshot) error {
	cw, err := newWriter(w)
	if err != nil {
		return err
	}
	var rows [][]string
	for _, id := range snap.FixtureIDs() {
		f := snap.Fixtures[id]
		for _, p := range f.Products {
			rows = append(rows, []string{
				id, f.Department, f.CategoryLabel, strconv.Itoa(p.Row), order(p.Order), p.JAN, p.Name,
				p.Maker, strconv.Itoa(p.Face), strconv.Itoa(p.Price), rate(p.CostRate), p.Rank,
				strconv.Itoa(p.SalesQty), strconv.FormatInt(p.TotalSales, 10), strconv.FormatInt(p.TotalProfit, 10),
			})
		}
	}
	return writeAll(cw, allFixtureHeaders, rows)
}
