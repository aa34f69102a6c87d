package catalog

import (
	"cmp"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"shelf-dcs/internal/shelf"
)

// ImportOptions controls how the master and performance CSVs are combined.
type ImportOptions struct {
	// DefaultPeriodDays is used when the performance file carries no period.
	DefaultPeriodDays int
	// Estimator fills weekly sales. Nil means EvenEstimator.
	Estimator HistoryEstimator
}

type performance struct {
	salesQty    int
	totalSales  int64
	totalProfit int64
}

func atoi(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

func atof(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"20060102", "2006-01-02", "2006/01/02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// PeriodDays returns the whole days between two dates, or 0 when either is
// missing or malformed.
func PeriodDays(from, to string) int {
	if from == "" || to == "" {
		return 0
	}
	f, err := parseDate(from)
	if err != nil {
		return 0
	}
	t, err := parseDate(to)
	if err != nil {
		return 0
	}
	return int(math.Round(t.Sub(f).Hours() / 24))
}

// BuildSnapshot joins the gondola master with the shelf performance report.
// Products are grouped by fixture, ordered by row then order, and ranked
// A/B/C by total sales within their fixture.
func BuildSnapshot(master, perf []Record, opts ImportOptions) (*Snapshot, error) {
	if opts.Estimator == nil {
		opts.Estimator = EvenEstimator{}
	}

	snap := &Snapshot{
		Departments: make(map[string][]string),
		Fixtures:    make(map[string]*shelf.Fixture),
	}
	if len(perf) > 0 {
		first := perf[0]
		snap.Company = first.Field("企業名", "company")
		snap.StoreCode = first.Field("店コード", "store_code")
		snap.StoreName = first.Field("店名", "store_name")
		snap.PeriodFrom = first.Field("実績期間FROM", "period_from")
		snap.PeriodTo = first.Field("実績期間TO", "period_to")
		snap.PeriodDays = PeriodDays(snap.PeriodFrom, snap.PeriodTo)
	}
	periodDays := snap.PeriodDays
	if periodDays <= 0 {
		periodDays = opts.DefaultPeriodDays
	}
	if periodDays <= 0 {
		return nil, fmt.Errorf("sales period unknown: performance file has no valid period and no default was configured")
	}
	if snap.PeriodDays <= 0 {
		snap.PeriodDays = periodDays
	}

	skipped := 0
	for _, r := range master {
		fixtureID := r.Field("ゴンドラコード", "gondola_code")
		jan := r.Field("代表スキャニングコード", "jan")
		if fixtureID == "" || jan == "" || strings.Contains(jan, "_") {
			skipped++
			continue
		}
		department := r.Field("部門名", "department")
		category := r.Field("分類名", "category")

		f, ok := snap.Fixtures[fixtureID]
		if !ok {
			f = &shelf.Fixture{
				ID:           fixtureID,
				FixtureType:  "gondola",
				Department:   department,
				ShelfWidthMm: shelf.DefaultShelfWidthMm,
				RowHeights:   make(map[int]int),
			}
			snap.Fixtures[fixtureID] = f
		}

		row := max(1, atoi(r.Field("棚段", "row_num")))
		f.Rows = max(f.Rows, row)
		if category != "" && !slices.Contains(f.Categories, category) {
			f.Categories = append(f.Categories, category)
		}
		if department != "" && !slices.Contains(snap.Departments[department], fixtureID) {
			snap.Departments[department] = append(snap.Departments[department], fixtureID)
		}

		price := atoi(r.Field("売価", "price"))
		cost := atof(r.Field("原価", "cost"))
		costRate := shelf.DefaultCostRate
		if price > 0 {
			costRate = round1(cost / float64(price) * 100)
		}
		face := atoi(r.Field("フェース数", "face"))
		if face <= 0 {
			face = 1
		}

		f.Products = append(f.Products, shelf.Product{
			JAN:          jan,
			Name:         r.Field("商品名", "product_name"),
			Maker:        r.Field("発注先名", "supplier"),
			Price:        price,
			CostRate:     costRate,
			Rank:         "C",
			Row:          row,
			Order:        atof(r.Field("棚順", "order_num")),
			Face:         face,
			WidthMm:      shelf.DefaultWidthMm,
			HeightMm:     shelf.DefaultHeightMm,
			Depth:        shelf.DefaultDepth,
			SalesWeek:    make([]int, WeeksOfHistory),
			CategoryName: category,
		})
	}

	perfByKey := make(map[string]performance, len(perf))
	for _, r := range perf {
		fixtureID := r.Field("ゴンドラコード", "gondola_code")
		jan := r.Field("代表スキャニングコード", "jan")
		if fixtureID == "" || jan == "" {
			continue
		}
		perfByKey[fixtureID+"-"+jan] = performance{
			salesQty:    atoi(r.Field("売上数量", "sales_qty")),
			totalSales:  int64(atoi(r.Field("総売上金額", "total_sales"))),
			totalProfit: int64(atoi(r.Field("総荒利金額", "total_profit"))),
		}
	}

	for _, f := range snap.Fixtures {
		slices.SortStableFunc(f.Products, func(a, b shelf.Product) int {
			return cmp.Or(cmp.Compare(a.Row, b.Row), cmp.Compare(a.Order, b.Order))
		})
		for i := range f.Products {
			mergePerformance(&f.Products[i], perfByKey[f.ID+"-"+f.Products[i].JAN], periodDays, opts.Estimator)
		}
		assignRanks(f.Products)
		for r := 1; r <= f.Rows; r++ {
			f.RowHeights[r] = shelf.DefaultRowHeightMm
		}
		f.CategoryLabel = f.Department
		if len(f.Categories) > 0 {
			f.CategoryLabel = strings.Join(f.Categories, " / ")
		}
		f.RecomputeCapacity()
	}

	log.Info().
		Str("store", snap.StoreCode).
		Int("fixtures", len(snap.Fixtures)).
		Int("products", snap.ProductCount()).
		Int("periodDays", snap.PeriodDays).
		Int("skippedRows", skipped).
		Msg("Catalog built from CSV import")
	return snap, nil
}

func mergePerformance(p *shelf.Product, perf performance, periodDays int, est HistoryEstimator) {
	p.SalesQty = perf.salesQty
	p.TotalSales = perf.totalSales
	p.TotalProfit = perf.totalProfit
	if perf.salesQty > 0 {
		p.DailyAvgQty = round2(float64(perf.salesQty) / float64(periodDays))
		p.SalesWeek = est.Estimate(perf.salesQty, periodDays)
	}
	if perf.totalSales > 0 && perf.totalProfit > 0 {
		actual := round1((1 - float64(perf.totalProfit)/float64(perf.totalSales)) * 100)
		if actual > 0 && actual < 100 {
			p.CostRate = actual
		}
	}
}

// assignRanks labels the top 20% of a fixture by total sales A, the next
// 30% B and the rest C.
func assignRanks(products []shelf.Product) {
	idx := make([]int, len(products))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(products[b].TotalSales, products[a].TotalSales)
	})
	for pos, i := range idx {
		ratio := float64(pos) / float64(len(products))
		switch {
		case ratio < 0.2:
			products[i].Rank = "A"
		case ratio < 0.5:
			products[i].Rank = "B"
		default:
			products[i].Rank = "C"
		}
	}
}

// ImportCSV reads both CSV files and builds a snapshot.
func ImportCSV(masterPath, perfPath string, opts ImportOptions) (*Snapshot, error) {
	master, err := readRecordsFile(masterPath)
	if err != nil {
		return nil, fmt.Errorf("gondola master: %w", err)
	}
	perf, err := readRecordsFile(perfPath)
	if err != nil {
		return nil, fmt.Errorf("shelf performance: %w", err)
	}
	return BuildSnapshot(master, perf, opts)
}

func readRecordsFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRecords(f)
}
