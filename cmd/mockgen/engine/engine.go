package engine

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"shelf-dcs/internal/catalog"
	"shelf-dcs/internal/shelf"
)

type GeneratorConfig struct {
	Scenario     string // "mild", "crowded" or "skewed"
	Distribution string // "uniform" or "weibull"
	Fixtures     int
	PeriodDays   int
	Seed         uint64
}

var categories = []string{"snack", "beverage", "instant", "confectionery", "household"}

// Generate builds a synthetic store catalog. The same config yields the same catalog.
func Generate(cfg GeneratorConfig) *catalog.Snapshot {
	if cfg.PeriodDays <= 0 {
		cfg.PeriodDays = 49
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5bd1e995))
	history := catalog.NewJitterEstimator(cfg.Seed)

	snap := &catalog.Snapshot{
		StoreCode:  "MOCK01",
		StoreName:  "Mock Store " + cfg.Scenario,
		PeriodDays: cfg.PeriodDays,
		Fixtures:   make(map[string]*shelf.Fixture, cfg.Fixtures),
	}

	jan := 4900000000000
	for i := 0; i < cfg.Fixtures; i++ {
		category := categories[i%len(categories)]
		f := &shelf.Fixture{
			ID:            fmt.Sprintf("G%02d", i+1),
			CategoryLabel: category,
			Categories:    []string{category},
			Rows:          4 + rng.IntN(2),
			ShelfWidthMm:  shelf.DefaultShelfWidthMm,
		}

		for row := 1; row <= f.Rows; row++ {
			// Rows fill up to 85% of the shelf width; crowded rows go past 110%.
			budget := f.ShelfWidthMm * 85 / 100
			crowded := cfg.Scenario == "crowded" && row%2 == 0
			if crowded {
				budget = f.ShelfWidthMm * 110 / 100
			}
			for order := 1; budget > 0; order++ {
				p := shelf.Product{
					Name:         fmt.Sprintf("%s %d-%d", category, row, order),
					Price:        98 + 10*rng.IntN(30),
					CostRate:     55 + float64(rng.IntN(25)),
					Row:          row,
					Order:        float64(order),
					Face:         1 + rng.IntN(3),
					WidthMm:      50 + 10*rng.IntN(8),
					HeightMm:     120 + 10*rng.IntN(15),
					CategoryName: category,
				}
				if !crowded && p.OccupiedWidthMm() > budget {
					break
				}
				budget -= p.OccupiedWidthMm()
				jan++
				p.JAN = strconv.Itoa(jan)

				qty := sampleSales(rng, cfg)
				p.SalesQty = qty
				p.DailyAvgQty = math.Round(float64(qty)/float64(cfg.PeriodDays)*100) / 100
				p.TotalSales = int64(qty * p.Price)
				p.TotalProfit = int64(float64(p.TotalSales) * (100 - p.CostRate) / 100)
				p.SalesWeek = history.Estimate(qty, cfg.PeriodDays)
				p.CurrentStock = rng.IntN(24)
				f.Products = append(f.Products, p)
			}
		}
		snap.Fixtures[f.ID] = f
	}
	snap.ApplyDefaults()
	return snap
}

func sampleSales(rng *rand.Rand, cfg GeneratorConfig) int {
	zeroShare := 0.03
	if cfg.Scenario == "skewed" {
		zeroShare = 0.2
	}
	if rng.Float64() < zeroShare {
		return 0
	}

	var perDay float64
	if cfg.Distribution == "weibull" {
		// Long tail: a few products sell far more than the rest.
		perDay = weibullSample(rng, 0.9, 1.2)
	} else {
		perDay = 0.1 + rng.Float64()*2.4
	}
	return max(1, int(math.Round(perDay*float64(cfg.PeriodDays))))
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

var candidateHeaders = []string{"候補品JAN", "候補品名", "メーカー名", "売価", "原価", "対象カテゴリー", "推奨理由", "優先度", "幅mm", "高さmm", "奥行mm"}

// Candidates returns a replacement-candidate feed with n rows per category.
func Candidates(seed uint64, n int) [][]string {
	rng := rand.New(rand.NewPCG(seed, seed^0x27d4eb2f))
	priorities := []string{"高", "中", "低"}
	var rows [][]string
	jan := 4910000000000
	for _, category := range categories {
		for i := 0; i < n; i++ {
			jan++
			price := 128 + 10*rng.IntN(20)
			cost := price * (55 + rng.IntN(20)) / 100
			rows = append(rows, []string{
				strconv.Itoa(jan),
				fmt.Sprintf("New %s %d", category, i+1),
				"Mock Foods",
				strconv.Itoa(price),
				strconv.Itoa(cost),
				category,
				"trending in region",
				priorities[rng.IntN(len(priorities))],
				strconv.Itoa(50 + 10*rng.IntN(8)),
				strconv.Itoa(120 + 10*rng.IntN(15)),
				"100",
			})
		}
	}
	return rows
}

// Save writes catalog.json and candidates.csv into outDir.
func Save(outDir string, snap *catalog.Snapshot, candidates [][]string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	if err := catalog.Save(filepath.Join(outDir, "catalog.json"), snap); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(outDir, "candidates.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(candidateHeaders); err != nil {
		return err
	}
	if err := w.WriteAll(candidates); err != nil {
		return err
	}
	return f.Close()
}
