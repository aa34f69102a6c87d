package catalog

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"shelf-dcs/internal/dcs"
	"shelf-dcs/internal/shelf"
)

// Geometry assumed for candidates whose feed row leaves it blank.
const (
	DefaultCandidateDepthMm = 100
	minCandidateColumns     = 7
)

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func mm(s string, fallback int) int {
	v := atof(s)
	if v <= 0 {
		return fallback
	}
	return int(math.Round(v))
}

// ReadCandidates parses a replacement-candidate feed. Japanese and English
// headers are accepted; rows with fewer than seven populated columns are skipped.
func ReadCandidates(r io.Reader) ([]dcs.Candidate, error) {
	records, err := ReadRecords(r)
	if err != nil {
		return nil, err
	}

	var out []dcs.Candidate
	for _, rec := range records {
		if populated(rec) < minCandidateColumns {
			continue
		}
		priority := rec.Field("優先度", "priority")
		if priority == "" {
			priority = "中"
		}
		out = append(out, dcs.Candidate{
			JAN:      rec.Field("候補品JAN", "JAN", "jan"),
			Name:     rec.Field("候補品名", "商品名", "name"),
			Maker:    rec.Field("メーカー名", "メーカー", "maker"),
			Price:    parseDecimal(rec.Field("売価", "price")),
			Cost:     parseDecimal(rec.Field("原価", "cost")),
			Category: rec.Field("対象カテゴリー", "カテゴリー", "category"),
			Reason:   rec.Field("推奨理由", "reason"),
			Priority: dcs.ParsePriority(priority),
			WidthMm:  mm(rec.Field("幅mm", "幅", "width_mm"), shelf.DefaultWidthMm),
			HeightMm: mm(rec.Field("高さmm", "高さ", "height_mm"), shelf.DefaultHeightMm),
			DepthMm:  mm(rec.Field("奥行mm", "奥行", "depth_mm"), DefaultCandidateDepthMm),
		})
	}
	return out, nil
}

func populated(rec Record) int {
	n := 0
	for _, v := range rec {
		if v != "" {
			n++
		}
	}
	return n
}

// LoadCandidates reads a candidate feed from a file.
func LoadCandidates(path string) ([]dcs.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open candidate feed: %w", err)
	}
	defer f.Close()

	cands, err := ReadCandidates(f)
	if err != nil {
		return nil, fmt.Errorf("candidate feed %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("count", len(cands)).Msg("Candidate feed loaded")
	return cands, nil
}
