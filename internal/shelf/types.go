package shelf

import (
	"maps"
	"slices"
	"time"
)

// Defaults applied when geometry is missing from an import.
const (
	DefaultWidthMm      = 90
	DefaultHeightMm     = 200
	DefaultDepth        = 3
	DefaultRowHeightMm  = 300
	DefaultShelfWidthMm = 900
	DefaultCostRate     = 70.0

	// MaxFace caps the facing count an editor can request for one SKU.
	MaxFace = 6
	// MaxDepth caps the front-to-back unit count.
	MaxDepth = 10
)

// Product is a SKU placed in a fixture. JAN is unique within a fixture.
type Product struct {
	JAN      string  `json:"jan"`
	Name     string  `json:"name"`
	Maker    string  `json:"maker,omitempty"`
	Price    int     `json:"price"`
	CostRate float64 `json:"costRate"` // percent
	Rank     string  `json:"rank,omitempty"`

	// Placement
	Row   int     `json:"row"`   // 1-based shelf level
	Order float64 `json:"order"` // lateral tie-break, not unique

	// Geometry
	Face     int `json:"face"`
	WidthMm  int `json:"width_mm"`
	HeightMm int `json:"height_mm"`
	Depth    int `json:"depth"`
	Cap      int `json:"cap"`

	// Performance
	SalesQty     int     `json:"salesQty"`
	TotalSales   int64   `json:"totalSales"`
	TotalProfit  int64   `json:"totalProfit"`
	DailyAvgQty  float64 `json:"dailyAvgQty"`
	SalesWeek    []int   `json:"salesWeek,omitempty"`
	CategoryName string  `json:"categoryName"`

	// Stock
	BaseStock       int `json:"baseStock,omitempty"`
	CurrentStock    int `json:"currentStock,omitempty"`
	OrderPoint      int `json:"orderPoint,omitempty"`
	StockCorrection int `json:"stockCorrection,omitempty"`

	Tag string `json:"tag,omitempty"`
}

// EffectiveWidthMm returns the lateral width of a single facing.
func (p Product) EffectiveWidthMm() int {
	if p.WidthMm <= 0 {
		return DefaultWidthMm
	}
	return p.WidthMm
}

// OccupiedWidthMm is the lateral space taken by all facings of the product.
func (p Product) OccupiedWidthMm() int {
	return p.EffectiveWidthMm() * p.Face
}

// EffectiveStock is the stock shown to staff: on-hand plus manual correction.
func (p Product) EffectiveStock() int {
	return p.CurrentStock + p.StockCorrection
}

func (p Product) effectiveHeightMm() int {
	if p.HeightMm <= 0 {
		return DefaultHeightMm
	}
	return p.HeightMm
}

func (p Product) effectiveDepth() int {
	if p.Depth <= 0 {
		return DefaultDepth
	}
	return p.Depth
}

// RemovedProduct is a product cut from the active list, restorable until purged.
type RemovedProduct struct {
	Product
	RemovedAt time.Time `json:"removedAt"`
}

// Fixture is one gondola unit.
type Fixture struct {
	ID            string           `json:"fixtureId"`
	FixtureType   string           `json:"fixtureType,omitempty"`
	Department    string           `json:"department,omitempty"`
	Categories    []string         `json:"categories,omitempty"`
	CategoryLabel string           `json:"categoryLabel,omitempty"`
	Rows          int              `json:"rows"`
	ShelfWidthMm  int              `json:"shelfWidthMm"`
	RowHeights    map[int]int      `json:"rowHeights"`
	Products      []Product        `json:"products"`
	Removed       []RemovedProduct `json:"removed,omitempty"`
}

// ShelfWidth returns the lateral capacity of every row.
func (f *Fixture) ShelfWidth() int {
	if f.ShelfWidthMm <= 0 {
		return DefaultShelfWidthMm
	}
	return f.ShelfWidthMm
}

// RowHeight returns the height of a shelf level, defaulting when unknown.
func (f *Fixture) RowHeight(row int) int {
	if h, ok := f.RowHeights[row]; ok && h > 0 {
		return h
	}
	return DefaultRowHeightMm
}

// Find returns the index of a product in the active list, or -1.
func (f *Fixture) Find(jan string) int {
	for i := range f.Products {
		if f.Products[i].JAN == jan {
			return i
		}
	}
	return -1
}

func (f *Fixture) findRemoved(jan string) int {
	for i := range f.Removed {
		if f.Removed[i].JAN == jan {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so that callers can keep an untouched original.
func (f *Fixture) Clone() *Fixture {
	c := *f
	c.Categories = slices.Clone(f.Categories)
	c.RowHeights = maps.Clone(f.RowHeights)
	c.Products = slices.Clone(f.Products)
	for i := range c.Products {
		c.Products[i].SalesWeek = slices.Clone(c.Products[i].SalesWeek)
	}
	c.Removed = slices.Clone(f.Removed)
	for i := range c.Removed {
		c.Removed[i].SalesWeek = slices.Clone(c.Removed[i].SalesWeek)
	}
	return &c
}
