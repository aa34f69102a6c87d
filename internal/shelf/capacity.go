package shelf

// MaxStack returns how many units fit vertically in a row. It never returns
// less than 1, even when the product is taller than the row.
func MaxStack(productHeightMm, rowHeightMm int) int {
	if productHeightMm <= 0 || rowHeightMm <= 0 {
		return 1
	}
	return max(1, rowHeightMm/productHeightMm)
}

// Capacity is face × depth × stack count.
func Capacity(face, depth, productHeightMm, rowHeightMm int) int {
	return face * depth * MaxStack(productHeightMm, rowHeightMm)
}

// RowOccupiedWidth sums widthMm × face over the products of a row.
func RowOccupiedWidth(products []Product, row int) int {
	total := 0
	for _, p := range products {
		if p.Row == row {
			total += p.OccupiedWidthMm()
		}
	}
	return total
}

// RowFreeSpace is the remaining lateral space of a row. Negative means overflow.
func RowFreeSpace(products []Product, row int, shelfWidthMm int) int {
	return shelfWidthMm - RowOccupiedWidth(products, row)
}

// RowOccupancy describes how full a single shelf level is.
type RowOccupancy struct {
	Row          int  `json:"row"`
	HeightMm     int  `json:"heightMm"`
	OccupiedMm   int  `json:"occupiedMm"`
	FreeMm       int  `json:"freeMm"`
	ShelfWidthMm int  `json:"shelfWidthMm"`
	Products     int  `json:"products"`
	Overflow     bool `json:"overflow"`
}

// Occupancy reports every row of the fixture, flagging rows wider than the shelf.
func (f *Fixture) Occupancy() []RowOccupancy {
	rows := f.Rows
	for _, p := range f.Products {
		if p.Row > rows {
			rows = p.Row
		}
	}

	out := make([]RowOccupancy, 0, rows)
	width := f.ShelfWidth()
	for r := 1; r <= rows; r++ {
		count := 0
		for _, p := range f.Products {
			if p.Row == r {
				count++
			}
		}
		free := RowFreeSpace(f.Products, r, width)
		out = append(out, RowOccupancy{
			Row:          r,
			HeightMm:     f.RowHeight(r),
			OccupiedMm:   width - free,
			FreeMm:       free,
			ShelfWidthMm: width,
			Products:     count,
			Overflow:     free < 0,
		})
	}
	return out
}

// Overflows returns only the rows that exceed the shelf width.
func (f *Fixture) Overflows() []RowOccupancy {
	var out []RowOccupancy
	for _, r := range f.Occupancy() {
		if r.Overflow {
			out = append(out, r)
		}
	}
	return out
}

// ExpectedCap computes the capacity a product should carry in this fixture.
func (f *Fixture) ExpectedCap(p Product) int {
	return Capacity(p.Face, p.effectiveDepth(), p.effectiveHeightMm(), f.RowHeight(p.Row))
}

// CapacityMismatch is a product whose cached cap disagrees with the model.
type CapacityMismatch struct {
	JAN      string `json:"jan"`
	Cached   int    `json:"cached"`
	Expected int    `json:"expected"`
}

// CapacityMismatches lists active products whose cap is stale.
func (f *Fixture) CapacityMismatches() []CapacityMismatch {
	var out []CapacityMismatch
	for _, p := range f.Products {
		if want := f.ExpectedCap(p); want != p.Cap {
			out = append(out, CapacityMismatch{JAN: p.JAN, Cached: p.Cap, Expected: want})
		}
	}
	return out
}

// RecomputeCapacity refreshes the cap of every active product and returns how many changed.
func (f *Fixture) RecomputeCapacity() int {
	changed := 0
	for i := range f.Products {
		want := f.ExpectedCap(f.Products[i])
		if f.Products[i].Cap != want {
			f.Products[i].Cap = want
			changed++
		}
	}
	return changed
}
