package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog/log"

	"shelf-dcs/internal/shelf"
)

// Snapshot is one store's planogram with the sales period it was measured over.
type Snapshot struct {
	StoreCode   string                    `json:"storeCode"`
	StoreName   string                    `json:"storeName,omitempty"`
	Company     string                    `json:"company,omitempty"`
	PeriodFrom  string                    `json:"periodFrom,omitempty"`
	PeriodTo    string                    `json:"periodTo,omitempty"`
	PeriodDays  int                       `json:"periodDays"`
	Departments map[string][]string       `json:"departments,omitempty"`
	Fixtures    map[string]*shelf.Fixture `json:"fixtures"`
}

// FixtureIDs returns the fixture ids in sorted order.
func (s *Snapshot) FixtureIDs() []string {
	ids := make([]string, 0, len(s.Fixtures))
	for id := range s.Fixtures {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Fixture returns a fixture by id.
func (s *Snapshot) Fixture(id string) (*shelf.Fixture, error) {
	f, ok := s.Fixtures[id]
	if !ok {
		return nil, fmt.Errorf("fixture %s: %w", id, shelf.ErrNotFound)
	}
	return f, nil
}

// ProductCount returns the number of active products across all fixtures.
func (s *Snapshot) ProductCount() int {
	n := 0
	for _, f := range s.Fixtures {
		n += len(f.Products)
	}
	return n
}

// Clone deep-copies the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	c.Departments = make(map[string][]string, len(s.Departments))
	for k, v := range s.Departments {
		c.Departments[k] = slices.Clone(v)
	}
	c.Fixtures = make(map[string]*shelf.Fixture, len(s.Fixtures))
	for k, f := range s.Fixtures {
		c.Fixtures[k] = f.Clone()
	}
	return &c
}

// ApplyDefaults fills missing geometry and metadata the way the seed data
// does and recomputes every cap. It returns the number of caps corrected.
func (s *Snapshot) ApplyDefaults() int {
	if s.Fixtures == nil {
		s.Fixtures = make(map[string]*shelf.Fixture)
	}
	fixed := 0
	for id, f := range s.Fixtures {
		if f.ID == "" {
			f.ID = id
		}
		if f.FixtureType == "" {
			f.FixtureType = "gondola"
		}
		if f.ShelfWidthMm <= 0 {
			f.ShelfWidthMm = shelf.DefaultShelfWidthMm
		}
		for i := range f.Products {
			p := &f.Products[i]
			if p.Row <= 0 {
				p.Row = 1
			}
			if p.Face <= 0 {
				p.Face = 1
			}
			if p.WidthMm <= 0 {
				p.WidthMm = shelf.DefaultWidthMm
			}
			if p.HeightMm <= 0 {
				p.HeightMm = shelf.DefaultHeightMm
			}
			if p.Depth <= 0 {
				p.Depth = shelf.DefaultDepth
			}
			if p.CostRate <= 0 {
				p.CostRate = shelf.DefaultCostRate
			}
			f.Rows = max(f.Rows, p.Row)
		}
		if f.RowHeights == nil {
			f.RowHeights = make(map[int]int, f.Rows)
		}
		for r := 1; r <= f.Rows; r++ {
			if f.RowHeights[r] <= 0 {
				f.RowHeights[r] = shelf.DefaultRowHeightMm
			}
		}
		fixed += f.RecomputeCapacity()
	}
	return fixed
}

// Load reads a snapshot document, validates it and applies defaults.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	snap, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	log.Info().
		Str("path", path).
		Str("store", snap.StoreCode).
		Int("fixtures", len(snap.Fixtures)).
		Int("products", snap.ProductCount()).
		Msg("Catalog loaded")
	return snap, nil
}

// Decode validates raw JSON against the snapshot schema and decodes it.
func Decode(data []byte) (*Snapshot, error) {
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate(instance); err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if fixed := snap.ApplyDefaults(); fixed > 0 {
		log.Warn().Int("products", fixed).Msg("Stored capacity disagreed with shelf geometry; recomputed")
	}
	return &snap, nil
}

// Save writes the snapshot as indented JSON, replacing the file atomically.
func Save(path string, s *Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename catalog file: %w", err)
	}
	log.Debug().Str("path", path).Msg("Catalog saved")
	return nil
}
