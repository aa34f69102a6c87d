package planner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/rs/zerolog/log"

	"shelf-dcs/internal/catalog"
	"shelf-dcs/internal/dcs"
	"shelf-dcs/internal/ledger"
	"shelf-dcs/internal/shelf"
	"shelf-dcs/internal/store"
)

// CatalogStore persists the catalog and its edit log.
type CatalogStore interface {
	SaveSnapshot(ctx context.Context, snap *catalog.Snapshot) error
	LoadSnapshot(ctx context.Context, storeCode string) (*catalog.Snapshot, error)
	SaveFixture(ctx context.Context, storeCode string, f *shelf.Fixture) error
	LogEdit(ctx context.Context, fixtureID, actor, action string, details any) (store.Edit, error)
	Edits(ctx context.Context, fixtureID string, limit int) ([]store.Edit, error)
}

// DecisionStore persists the decision ledger.
type DecisionStore interface {
	Load() (ledger.Ledger, error)
	Save(l ledger.Ledger) error
	Reset() error
}

// Options configures a Service.
type Options struct {
	Ruleset        string
	PeriodDays     int
	Params         dcs.Params
	Actor          string
	EvaluationPath string
	// BaselinePath keeps the catalog as last imported, for change exports.
	BaselinePath string
}

// ErrNoSnapshot is returned before a catalog has been imported or loaded.
var ErrNoSnapshot = errors.New("no catalog loaded")

// Service threads one catalog snapshot through the engine, the ledger and
// the placement mutator. Mutations of the same fixture are serialized.
type Service struct {
	opts      Options
	catalog   CatalogStore
	decisions DecisionStore

	mu    sync.Mutex
	snap  *catalog.Snapshot
	locks map[string]*sync.Mutex
	// decisionMu serializes ledger read-modify-write cycles.
	decisionMu sync.Mutex
}

// New returns a service without a loaded catalog.
func New(opts Options, cs CatalogStore, ds DecisionStore) *Service {
	if opts.Actor == "" {
		opts.Actor = ledger.DefaultActor
	}
	return &Service{
		opts:      opts,
		catalog:   cs,
		decisions: ds,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Load reads the latest catalog from the store.
func (s *Service) Load(ctx context.Context) error {
	snap, err := s.catalog.LoadSnapshot(ctx, "")
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return nil
}

// Import replaces the catalog with a new snapshot and persists it.
func (s *Service) Import(ctx context.Context, snap *catalog.Snapshot) error {
	if err := s.catalog.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("failed to persist imported catalog: %w", err)
	}
	if s.opts.BaselinePath != "" {
		if err := catalog.Save(s.opts.BaselinePath, snap); err != nil {
			return fmt.Errorf("failed to save catalog baseline: %w", err)
		}
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	log.Info().Str("store", snap.StoreCode).Int("products", snap.ProductCount()).Msg("Catalog imported")
	return nil
}

// Baseline returns the catalog as it was last imported. Without a stored
// baseline the current catalog is returned, so every product compares as
// unchanged.
func (s *Service) Baseline() (*catalog.Snapshot, error) {
	if s.opts.BaselinePath != "" {
		snap, err := catalog.Load(s.opts.BaselinePath)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return s.Snapshot()
}

// Snapshot returns a deep copy of the current catalog.
func (s *Service) Snapshot() (*catalog.Snapshot, error) {
	s.mu.Lock()
	snap := s.snap
	s.mu.Unlock()
	if snap == nil {
		return nil, ErrNoSnapshot
	}

	c := *snap
	c.Fixtures = make(map[string]*shelf.Fixture, len(snap.Fixtures))
	for id, f := range snap.Fixtures {
		lock := s.lockFor(id)
		lock.Lock()
		c.Fixtures[id] = f.Clone()
		lock.Unlock()
	}
	return &c, nil
}

func (s *Service) lockFor(fixtureID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[fixtureID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[fixtureID] = l
	}
	return l
}

func (s *Service) fixture(fixtureID string) (*catalog.Snapshot, *shelf.Fixture, error) {
	s.mu.Lock()
	snap := s.snap
	s.mu.Unlock()
	if snap == nil {
		return nil, nil, ErrNoSnapshot
	}
	f, err := snap.Fixture(fixtureID)
	if err != nil {
		return nil, nil, err
	}
	return snap, f, nil
}

// mutate runs fn with exclusive access to one fixture, then persists the
// fixture and logs the edit when fn reports a change.
func (s *Service) mutate(ctx context.Context, fixtureID, actor, action string, fn func(f *shelf.Fixture) (details any, changed bool, err error)) error {
	return s.mutateThen(ctx, fixtureID, actor, action, fn, nil)
}

// mutateThen works like mutate but runs commit after the fixture is
// persisted and before the change becomes visible. fn edits a copy of the
// fixture; the in-memory catalog is only updated once persisting and commit
// succeed. A failing commit restores the stored fixture.
func (s *Service) mutateThen(ctx context.Context, fixtureID, actor, action string, fn func(f *shelf.Fixture) (details any, changed bool, err error), commit func() error) error {
	snap, f, err := s.fixture(fixtureID)
	if err != nil {
		return err
	}

	lock := s.lockFor(fixtureID)
	lock.Lock()
	defer lock.Unlock()

	work := f.Clone()
	details, changed, err := fn(work)
	if err != nil || !changed {
		return err
	}

	if err := s.catalog.SaveFixture(ctx, snap.StoreCode, work); err != nil {
		return fmt.Errorf("failed to persist fixture %s: %w", fixtureID, err)
	}
	if commit != nil {
		if err := commit(); err != nil {
			if rerr := s.catalog.SaveFixture(ctx, snap.StoreCode, f); rerr != nil {
				log.Error().Err(rerr).Str("fixture", fixtureID).Msg("Failed to restore fixture after aborted edit")
			}
			return err
		}
	}
	*f = *work

	if actor == "" {
		actor = s.opts.Actor
	}
	if _, err := s.catalog.LogEdit(ctx, fixtureID, actor, action, details); err != nil {
		log.Warn().Err(err).Str("fixture", fixtureID).Str("action", action).Msg("Failed to record shelf edit")
	}
	log.Info().Str("fixture", fixtureID).Str("action", action).Str("actor", actor).Msg("Shelf edited")
	return nil
}

// Edits returns the recent edit log of a fixture.
func (s *Service) Edits(ctx context.Context, fixtureID string, limit int) ([]store.Edit, error) {
	return s.catalog.Edits(ctx, fixtureID, limit)
}

// RowOccupancy reports per-row width use of a fixture.
func (s *Service) RowOccupancy(fixtureID string) ([]shelf.RowOccupancy, error) {
	_, f, err := s.fixture(fixtureID)
	if err != nil {
		return nil, err
	}
	lock := s.lockFor(fixtureID)
	lock.Lock()
	defer lock.Unlock()
	return f.Occupancy(), nil
}
