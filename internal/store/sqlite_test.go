package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelf-dcs/internal/catalog"
	"shelf-dcs/internal/shelf"
)

func testSnapshot(t *testing.T) *catalog.Snapshot {
	t.Helper()
	snap, err := catalog.Decode([]byte(`{
	  "storeCode": "0123",
	  "storeName": "Ekimae",
	  "periodFrom": "20250101",
	  "periodTo": "20250219",
	  "periodDays": 49,
	  "departments": {"Dairy": ["G01"]},
	  "fixtures": {
	    "G01": {
	      "department": "Dairy",
	      "categories": ["milk", "yogurt"],
	      "rows": 2,
	      "shelfWidthMm": 900,
	      "rowHeights": {"1": 280, "2": 300},
	      "products": [
	        {"jan": "4901", "name": "Milk", "row": 1, "order": 1, "face": 3, "width_mm": 75, "height_mm": 250, "depth": 4, "salesQty": 98, "dailyAvgQty": 2, "salesWeek": [14,14,14,14,14,14,14], "categoryName": "milk", "rank": "A", "price": 198, "costRate": 68.5},
	        {"jan": "4902", "name": "Yogurt", "row": 2, "order": 1.5, "face": 2, "categoryName": "yogurt"}
	      ]
	    },
	    "G02": {"products": [{"jan": "5001", "name": "Eggs", "currentStock": 12, "stockCorrection": -2}]}
	  }
	}`))
	require.NoError(t, err)
	return snap
}

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadSnapshot_Empty(t *testing.T) {
	s := openTestStore(t)
	_, err := s.LoadSnapshot(context.Background(), "")
	assert.True(t, errors.Is(err, ErrNoCatalog))
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	snap := testSnapshot(t)
	require.NoError(t, s.SaveSnapshot(ctx, snap))

	got, err := s.LoadSnapshot(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, snap.StoreCode, got.StoreCode)
	assert.Equal(t, snap.PeriodDays, got.PeriodDays)
	assert.Equal(t, snap.PeriodFrom, got.PeriodFrom)
	assert.Equal(t, snap.Departments, got.Departments)
	require.Equal(t, snap.FixtureIDs(), got.FixtureIDs())

	for _, id := range snap.FixtureIDs() {
		want, have := snap.Fixtures[id], got.Fixtures[id]
		assert.Equal(t, want.Products, have.Products, id)
		assert.Equal(t, want.RowHeights, have.RowHeights, id)
		assert.Equal(t, want.Categories, have.Categories, id)
		assert.Equal(t, want.ShelfWidthMm, have.ShelfWidthMm, id)
		assert.Equal(t, want.Rows, have.Rows, id)
	}

	byCode, err := s.LoadSnapshot(ctx, "0123")
	require.NoError(t, err)
	assert.Len(t, byCode.Fixtures, 2)

	_, err = s.LoadSnapshot(ctx, "9999")
	assert.True(t, errors.Is(err, ErrNoCatalog))
}

func TestSaveSnapshot_ReplacesPreviousImport(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.SaveSnapshot(ctx, testSnapshot(t)))

	smaller := testSnapshot(t)
	delete(smaller.Fixtures, "G02")
	require.NoError(t, s.SaveSnapshot(ctx, smaller))

	got, err := s.LoadSnapshot(ctx, "0123")
	require.NoError(t, err)
	assert.Equal(t, []string{"G01"}, got.FixtureIDs())
}

func TestSaveFixture_PersistsMutations(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	snap := testSnapshot(t)
	require.NoError(t, s.SaveSnapshot(ctx, snap))

	f := snap.Fixtures["G01"]
	m := shelf.NewMutator(shelf.AlwaysConfirm)
	removedAt := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	m.Clock = func() time.Time { return removedAt }
	_, err := m.DeleteProduct(f, "4902")
	require.NoError(t, err)
	_, err = m.ChangeFacing(f, "4901", 4)
	require.NoError(t, err)
	require.NoError(t, s.SaveFixture(ctx, snap.StoreCode, f))

	got, err := s.LoadSnapshot(ctx, "0123")
	require.NoError(t, err)
	g := got.Fixtures["G01"]
	require.Len(t, g.Products, 1)
	assert.Equal(t, 4, g.Products[0].Face)
	assert.Equal(t, f.Products[0].Cap, g.Products[0].Cap)

	require.Len(t, g.Removed, 1)
	assert.Equal(t, "4902", g.Removed[0].JAN)
	assert.True(t, removedAt.Equal(g.Removed[0].RemovedAt), "removed at %v", g.Removed[0].RemovedAt)
}

func TestEditLog(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.LogEdit(ctx, "G01", "sato", "facing", map[string]any{"jan": "4901", "from": 3, "to": 4})
	require.NoError(t, err)
	_, err = s.LogEdit(ctx, "G02", "sato", "delete", map[string]any{"jan": "5001"})
	require.NoError(t, err)
	last, err := s.LogEdit(ctx, "G01", "suzuki", "move", map[string]any{"jan": "4901", "row": 2})
	require.NoError(t, err)

	edits, err := s.Edits(ctx, "G01", 10)
	require.NoError(t, err)
	require.Len(t, edits, 2)
	assert.Equal(t, last.ID, edits[0].ID, "newest first")
	assert.Equal(t, "move", edits[0].Action)

	var details map[string]any
	require.NoError(t, json.Unmarshal(edits[1].Details, &details))
	assert.Equal(t, float64(4), details["to"])

	all, err := s.Edits(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "shelf.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveSnapshot(context.Background(), testSnapshot(t)))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.LoadSnapshot(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "0123", got.StoreCode)
}
