package ledger

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelf-dcs/internal/dcs"
)

func proposals() dcs.ProposalSet {
	ps := make(dcs.ProposalSet)
	ps.Add(dcs.Proposal{JAN: "J1", FixtureID: "G01", Action: dcs.ActionCut, CategoryName: "milk", PIValue: 0})
	ps.Add(dcs.Proposal{JAN: "J2", FixtureID: "G01", Action: dcs.ActionFaceReduce, CategoryName: "milk", PIValue: 0.2})
	ps.Add(dcs.Proposal{JAN: "J3", FixtureID: "G02", Action: dcs.ActionFaceIncrease, CategoryName: "yogurt", PIValue: 6})
	// Same JAN on a second fixture.
	ps.Add(dcs.Proposal{JAN: "J2", FixtureID: "G02", Action: dcs.ActionFaceReduce, CategoryName: "milk", PIValue: 0.25})
	return ps
}

func TestRecord_DoesNotModifyReceiver(t *testing.T) {
	empty := Ledger{}
	one := empty.Record(Entry{JAN: "J1", Decision: Approved})
	two := one.Record(Entry{JAN: "J2", Decision: Rejected, Reason: "seasonal"})

	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 1, one.Len())
	assert.Equal(t, 2, two.Len())

	e := two.Entries()[1]
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, DefaultActor, e.Actor)
	assert.False(t, e.DecidedAt.IsZero())
	assert.Equal(t, "seasonal", e.Reason)
}

func TestRecord_BranchesAreIndependent(t *testing.T) {
	base := Ledger{}.Record(Entry{JAN: "J1", Decision: Approved})
	a := base.Record(Entry{JAN: "A", Decision: Approved})
	b := base.Record(Entry{JAN: "B", Decision: Rejected})

	assert.True(t, a.Decided("A"))
	assert.False(t, a.Decided("B"))
	assert.True(t, b.Decided("B"))
	assert.False(t, b.Decided("A"))
}

func TestPending_ExcludesDecidedJANAcrossFixtures(t *testing.T) {
	l := Ledger{}.Record(Entry{JAN: "J2", FixtureID: "G01", Decision: Rejected})

	got := Pending(proposals(), l)
	require.Len(t, got, 2)
	_, ok := got[dcs.Key{FixtureID: "G02", JAN: "J2"}]
	assert.False(t, ok)
	_, ok = got[dcs.Key{FixtureID: "G01", JAN: "J1"}]
	assert.True(t, ok)
}

func TestPendingFiltered(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no filter", Filter{}, 4},
		{"by action", Filter{Action: dcs.ActionFaceReduce}, 2},
		{"by category", Filter{Category: "yogurt"}, 1},
		{"by min PI", Filter{MinPI: 0.2}, 3},
		{"combined", Filter{Action: dcs.ActionFaceReduce, MinPI: 0.22}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, PendingFiltered(proposals(), Ledger{}, tt.filter), tt.want)
		})
	}
}

func TestSummarize(t *testing.T) {
	l := Ledger{}.
		Record(Entry{JAN: "J1", Action: dcs.ActionCut, Decision: Approved}).
		Record(Entry{JAN: "J3", Action: dcs.ActionFaceIncrease, Decision: Rejected})

	s := Summarize(proposals(), l)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Pending)
	assert.Equal(t, 1, s.Approved)
	assert.Equal(t, 1, s.Rejected)
	assert.Equal(t, map[dcs.Action]int{
		dcs.ActionCut:          1,
		dcs.ActionFaceReduce:   2,
		dcs.ActionFaceIncrease: 1,
	}, s.ByAction)
}

func TestFileStore_SaveLoadReset(t *testing.T) {
	store := NewFileStore(t.TempDir())

	l, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	l = l.Record(Entry{JAN: "J1", FixtureID: "G01", Action: dcs.ActionCut, Decision: Approved, Actor: "sato", DecidedAt: at})
	l = l.Record(Entry{JAN: "J2", Decision: Rejected, Reason: "promo next week", DecidedAt: at})
	require.NoError(t, store.Save(l))

	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, l.Entries(), loaded.Entries())

	require.NoError(t, store.Reset())
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())

	// Resetting twice is harmless.
	require.NoError(t, store.Reset())
}

func TestFileStore_SkipsCorruptLines(t *testing.T) {
	store := NewFileStore(t.TempDir())
	content := `{"id":"1","jan":"J1","decision":"approved","actor":"buyer","decidedAt":"2025-03-01T10:00:00Z"}
not json
{"id":"2","jan":"J2","decision":"rejected","actor":"buyer","decidedAt":"2025-03-01T11:00:00Z"}
`
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o644))

	l, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())
	assert.True(t, l.Decided("J2"))
}
