package ledger

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"shelf-dcs/internal/dcs"
)

// Decision is the buyer's verdict on a proposal.
type Decision string

const (
	Approved Decision = "approved"
	Rejected Decision = "rejected"
)

// DefaultActor is recorded when no actor is given.
const DefaultActor = "buyer"

// Entry is one recorded decision.
type Entry struct {
	ID        string     `json:"id"`
	JAN       string     `json:"jan"`
	FixtureID string     `json:"fixtureId,omitempty"`
	Action    dcs.Action `json:"action,omitempty"`
	Decision  Decision   `json:"decision"`
	Actor     string     `json:"actor"`
	Reason    string     `json:"reason,omitempty"`
	DecidedAt time.Time  `json:"decidedAt"`
}

// Ledger is an append-only list of decisions. Record never modifies the
// receiver, so older ledger values stay valid.
type Ledger struct {
	entries []Entry
}

// New builds a ledger from previously recorded entries.
func New(entries ...Entry) Ledger {
	return Ledger{entries: slices.Clone(entries)}
}

// Record returns a new ledger with the entry appended. Missing id, actor and
// timestamp are filled in.
func (l Ledger) Record(e Entry) Ledger {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Actor == "" {
		e.Actor = DefaultActor
	}
	if e.DecidedAt.IsZero() {
		e.DecidedAt = time.Now().UTC()
	}

	next := make([]Entry, len(l.entries), len(l.entries)+1)
	copy(next, l.entries)
	return Ledger{entries: append(next, e)}
}

// Entries returns a copy of the recorded decisions in order.
func (l Ledger) Entries() []Entry {
	return slices.Clone(l.entries)
}

// Len returns the number of decisions.
func (l Ledger) Len() int { return len(l.entries) }

// Decided reports whether any decision exists for the JAN.
func (l Ledger) Decided(jan string) bool {
	return slices.ContainsFunc(l.entries, func(e Entry) bool { return e.JAN == jan })
}

func (l Ledger) decidedJANs() map[string]bool {
	out := make(map[string]bool, len(l.entries))
	for _, e := range l.entries {
		out[e.JAN] = true
	}
	return out
}

// Filter narrows the pending view. Zero values match everything.
type Filter struct {
	Action   dcs.Action `json:"action,omitempty"`
	Category string     `json:"category,omitempty"`
	MinPI    float64    `json:"minPi,omitempty"`
}

func (f Filter) match(p dcs.Proposal) bool {
	if f.Action != "" && p.Action != f.Action {
		return false
	}
	if f.Category != "" && p.CategoryName != f.Category {
		return false
	}
	return p.PIValue >= f.MinPI
}

// Pending returns the proposals whose JAN has no decision yet. A decision on
// a JAN excludes it from every fixture.
func Pending(proposals dcs.ProposalSet, l Ledger) dcs.ProposalSet {
	return PendingFiltered(proposals, l, Filter{})
}

// PendingFiltered is Pending narrowed by a filter.
func PendingFiltered(proposals dcs.ProposalSet, l Ledger, f Filter) dcs.ProposalSet {
	decided := l.decidedJANs()
	out := make(dcs.ProposalSet)
	for k, p := range proposals {
		if decided[p.JAN] || !f.match(p) {
			continue
		}
		out[k] = p
	}
	return out
}

// Summary reports progress on a proposal batch.
type Summary struct {
	Total    int                `json:"total"`
	Pending  int                `json:"pending"`
	Approved int                `json:"approved"`
	Rejected int                `json:"rejected"`
	ByAction map[dcs.Action]int `json:"byAction"`
}

// Summarize counts proposals and decisions.
func Summarize(proposals dcs.ProposalSet, l Ledger) Summary {
	s := Summary{
		Total:    len(proposals),
		Pending:  len(Pending(proposals, l)),
		ByAction: make(map[dcs.Action]int),
	}
	for _, p := range proposals {
		s.ByAction[p.Action]++
	}
	for _, e := range l.entries {
		switch e.Decision {
		case Approved:
			s.Approved++
		case Rejected:
			s.Rejected++
		}
	}
	return s
}
