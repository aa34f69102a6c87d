package dcs

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"shelf-dcs/internal/shelf"
)

// Action is the recommendation given to a product.
type Action string

const (
	ActionCut          Action = "cut"
	ActionFaceReduce   Action = "faceReduce"
	ActionFaceIncrease Action = "faceIncrease"
)

// Rule identifies which rule produced a proposal.
type Rule string

const (
	// Threshold ruleset (v4.0)
	RuleZeroSales     Rule = "rule1"
	RuleLowPI         Rule = "rule2"
	RuleWasteRisk     Rule = "rule3"
	RuleConsolidation Rule = "rule4"
	RuleFaceUp        Rule = "faceUp"

	// Balanced ruleset (v4.1)
	RuleBalancedCut      Rule = "balancedCut"
	RuleBalancedReduce   Rule = "balancedReduce"
	RuleBalancedIncrease Rule = "balancedIncrease"
)

// Key identifies a proposal: one per product per fixture.
type Key struct {
	FixtureID string
	JAN       string
}

func (k Key) String() string {
	return k.FixtureID + "_" + k.JAN
}

// MarshalText lets Key be used as a JSON object key.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the "<fixture>_<jan>" form. Catalog validation
// rejects JANs containing underscores, so the last separator splits the key.
func (k *Key) UnmarshalText(b []byte) error {
	s := string(b)
	i := strings.LastIndex(s, "_")
	if i <= 0 || i == len(s)-1 {
		return fmt.Errorf("invalid proposal key %q", s)
	}
	k.FixtureID, k.JAN = s[:i], s[i+1:]
	return nil
}

// Proposal is a single recommendation for buyer approval.
type Proposal struct {
	JAN          string            `json:"jan"`
	Name         string            `json:"name,omitempty"`
	FixtureID    string            `json:"fixtureId"`
	Row          int               `json:"row"`
	Action       Action            `json:"action"`
	Rule         Rule              `json:"rule"`
	CurrentFace  int               `json:"currentFace"`
	NewFaceDelta int               `json:"newFaceDelta"`
	PIValue      float64           `json:"piValue"`
	Reason       string            `json:"reason"`
	CategoryName string            `json:"categoryName"`
	Candidates   []ScoredCandidate `json:"candidates,omitempty"`
}

// Key returns the proposal's identity.
func (p Proposal) Key() Key {
	return Key{FixtureID: p.FixtureID, JAN: p.JAN}
}

// TargetFace resolves the proposal against a current facing count. Cuts
// resolve to zero; facing changes never go below one facing, so approving a
// reduction never removes the product.
func (p Proposal) TargetFace(currentFace int) int {
	if p.Action == ActionCut {
		return 0
	}
	return max(1, currentFace+p.NewFaceDelta)
}

// ProposalSet holds at most one proposal per (fixture, jan).
type ProposalSet map[Key]Proposal

// Add stores a proposal unless the product already has one. It reports
// whether the proposal was stored.
func (s ProposalSet) Add(p Proposal) bool {
	if _, exists := s[p.Key()]; exists {
		return false
	}
	s[p.Key()] = p
	return true
}

// Sorted returns proposals ordered by fixture, row and JAN.
func (s ProposalSet) Sorted() []Proposal {
	out := make([]Proposal, 0, len(s))
	for _, p := range s {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Proposal) int {
		return cmp.Or(
			cmp.Compare(a.FixtureID, b.FixtureID),
			cmp.Compare(a.Row, b.Row),
			cmp.Compare(a.JAN, b.JAN),
		)
	})
	return out
}

// Count returns how many proposals carry the given action.
func (s ProposalSet) Count(a Action) int {
	n := 0
	for _, p := range s {
		if p.Action == a {
			n++
		}
	}
	return n
}

// Item is a product enriched for classification.
type Item struct {
	shelf.Product
	FixtureID string
	Category  string
	PIValue   float64
	// Seq is the product's position in the catalog walk; ties sort by it.
	Seq int
}

func (it Item) key() Key {
	return Key{FixtureID: it.FixtureID, JAN: it.JAN}
}

func (it Item) proposal(action Action, rule Rule, delta int, reason string) Proposal {
	return Proposal{
		JAN:          it.JAN,
		Name:         it.Name,
		FixtureID:    it.FixtureID,
		Row:          it.Row,
		Action:       action,
		Rule:         rule,
		CurrentFace:  it.Face,
		NewFaceDelta: delta,
		PIValue:      it.PIValue,
		Reason:       reason,
		CategoryName: it.Category,
	}
}

// byPIDesc orders items by descending PI, then catalog order.
func byPIDesc(a, b Item) int {
	return cmp.Or(cmp.Compare(b.PIValue, a.PIValue), cmp.Compare(a.Seq, b.Seq))
}

// byPIAsc orders items by ascending PI, then catalog order.
func byPIAsc(a, b Item) int {
	return cmp.Or(cmp.Compare(a.PIValue, b.PIValue), cmp.Compare(a.Seq, b.Seq))
}
