package review

import (
	"fmt"

	"github.com/Veraticus/spice-reconcile/internal/model"
)

// TargetKind selects which substitutions an edit applies to.
type TargetKind int

// Target kinds.
const (
	TargetWhole TargetKind = iota
	TargetGroup
	TargetField
)

// EditTarget names the substitutions an account edit replaces.
type EditTarget struct {
	Kind TargetKind
	N    int
}

// Whole targets every substitution of the candidate.
func Whole() EditTarget { return EditTarget{Kind: TargetWhole} }

// Group targets the substitution with group number n.
func Group(n int) EditTarget { return EditTarget{Kind: TargetGroup, N: n} }

// Field targets the substitution at position n.
func Field(n int) EditTarget { return EditTarget{Kind: TargetField, N: n} }

func (t EditTarget) String() string {
	switch t.Kind {
	case TargetGroup:
		return fmt.Sprintf("group %d", t.N)
	case TargetField:
		return fmt.Sprintf("field %d", t.N)
	default:
		return "all"
	}
}

func (t EditTarget) matches(pos int, s model.Substitution) bool {
	switch t.Kind {
	case TargetGroup:
		return s.GroupNumber == t.N
	case TargetField:
		return pos == t.N
	default:
		return true
	}
}

// first returns the position of the first substitution the target matches.
func (t EditTarget) first(subs []model.Substitution) (int, bool) {
	for pos, s := range subs {
		if t.matches(pos, s) {
			return pos, true
		}
	}
	return 0, false
}

// Apply returns the account list with value written to every matching
// substitution. Other substitutions keep their current account.
func (t EditTarget) Apply(subs []model.Substitution, value string) []string {
	accounts := make([]string, len(subs))
	for pos, s := range subs {
		if t.matches(pos, s) {
			accounts[pos] = value
			continue
		}
		accounts[pos] = s.AccountName
	}
	return accounts
}

// EditSession is the single open inline account edit.
type EditSession struct {
	InitialValue   string
	Suggestions    []string
	Target         EditTarget
	CandidateIndex int
}

// openEdit returns the state with a session opened on the candidate, or s
// unchanged when a session is already open or the target does not exist.
func (s State) openEdit(index int, target EditTarget) State {
	if s.edit != nil {
		return s
	}
	c, ok := s.set.Candidate(index)
	if !ok || !s.filter.IsVisible(index) || len(c.SubstitutedAccounts) == 0 {
		return s
	}
	pos, ok := target.first(c.SubstitutedAccounts)
	if !ok {
		return s
	}
	s.edit = &EditSession{
		CandidateIndex: index,
		Target:         target,
		InitialValue:   c.SubstitutedAccounts[pos].AccountName,
		Suggestions:    s.set.AccountSuggestions(index, s.knownAccounts),
	}
	return s
}
