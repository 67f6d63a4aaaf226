// Package review holds the review-and-reconciliation state machine: which
// candidates are visible, which one is selected, the single open account
// edit, and the protocol messages each user action produces.
//
// State is an immutable snapshot. Apply returns a new snapshot together with
// the commands the presentation layer should execute.
package review

import (
	"github.com/Veraticus/spice-reconcile/internal/model"
	"github.com/Veraticus/spice-reconcile/internal/protocol"
)

// State is a snapshot of the review session.
type State struct {
	set           *model.CandidateSet
	edit          *EditSession
	disabled      DisabledSet
	filter        Filter
	knownAccounts []string
	selection     Selection
}

// NewState returns an empty state. knownAccounts seed account suggestions.
func NewState(knownAccounts []string) State {
	known := make([]string, len(knownAccounts))
	copy(known, knownAccounts)
	return State{
		disabled:      NewDisabledSet(),
		filter:        ComputeFilter(nil, DisabledSet{}),
		knownAccounts: known,
	}
}

// HasCandidates reports whether a candidate set has been received.
func (s State) HasCandidates() bool { return s.set != nil }

// Generation returns the current generation, or -1 before any set arrived.
func (s State) Generation() int {
	if s.set == nil {
		return -1
	}
	return s.set.Generation
}

// Candidates returns the current candidate set. Callers must not modify it.
func (s State) Candidates() *model.CandidateSet { return s.set }

// Disabled returns the disabled used-transaction set.
func (s State) Disabled() DisabledSet { return s.disabled }

// Filter returns the visible-candidate mapping.
func (s State) Filter() Filter { return s.filter }

// Selection returns the selection.
func (s State) Selection() Selection { return s.selection }

// Selected returns the selected candidate and its global index. It reports
// false when no candidate is visible.
func (s State) Selected() (model.Candidate, int, bool) {
	if !s.filter.IsVisible(s.selection.Selected) {
		return model.Candidate{}, s.selection.Selected, false
	}
	c, ok := s.set.Candidate(s.selection.Selected)
	return c, s.selection.Selected, ok
}

// Hovered returns the hovered candidate.
func (s State) Hovered() (model.Candidate, bool) {
	if !s.selection.HasHover {
		return model.Candidate{}, false
	}
	return s.set.Candidate(s.selection.Hover)
}

// Edit returns the open edit session.
func (s State) Edit() (EditSession, bool) {
	if s.edit == nil {
		return EditSession{}, false
	}
	return *s.edit, true
}

// current reports whether generation matches the candidate set in view.
func (s State) current(generation int) bool {
	return s.set != nil && s.set.Generation == generation
}

// Apply reacts to a.
func (s State) Apply(a Action) (State, []Command) {
	next, cmds := s.apply(a)
	return next.normalize(), cmds
}

func (s State) apply(a Action) (State, []Command) {
	switch a := a.(type) {
	case ReceiveCandidates:
		return s.receive(a.Set), nil

	case SelectRelative:
		return s.selectRelative(a.Amount)

	case Select:
		return s.selectIndex(a.Generation, a.Index), nil

	case Hover:
		return s.hover(a.Generation, a.Index, a.On), nil

	case ToggleUsedTransaction:
		s.disabled = s.disabled.Toggle(a.ID)
		s.filter = ComputeFilter(s.set, s.disabled)
		return s, nil

	case OpenEdit:
		_, index, ok := s.Selected()
		if !ok {
			return s, nil
		}
		return s.openEdit(index, a.Target), nil

	case OpenEditAt:
		if !s.current(a.Generation) {
			return s, nil
		}
		return s.openEdit(a.Index, a.Target), nil

	case CommitEdit:
		return s.commitEdit(a.Value)

	case CancelEdit:
		s.edit = nil
		return s, nil

	case Accept:
		_, index, ok := s.Selected()
		if !ok {
			return s, nil
		}
		return s.accept(index)

	case AcceptAt:
		if !s.current(a.Generation) {
			return s, nil
		}
		return s.accept(a.Index)

	case Fixme:
		return s.fixme()

	case Revert:
		c, index, ok := s.Selected()
		if !ok || !c.Revertible() {
			return s, nil
		}
		return s, s.send(protocol.NewRevert(s.Generation(), index))

	case EditProperty:
		c, index, ok := s.Selected()
		if !ok || !c.Revertible() || s.edit != nil {
			return s, nil
		}
		return s, []Command{StartPropertyEdit{
			Generation: s.Generation(),
			Index:      index,
			Field:      a.Field,
			Initial:    a.Field.initialText(c),
		}}

	case ChangeProperties:
		if !s.current(a.Generation) {
			return s, nil
		}
		c, ok := s.set.Candidate(a.Index)
		if !ok || !c.Revertible() || !s.filter.IsVisible(a.Index) {
			return s, nil
		}
		return s, s.send(protocol.NewChangeProperties(s.Generation(), a.Index, c, a.Props))

	case Skip:
		if !a.Direction.Valid() {
			return s, nil
		}
		return s, s.send(protocol.NewSkip(a.Direction))

	case Retrain:
		return s, s.send(protocol.NewRetrain())
	}
	return s, nil
}

// receive installs a new candidate set. A new generation resets the
// selection to the first global index and clears hover; any new delivery
// discards the open edit. Sets older than the current one are dropped.
func (s State) receive(set model.CandidateSet) State {
	if s.set != nil && set.Generation < s.set.Generation {
		return s
	}
	changed := s.set == nil || set.Generation != s.set.Generation
	s.set = &set
	s.edit = nil
	s.filter = ComputeFilter(s.set, s.disabled)
	if changed {
		s.selection = Selection{Selected: 0}
	}
	return s
}

func (s State) commitEdit(value string) (State, []Command) {
	if s.edit == nil {
		return s, nil
	}
	edit := *s.edit
	s.edit = nil
	c, ok := s.set.Candidate(edit.CandidateIndex)
	if !ok {
		return s, nil
	}
	accounts := edit.Target.Apply(c.SubstitutedAccounts, value)
	return s, s.send(protocol.NewChangeAccounts(s.Generation(), edit.CandidateIndex, c, accounts))
}

func (s State) accept(index int) (State, []Command) {
	c, ok := s.set.Candidate(index)
	if !ok || !s.filter.IsVisible(index) {
		return s, nil
	}
	cmds := s.send(protocol.NewSelectCandidate(s.Generation(), index))
	if primary, ok := c.Primary(); ok {
		cmds = append(cmds, PostAccept{Meta: primary.Meta})
	}
	return s, cmds
}

func (s State) fixme() (State, []Command) {
	if s.edit != nil {
		return s, nil
	}
	c, index, ok := s.Selected()
	if !ok || len(c.SubstitutedAccounts) == 0 {
		return s, nil
	}
	return s, s.send(protocol.NewChangeAccounts(s.Generation(), index, c, c.OriginalAccounts()))
}

// send wraps msg in a Send command. Messages are built from the snapshot
// being transformed, so their generation is the one current at send time.
func (s State) send(msg protocol.Message) []Command {
	return []Command{Send{Message: msg}}
}

// Availability reports which toolbar actions apply to the current selection.
type Availability struct {
	SkipFirst     bool
	SkipPrior     bool
	SkipNext      bool
	SkipLast      bool
	ChangeAccount bool
	Fixme         bool
	Narration     bool
	Link          bool
	Tag           bool
	Revert        bool
}

// Actions returns the availability of toolbar actions.
func (s State) Actions() Availability {
	var a Availability
	if s.set == nil {
		return a
	}
	a.SkipFirst = s.set.PendingIndex != 0
	a.SkipPrior = s.set.PendingIndex != 0
	a.SkipNext = s.set.PendingIndex+1 < s.set.NumPending
	a.SkipLast = a.SkipNext

	c, _, ok := s.Selected()
	if !ok {
		return a
	}
	hasSubstitutions := len(c.SubstitutedAccounts) > 0
	a.ChangeAccount = hasSubstitutions
	a.Fixme = hasSubstitutions
	a.Narration = c.Revertible()
	a.Link = c.Revertible()
	a.Tag = c.Revertible()
	a.Revert = c.Revertible()
	return a
}
