package review

// Selection is the selected and hovered candidate, by global index.
type Selection struct {
	Selected int
	Hover    int
	HasHover bool
}

// selectRelative moves the selection amount steps through the visible list,
// wrapping at both ends. A selection that is not visible is corrected to the
// first visible candidate instead of being moved.
func (s State) selectRelative(amount int) (State, []Command) {
	k := s.filter.Len()
	if k == 0 {
		return s, nil
	}
	next, _ := s.filter.First()
	if pos, ok := s.filter.Position(s.selection.Selected); ok {
		next, _ = s.filter.At(((pos+amount)%k + k) % k)
	}
	s.selection.Selected = next
	return s, []Command{ScrollToCandidate{Index: next}}
}

func (s State) selectIndex(generation, index int) State {
	if !s.current(generation) {
		return s
	}
	if !s.filter.IsVisible(index) {
		return s
	}
	s.selection.Selected = index
	return s
}

func (s State) hover(generation, index int, on bool) State {
	if !s.current(generation) {
		return s
	}
	if !on {
		s.selection.Hover = 0
		s.selection.HasHover = false
		return s
	}
	if !s.filter.IsVisible(index) {
		return s
	}
	s.selection.Hover = index
	s.selection.HasHover = true
	return s
}

// normalize corrects invariant violations: a selection that is outside the
// current set or hidden by the filter resets to the first visible candidate,
// a hover on a row that is not shown clears, and an edit on a candidate that
// is missing or hidden is dropped.
func (s State) normalize() State {
	n := s.set.Len()
	if first, ok := s.filter.First(); ok {
		if !s.filter.IsVisible(s.selection.Selected) {
			s.selection.Selected = first
		}
	} else if s.selection.Selected < 0 || s.selection.Selected >= max(n, 1) {
		s.selection.Selected = 0
	}
	if s.selection.HasHover && !s.filter.IsVisible(s.selection.Hover) {
		s.selection.Hover = 0
		s.selection.HasHover = false
	}
	if s.edit != nil && !s.filter.IsVisible(s.edit.CandidateIndex) {
		s.edit = nil
	}
	return s
}
