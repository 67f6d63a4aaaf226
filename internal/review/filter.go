package review

import (
	"sort"

	"github.com/Veraticus/spice-reconcile/internal/model"
)

// DisabledSet holds the used-transaction ids the user chose to ignore. It is a
// value type: every mutation returns a new set.
type DisabledSet struct {
	ids map[int]struct{}
}

// NewDisabledSet returns a set containing ids.
func NewDisabledSet(ids ...int) DisabledSet {
	d := DisabledSet{ids: make(map[int]struct{}, len(ids))}
	for _, id := range ids {
		d.ids[id] = struct{}{}
	}
	return d
}

// Has reports whether id is disabled.
func (d DisabledSet) Has(id int) bool {
	_, ok := d.ids[id]
	return ok
}

// Len returns the number of disabled ids.
func (d DisabledSet) Len() int { return len(d.ids) }

// IDs returns the disabled ids in ascending order.
func (d DisabledSet) IDs() []int {
	out := make([]int, 0, len(d.ids))
	for id := range d.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// With returns a copy of d with id added.
func (d DisabledSet) With(id int) DisabledSet {
	out := d.clone()
	out.ids[id] = struct{}{}
	return out
}

// Without returns a copy of d with id removed.
func (d DisabledSet) Without(id int) DisabledSet {
	out := d.clone()
	delete(out.ids, id)
	return out
}

// Toggle returns a copy of d with id's membership flipped.
func (d DisabledSet) Toggle(id int) DisabledSet {
	if d.Has(id) {
		return d.Without(id)
	}
	return d.With(id)
}

// Hides reports whether the candidate consumes any disabled used transaction.
func (d DisabledSet) Hides(c model.Candidate) bool {
	for _, id := range c.UsedTransactionIDs {
		if d.Has(id) {
			return true
		}
	}
	return false
}

func (d DisabledSet) clone() DisabledSet {
	out := DisabledSet{ids: make(map[int]struct{}, len(d.ids)+1)}
	for id := range d.ids {
		out.ids[id] = struct{}{}
	}
	return out
}

// Filter maps global candidate indices to their dense position among the
// visible candidates. A Filter is always computed from scratch.
type Filter struct {
	globalToFiltered map[int]int
	visible          []int
}

// ComputeFilter derives the visible subset of set under disabled.
func ComputeFilter(set *model.CandidateSet, disabled DisabledSet) Filter {
	f := Filter{
		globalToFiltered: make(map[int]int, set.Len()),
		visible:          make([]int, 0, set.Len()),
	}
	if set == nil {
		return f
	}
	for g, c := range set.Candidates {
		if disabled.Hides(c) {
			continue
		}
		f.globalToFiltered[g] = len(f.visible)
		f.visible = append(f.visible, g)
	}
	return f
}

// Len returns the number of visible candidates.
func (f Filter) Len() int { return len(f.visible) }

// Visible returns the visible global indices in order.
func (f Filter) Visible() []int {
	out := make([]int, len(f.visible))
	copy(out, f.visible)
	return out
}

// Position returns the filtered position of a global index.
func (f Filter) Position(global int) (int, bool) {
	pos, ok := f.globalToFiltered[global]
	return pos, ok
}

// At returns the global index at a filtered position.
func (f Filter) At(pos int) (int, bool) {
	if pos < 0 || pos >= len(f.visible) {
		return 0, false
	}
	return f.visible[pos], true
}

// IsVisible reports whether the global index is visible.
func (f Filter) IsVisible(global int) bool {
	_, ok := f.globalToFiltered[global]
	return ok
}

// First returns the first visible global index.
func (f Filter) First() (int, bool) {
	return f.At(0)
}
