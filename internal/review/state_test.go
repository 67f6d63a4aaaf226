package review

import (
	"testing"

	"github.com/Veraticus/spice-reconcile/internal/model"
	"github.com/Veraticus/spice-reconcile/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// substitutionCandidate has two substitutions in groups 0 and 1.
func substitutionCandidate() model.Candidate {
	return model.Candidate{
		SubstitutedAccounts: []model.Substitution{
			{UniqueName: "u1", AccountName: "Expenses:X", GroupNumber: 0, OriginalName: "Orig1"},
			{UniqueName: "u2", AccountName: "Expenses:Y", GroupNumber: 1, OriginalName: "Orig2"},
		},
		NewEntries: []model.Entry{{
			Narration: "Coffee",
			Payee:     strPtr("Blue Bottle"),
			Tags:      []string{"trip"},
			Links:     []string{"r-1"},
			Meta:      map[string]any{"filename": "bank.csv"},
			Postings:  []model.Posting{{Account: "Assets:Checking"}, {Account: "Expenses:X"}},
		}},
		OriginalTransactionProperties: &model.TransactionProperties{Narration: "COFFEE"},
	}
}

func stateWith(t *testing.T, set model.CandidateSet) State {
	t.Helper()
	s, cmds := NewState([]string{"Expenses:Groceries"}).Apply(ReceiveCandidates{Set: set})
	require.Empty(t, cmds)
	return s
}

func sentMessages(cmds []Command) []protocol.Message {
	var out []protocol.Message
	for _, c := range cmds {
		if send, ok := c.(Send); ok {
			out = append(out, send.Message)
		}
	}
	return out
}

func onlySent(t *testing.T, cmds []Command) protocol.Message {
	t.Helper()
	msgs := sentMessages(cmds)
	require.Len(t, msgs, 1)
	return msgs[0]
}

func TestSelectRelative_FullCycle(t *testing.T) {
	set := setWithUsed(1, nil, []int{1}, nil, []int{2}, nil, nil)
	for _, disabled := range [][]int{nil, {1}, {2}, {1, 2}} {
		s := stateWith(t, set)
		for _, id := range disabled {
			s, _ = s.Apply(ToggleUsedTransaction{ID: id})
		}
		k := s.Filter().Len()
		require.Positive(t, k)

		for _, amount := range []int{1, -1} {
			start := s.Selection().Selected
			cur := s
			for i := 0; i < k; i++ {
				var cmds []Command
				cur, cmds = cur.Apply(SelectRelative{Amount: amount})
				require.Len(t, cmds, 1)
				scroll, ok := cmds[0].(ScrollToCandidate)
				require.True(t, ok)
				assert.Equal(t, cur.Selection().Selected, scroll.Index)
				assert.True(t, cur.Filter().IsVisible(cur.Selection().Selected))
			}
			assert.Equal(t, start, cur.Selection().Selected, "disabled=%v amount=%d", disabled, amount)
		}
	}
}

func TestSelectRelative_WrapsAndSkipsHidden(t *testing.T) {
	s := stateWith(t, setWithUsed(1, nil, []int{9}, nil, nil))
	s, _ = s.Apply(ToggleUsedTransaction{ID: 9})

	s, _ = s.Apply(SelectRelative{Amount: 1})
	assert.Equal(t, 2, s.Selection().Selected)
	s, _ = s.Apply(SelectRelative{Amount: 1})
	assert.Equal(t, 3, s.Selection().Selected)
	s, _ = s.Apply(SelectRelative{Amount: 1})
	assert.Equal(t, 0, s.Selection().Selected)
	s, _ = s.Apply(SelectRelative{Amount: -1})
	assert.Equal(t, 3, s.Selection().Selected)
}

func TestSelectRelative_EmptyFilterIsNoop(t *testing.T) {
	s := stateWith(t, setWithUsed(1, []int{1}, []int{1}))
	s, _ = s.Apply(ToggleUsedTransaction{ID: 1})
	before := s

	after, cmds := s.Apply(SelectRelative{Amount: 1})
	assert.Empty(t, cmds)
	assert.Equal(t, before, after)

	empty, cmds := NewState(nil).Apply(SelectRelative{Amount: -1})
	assert.Empty(t, cmds)
	assert.Equal(t, 0, empty.Selection().Selected)
}

func TestScenario_SingleVisibleCandidate(t *testing.T) {
	// C0(used=[5]), C1(used=[]), C2(used=[5]) with 5 disabled.
	s := stateWith(t, setWithUsed(1, []int{5}, nil, []int{5}))
	s, _ = s.Apply(ToggleUsedTransaction{ID: 5})
	assert.Equal(t, []int{1}, s.Filter().Visible())

	for _, amount := range []int{1, -1, 1, 1, -1} {
		s, _ = s.Apply(SelectRelative{Amount: amount})
		assert.Equal(t, 1, s.Selection().Selected)
	}
}

func TestSelectAndHover(t *testing.T) {
	s := stateWith(t, setWithUsed(3, nil, nil, nil))

	s, _ = s.Apply(Select{Generation: 3, Index: 2})
	assert.Equal(t, 2, s.Selection().Selected)

	s, _ = s.Apply(Hover{Generation: 3, Index: 1, On: true})
	hovered, ok := s.Hovered()
	require.True(t, ok)
	assert.Equal(t, s.Candidates().Candidates[1].UsedTransactionIDs, hovered.UsedTransactionIDs)
	assert.Equal(t, 2, s.Selection().Selected, "hover does not move selection")

	s, _ = s.Apply(Hover{Generation: 3, Index: 1, On: false})
	_, ok = s.Hovered()
	assert.False(t, ok)

	t.Run("stale generation is rejected", func(t *testing.T) {
		after, _ := s.Apply(Select{Generation: 2, Index: 0})
		assert.Equal(t, s, after)
		after, _ = s.Apply(Hover{Generation: 4, Index: 0, On: true})
		assert.Equal(t, s, after)
	})

	t.Run("out of range is rejected", func(t *testing.T) {
		after, _ := s.Apply(Select{Generation: 3, Index: 3})
		assert.Equal(t, s, after)
		after, _ = s.Apply(Select{Generation: 3, Index: -1})
		assert.Equal(t, s, after)
	})
}

func TestReceiveCandidates_GenerationChange(t *testing.T) {
	first := model.CandidateSet{Generation: 1, Candidates: []model.Candidate{
		substitutionCandidate(), substitutionCandidate(), substitutionCandidate(),
	}}
	s := stateWith(t, first)
	s, _ = s.Apply(Select{Generation: 1, Index: 2})
	s, _ = s.Apply(Hover{Generation: 1, Index: 1, On: true})
	s, _ = s.Apply(OpenEdit{Target: Group(1)})
	_, open := s.Edit()
	require.True(t, open)

	second := first
	second.Generation = 2
	s, cmds := s.Apply(ReceiveCandidates{Set: second})
	assert.Empty(t, cmds)

	_, open = s.Edit()
	assert.False(t, open, "edit session is discarded")
	assert.Equal(t, 0, s.Selection().Selected, "selection resets even though 2 is still in range")
	assert.False(t, s.Selection().HasHover)
	assert.Equal(t, 2, s.Generation())
}

func TestReceiveCandidates_SameGenerationKeepsSelection(t *testing.T) {
	set := model.CandidateSet{Generation: 4, Candidates: []model.Candidate{
		substitutionCandidate(), substitutionCandidate(),
	}}
	s := stateWith(t, set)
	s, _ = s.Apply(Select{Generation: 4, Index: 1})
	s, _ = s.Apply(OpenEdit{Target: Whole()})

	s, _ = s.Apply(ReceiveCandidates{Set: set})
	assert.Equal(t, 1, s.Selection().Selected)
	_, open := s.Edit()
	assert.False(t, open)
}

func TestReceiveCandidates_OlderGenerationDropped(t *testing.T) {
	s := stateWith(t, setWithUsed(5, nil, nil))
	after, _ := s.Apply(ReceiveCandidates{Set: setWithUsed(4, nil)})
	assert.Equal(t, s, after)
	assert.Equal(t, 5, after.Generation())
}

func TestReceiveCandidates_ShrinkingSetCorrectsSelection(t *testing.T) {
	s := stateWith(t, setWithUsed(1, nil, nil, nil))
	s, _ = s.Apply(Select{Generation: 1, Index: 2})

	s, _ = s.Apply(ReceiveCandidates{Set: setWithUsed(1, nil)})
	assert.Equal(t, 0, s.Selection().Selected)
}

func TestNewState_BeforeCandidates(t *testing.T) {
	s := NewState(nil)
	assert.False(t, s.HasCandidates())
	assert.Equal(t, -1, s.Generation())
	assert.Equal(t, Availability{}, s.Actions())

	for _, a := range []Action{Accept{}, Fixme{}, Revert{}, OpenEdit{Target: Whole()}, EditProperty{Field: PropertyTag}, CommitEdit{Value: "x"}} {
		after, cmds := s.Apply(a)
		assert.Empty(t, cmds, "%T", a)
		assert.Equal(t, s, after, "%T", a)
	}
}

func TestAccept(t *testing.T) {
	s := stateWith(t, model.CandidateSet{Generation: 8, Candidates: []model.Candidate{{}, substitutionCandidate()}})

	_, cmds := s.Apply(Accept{})
	msg := onlySent(t, cmds)
	assert.Equal(t, protocol.NewSelectCandidate(8, 0), msg)
	assert.Len(t, cmds, 1, "no entries means no post-accept command")

	s, _ = s.Apply(Select{Generation: 8, Index: 1})
	_, cmds = s.Apply(Accept{})
	require.Len(t, cmds, 2)
	assert.Equal(t, protocol.NewSelectCandidate(8, 1), cmds[0].(Send).Message)
	assert.Equal(t, PostAccept{Meta: map[string]any{"filename": "bank.csv"}}, cmds[1])

	_, cmds = s.Apply(AcceptAt{Generation: 8, Index: 0})
	assert.Equal(t, protocol.NewSelectCandidate(8, 0), onlySent(t, cmds))

	_, cmds = s.Apply(AcceptAt{Generation: 7, Index: 0})
	assert.Empty(t, cmds, "stale accept is rejected")
}

func TestFixme(t *testing.T) {
	s := stateWith(t, model.CandidateSet{Generation: 2, Candidates: []model.Candidate{substitutionCandidate(), {}}})

	_, cmds := s.Apply(Fixme{})
	msg, ok := onlySent(t, cmds).(protocol.ChangeCandidate)
	require.True(t, ok)
	assert.Equal(t, 2, msg.Generation)
	assert.Equal(t, []string{"Orig1", "Orig2"}, *msg.Changes.Accounts)
	assert.Equal(t, "Coffee", *msg.Changes.Narration)

	opened, _ := s.Apply(OpenEdit{Target: Whole()})
	_, cmds = opened.Apply(Fixme{})
	assert.Empty(t, cmds, "fixme is ignored while an edit is open")

	noSubs, _ := s.Apply(Select{Generation: 2, Index: 1})
	_, cmds = noSubs.Apply(Fixme{})
	assert.Empty(t, cmds)
}

func TestRevertAndProperties(t *testing.T) {
	plain := substitutionCandidate()
	plain.OriginalTransactionProperties = nil
	s := stateWith(t, model.CandidateSet{Generation: 6, Candidates: []model.Candidate{substitutionCandidate(), plain}})

	_, cmds := s.Apply(Revert{})
	assert.Equal(t, protocol.NewRevert(6, 0), onlySent(t, cmds))

	_, cmds = s.Apply(EditProperty{Field: PropertyNarration})
	require.Len(t, cmds, 1)
	assert.Equal(t, StartPropertyEdit{Generation: 6, Index: 0, Field: PropertyNarration, Initial: "Coffee"}, cmds[0])

	_, cmds = s.Apply(EditProperty{Field: PropertyTag})
	assert.Equal(t, StartPropertyEdit{Generation: 6, Index: 0, Field: PropertyTag}, cmds[0])

	props := model.TransactionProperties{Narration: "Latte", Tags: []string{"trip"}}
	_, cmds = s.Apply(ChangeProperties{Generation: 6, Index: 0, Props: props})
	change := onlySent(t, cmds).(protocol.ChangeCandidate)
	assert.Equal(t, []string{"Expenses:X", "Expenses:Y"}, *change.Changes.Accounts)
	assert.Equal(t, "Latte", *change.Changes.Narration)

	_, cmds = s.Apply(ChangeProperties{Generation: 5, Index: 0, Props: props})
	assert.Empty(t, cmds, "stale property change is rejected")

	t.Run("candidate without original disables property actions", func(t *testing.T) {
		p, _ := s.Apply(Select{Generation: 6, Index: 1})
		for _, a := range []Action{Revert{}, EditProperty{Field: PropertyLink}, ChangeProperties{Generation: 6, Index: 1, Props: props}} {
			_, cmds := p.Apply(a)
			assert.Empty(t, cmds, "%T", a)
		}
		avail := p.Actions()
		assert.False(t, avail.Revert)
		assert.False(t, avail.Narration)
		assert.True(t, avail.ChangeAccount)
	})
}

func TestSkipAndRetrain(t *testing.T) {
	s := stateWith(t, setWithUsed(1, nil))

	for _, d := range []protocol.Direction{protocol.DirectionPrior, protocol.DirectionNext, protocol.DirectionFirst, protocol.DirectionLast} {
		_, cmds := s.Apply(Skip{Direction: d})
		assert.Equal(t, protocol.NewSkip(d), onlySent(t, cmds))
	}

	_, cmds := s.Apply(Skip{Direction: "sideways"})
	assert.Empty(t, cmds)

	_, cmds = s.Apply(Retrain{})
	assert.Equal(t, protocol.NewRetrain(), onlySent(t, cmds))
}

func TestActions_SkipAvailability(t *testing.T) {
	tests := []struct {
		name         string
		pendingIndex int
		numPending   int
		wantPrior    bool
		wantNext     bool
	}{
		{name: "at start", pendingIndex: 0, numPending: 3, wantPrior: false, wantNext: true},
		{name: "middle", pendingIndex: 1, numPending: 3, wantPrior: true, wantNext: true},
		{name: "at end", pendingIndex: 2, numPending: 3, wantPrior: true, wantNext: false},
		{name: "single", pendingIndex: 0, numPending: 1, wantPrior: false, wantNext: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := setWithUsed(1, nil)
			set.PendingIndex = tt.pendingIndex
			set.NumPending = tt.numPending
			a := stateWith(t, set).Actions()
			assert.Equal(t, tt.wantPrior, a.SkipPrior)
			assert.Equal(t, tt.wantPrior, a.SkipFirst)
			assert.Equal(t, tt.wantNext, a.SkipNext)
			assert.Equal(t, tt.wantNext, a.SkipLast)
		})
	}
}

func TestGenerationReadAtSendTime(t *testing.T) {
	set := model.CandidateSet{Generation: 1, Candidates: []model.Candidate{substitutionCandidate()}}
	s := stateWith(t, set)

	// The user starts a slow interaction, then the server moves on.
	set.Generation = 2
	s, _ = s.Apply(ReceiveCandidates{Set: set})

	_, cmds := s.Apply(Accept{})
	assert.Equal(t, 2, onlySent(t, cmds).(protocol.SelectCandidate).Generation)

	_, cmds = s.Apply(Fixme{})
	assert.Equal(t, 2, onlySent(t, cmds).(protocol.ChangeCandidate).Generation)
}

func TestHiddenSelectionIsCorrected(t *testing.T) {
	c0 := substitutionCandidate()
	c0.UsedTransactionIDs = []int{5}
	set := model.CandidateSet{
		Generation:       1,
		UsedTransactions: []model.UsedTransaction{{ID: 5}},
		Candidates:       []model.Candidate{c0, substitutionCandidate()},
	}

	t.Run("toggle hides the selected candidate", func(t *testing.T) {
		s := stateWith(t, set)
		s, _ = s.Apply(ToggleUsedTransaction{ID: 5})
		assert.Equal(t, []int{1}, s.Filter().Visible())
		assert.Equal(t, 1, s.Selection().Selected)

		_, cmds := s.Apply(Accept{})
		assert.Equal(t, protocol.NewSelectCandidate(1, 1), onlySent(t, cmds))

		opened, _ := s.Apply(OpenEdit{Target: Whole()})
		edit, ok := opened.Edit()
		require.True(t, ok)
		assert.Equal(t, 1, edit.CandidateIndex)
	})

	t.Run("new generation with candidate 0 hidden", func(t *testing.T) {
		s := stateWith(t, set)
		s, _ = s.Apply(ToggleUsedTransaction{ID: 5})
		next := set
		next.Generation = 2
		s, _ = s.Apply(ReceiveCandidates{Set: next})
		_, index, ok := s.Selected()
		require.True(t, ok)
		assert.Equal(t, 1, index)
	})

	t.Run("hidden candidates cannot be targeted", func(t *testing.T) {
		s := stateWith(t, set)
		s, _ = s.Apply(ToggleUsedTransaction{ID: 5})
		for _, a := range []Action{
			AcceptAt{Generation: 1, Index: 0},
			OpenEditAt{Generation: 1, Index: 0, Target: Whole()},
			Select{Generation: 1, Index: 0},
			Hover{Generation: 1, Index: 0, On: true},
			ChangeProperties{Generation: 1, Index: 0, Props: model.TransactionProperties{Narration: "x"}},
		} {
			after, cmds := s.Apply(a)
			assert.Empty(t, cmds, "%T", a)
			assert.Equal(t, s, after, "%T", a)
		}
	})

	t.Run("edit on a candidate that becomes hidden is dropped", func(t *testing.T) {
		s := stateWith(t, set)
		s, _ = s.Apply(OpenEdit{Target: Group(1)})
		_, open := s.Edit()
		require.True(t, open)

		s, _ = s.Apply(ToggleUsedTransaction{ID: 5})
		_, open = s.Edit()
		assert.False(t, open)
		_, cmds := s.Apply(CommitEdit{Value: "Expenses:Z"})
		assert.Empty(t, cmds)
	})

	t.Run("everything hidden disables selected actions", func(t *testing.T) {
		only := model.CandidateSet{
			Generation:       1,
			UsedTransactions: []model.UsedTransaction{{ID: 5}},
			Candidates:       []model.Candidate{c0},
		}
		s := stateWith(t, only)
		s, _ = s.Apply(ToggleUsedTransaction{ID: 5})
		_, _, ok := s.Selected()
		assert.False(t, ok)
		assert.False(t, s.Actions().ChangeAccount)
		assert.False(t, s.Actions().Revert)
		for _, a := range []Action{Accept{}, Fixme{}, Revert{}, OpenEdit{Target: Whole()}, EditProperty{Field: PropertyTag}} {
			_, cmds := s.Apply(a)
			assert.Empty(t, cmds, "%T", a)
		}
	})
}
