package tui

import (
	"context"
	"sync"
	"testing"

	"github.com/Veraticus/spice-reconcile/internal/common"
	"github.com/Veraticus/spice-reconcile/internal/keys"
	"github.com/Veraticus/spice-reconcile/internal/model"
	"github.com/Veraticus/spice-reconcile/internal/protocol"
	tuitest "github.com/Veraticus/spice-reconcile/internal/tui/testing"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	sent []protocol.Message
	mu   sync.Mutex
}

func (f *fakeConn) Send(_ context.Context, msg protocol.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeConn) Receive(_ context.Context) (model.CandidateSet, error) {
	return model.CandidateSet{}, common.ErrConnectionClosed
}

func (f *fakeConn) messages() []protocol.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]protocol.Message(nil), f.sent...)
}

func reviewSet(generation int) model.CandidateSet {
	payee := "Blue Bottle"
	return model.CandidateSet{
		Generation: generation,
		NumPending: 2,
		UsedTransactions: []model.UsedTransaction{
			{ID: 10, Entry: model.Entry{Date: "2025-03-01", Narration: "BLUE BOTTLE 123"}},
			{ID: 11, Entry: model.Entry{Date: "2025-03-02", Narration: "SAFEWAY 88"}},
		},
		Candidates: []model.Candidate{
			{
				UsedTransactionIDs: []int{10},
				SubstitutedAccounts: []model.Substitution{
					{UniqueName: "Expenses:FIXME:A", AccountName: "Expenses:FIXME:A", GroupNumber: 0, OriginalName: "Expenses:FIXME"},
				},
				OriginalTransactionProperties: &model.TransactionProperties{Narration: "BLUE BOTTLE 123"},
				NewEntries: []model.Entry{{
					Date:      "2025-03-01",
					Flag:      "*",
					Payee:     &payee,
					Narration: "Blue Bottle latte",
					Tags:      []string{"trip"},
					Meta:      map[string]any{"filename": "bank.csv"},
					Postings: []model.Posting{
						{Account: "Assets:Checking"},
						{Account: "Expenses:FIXME:A"},
					},
				}},
			},
			{
				UsedTransactionIDs: []int{11},
				NewEntries:         []model.Entry{{Date: "2025-03-02", Narration: "Safeway groceries"}},
			},
			{
				NewEntries: []model.Entry{{Date: "2025-03-03", Narration: "Unmatched transfer"}},
			},
		},
	}
}

func newTestModel(t *testing.T) (Model, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	m := New(context.Background(),
		WithConn(conn),
		WithServer("localhost:8101"),
		WithKnownAccounts([]string{"Expenses:Groceries", "Expenses:Coffee"}),
		WithSize(120, 40),
	)
	next, _ := m.Update(candidatesMsg{set: reviewSet(1)})
	return next.(Model), conn
}

func drive(t *testing.T, m Model, msgs ...tea.Msg) (Model, []tea.Msg) {
	t.Helper()
	next, cmds := tuitest.Drive(m, msgs...)
	return next.(Model), tuitest.Collect(cmds...)
}

func TestModel_WaitingView(t *testing.T) {
	m := New(context.Background(), WithServer("localhost:8101"))
	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "Waiting for candidates from localhost:8101")
	assert.Nil(t, m.Init())
}

func TestModel_ReceiveCandidates(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, 1, m.State().Generation())
	assert.Equal(t, "generation 1 received", m.status)

	view := tuitest.StripANSI(m.View())
	assert.True(t, tuitest.ContainsInOrder(view,
		"pending 1/2",
		"Blue Bottle latte",
		"Safeway groceries",
		"Unmatched transfer",
		"Used transactions",
		"#10",
		"#11",
	), view)
	assert.Contains(t, view, "1=Expenses:FIXME:A")
}

func TestModel_NavigateAndAccept(t *testing.T) {
	m, conn := newTestModel(t)

	m, msgs := drive(t, m, tuitest.KeyDown(), tuitest.KeyEnter())
	_, index, ok := m.State().Selected()
	require.True(t, ok)
	assert.Equal(t, 1, index)

	assert.Equal(t, []protocol.Message{protocol.SelectCandidate{Generation: 1, Index: 1}}, conn.messages())
	assert.Contains(t, msgs, tea.Msg(sentMsg{msgType: protocol.TypeSelectCandidate}))
}

func TestModel_AcceptReportsPostAccept(t *testing.T) {
	var got map[string]any
	conn := &fakeConn{}
	m := New(context.Background(), WithConn(conn), WithPostAccept(func(meta map[string]any) { got = meta }))
	next, _ := m.Update(candidatesMsg{set: reviewSet(1)})
	m = next.(Model)

	_, msgs := drive(t, m, tuitest.KeyEnter())
	assert.Equal(t, map[string]any{"filename": "bank.csv"}, got)
	assert.Contains(t, msgs, tea.Msg(postAcceptMsg{meta: map[string]any{"filename": "bank.csv"}}))
	assert.Len(t, conn.messages(), 1)
}

func TestModel_AccountEditCompletesAndCommits(t *testing.T) {
	m, conn := newTestModel(t)

	m, _ = drive(t, m, tuitest.KeyPress("a"))
	require.Equal(t, keys.FocusTextInput, m.Focus())
	assert.Equal(t, "Expenses:FIXME:A", m.editor.input.Value())

	m.editor.input.SetValue("coff")
	m, _ = drive(t, m, tuitest.KeyTab())
	assert.Equal(t, "Expenses:Coffee", m.editor.input.Value())

	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "account (all): ")

	m, _ = drive(t, m, tuitest.KeyEnter())
	assert.Equal(t, keys.FocusCandidates, m.Focus())
	_, open := m.State().Edit()
	assert.False(t, open)

	sent := conn.messages()
	require.Len(t, sent, 1)
	change, ok := sent[0].(protocol.ChangeCandidate)
	require.True(t, ok)
	assert.Equal(t, []string{"Expenses:Coffee"}, *change.Changes.Accounts)
	assert.Equal(t, 0, change.CandidateIndex)
}

func TestModel_AccountEditCancel(t *testing.T) {
	m, conn := newTestModel(t)

	m, _ = drive(t, m, tuitest.KeyPress("1"), tuitest.KeyPress("q"), tuitest.KeyEsc())
	assert.Equal(t, keys.FocusCandidates, m.Focus())
	assert.False(t, m.quitting, "q is text while the editor has focus")
	assert.Empty(t, conn.messages())
}

func TestModel_PropertyEdit(t *testing.T) {
	m, conn := newTestModel(t)

	m, _ = drive(t, m, tuitest.KeyPress("#"))
	require.Equal(t, keys.FocusTextInput, m.Focus())
	assert.Equal(t, "tag", m.editor.prompt)

	m, _ = drive(t, m, tuitest.Type("food")...)
	m, _ = drive(t, m, tuitest.KeyEnter())
	assert.Equal(t, keys.FocusCandidates, m.Focus())

	sent := conn.messages()
	require.Len(t, sent, 1)
	change := sent[0].(protocol.ChangeCandidate)
	assert.Equal(t, []string{"trip", "food"}, *change.Changes.Tags)
	assert.Equal(t, "Blue Bottle latte", *change.Changes.Narration)
	assert.Equal(t, []string{"Expenses:FIXME:A"}, *change.Changes.Accounts)
}

func TestModel_PropertyEditDroppedOnNewGeneration(t *testing.T) {
	m, conn := newTestModel(t)

	m, _ = drive(t, m, tuitest.KeyPress("n"))
	require.Equal(t, keys.FocusTextInput, m.Focus())
	assert.Equal(t, "Blue Bottle latte", m.editor.input.Value())

	m, _ = drive(t, m, candidatesMsg{set: reviewSet(2)})
	assert.Equal(t, keys.FocusCandidates, m.Focus())
	assert.False(t, m.editor.open())
	assert.Empty(t, conn.messages())
}

func TestModel_PropertyEditNeedsOriginal(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = drive(t, m, tuitest.KeyDown(), tuitest.KeyPress("n"))
	assert.Equal(t, keys.FocusCandidates, m.Focus(), "candidate 1 has nothing to revert to")
}

func TestModel_UsedTransactionPane(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = drive(t, m, tuitest.KeyTab())
	require.Equal(t, keys.FocusUsedTransactions, m.Focus())

	m, _ = drive(t, m, tuitest.KeySpace())
	assert.True(t, m.State().Disabled().Has(10))
	assert.Equal(t, []int{1, 2}, m.State().Filter().Visible())
	assert.NotContains(t, tuitest.StripANSI(m.View()), "Blue Bottle latte")

	m, _ = drive(t, m, tuitest.KeyDown(), tuitest.KeySpace())
	assert.True(t, m.State().Disabled().Has(11))
	assert.Equal(t, []int{2}, m.State().Filter().Visible())

	_, index, _ := m.State().Selected()
	assert.Equal(t, 2, index, "hidden selection moves to the first visible candidate")

	m, _ = drive(t, m, tuitest.KeyUp(), tuitest.KeySpace(), tuitest.KeyTab())
	assert.False(t, m.State().Disabled().Has(10))
	assert.Equal(t, keys.FocusCandidates, m.Focus())

	m, _ = drive(t, m, tuitest.KeyDown())
	_, index, _ = m.State().Selected()
	assert.Equal(t, 0, index, "down wraps from 2 to the re-enabled candidate 0")
}

func TestModel_Mouse(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = drive(t, m, tuitest.MouseClick(5, listTop+2))
	_, index, _ := m.State().Selected()
	assert.Equal(t, 2, index)

	m, _ = drive(t, m, tuitest.MouseMotion(5, listTop+1))
	hovered, ok := m.State().Hovered()
	require.True(t, ok)
	assert.Equal(t, "Safeway groceries", hovered.NewEntries[0].Narration)

	m, _ = drive(t, m, tuitest.MouseMotion(5, 0))
	_, ok = m.State().Hovered()
	assert.False(t, ok)

	m, _ = drive(t, m, tuitest.MouseWheel(false))
	_, index, _ = m.State().Selected()
	assert.Equal(t, 0, index, "wheel wraps past the last candidate")

	m, _ = drive(t, m, tuitest.MouseWheel(true))
	_, index, _ = m.State().Selected()
	assert.Equal(t, 2, index)
}

func TestModel_SkipAndRetrain(t *testing.T) {
	m, conn := newTestModel(t)

	_, _ = drive(t, m, tuitest.KeyPress("]"), tuitest.KeyPress("{"), tuitest.KeyPress("t"))
	assert.Equal(t, []protocol.Message{
		protocol.Skip{Direction: protocol.DirectionNext},
		protocol.Skip{Direction: protocol.DirectionFirst},
		protocol.Retrain{},
	}, conn.messages())
}

func TestModel_Quit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{name: "q", msg: tuitest.KeyPress("q")},
		{name: "ctrl+c", msg: tuitest.KeyCtrlC()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t)
			m, msgs := drive(t, m, tt.msg)
			assert.True(t, m.quitting)
			assert.Contains(t, msgs, tea.Msg(tea.QuitMsg{}))
			assert.Empty(t, m.View())
		})
	}
}

func TestModel_Disconnected(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = drive(t, m, disconnectedMsg{err: common.ErrConnectionClosed})
	assert.True(t, m.statusErr)
	assert.Contains(t, tuitest.StripANSI(m.View()), "disconnected: connection closed")

	m, _ = drive(t, m, disconnectedMsg{err: context.Canceled})
	assert.Contains(t, m.status, "connection closed", "cancellation keeps the last status")
}

func TestModel_SendWithoutConnection(t *testing.T) {
	m := New(context.Background())
	next, _ := m.Update(candidatesMsg{set: reviewSet(1)})
	m = next.(Model)

	m, msgs := drive(t, m, tuitest.KeyPress("t"))
	require.Len(t, msgs, 1)
	errMsg, ok := msgs[0].(errorMsg)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.err, common.ErrConnectionClosed)

	m, _ = drive(t, m, msgs[0])
	assert.Equal(t, "send retrain: connection closed", m.status)
}

func TestEditor_Matches(t *testing.T) {
	e := editor{
		mode:        editorAccount,
		input:       newInput(""),
		suggestions: []string{"Assets:Checking", "Expenses:Coffee", "Expenses:Groceries"},
	}

	assert.Equal(t, []string{"Assets:Checking", "Expenses:Coffee"}, e.matches(2))

	e.input.SetValue("exco")
	assert.Equal(t, []string{"Expenses:Coffee"}, e.matches(5))

	e.input.SetValue("zzz")
	assert.Empty(t, e.matches(5))
	assert.Equal(t, "zzz", e.complete().input.Value())
}
