// Package tui is the interactive review screen for reconciliation candidates.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/spice-reconcile/internal/common"
	"github.com/Veraticus/spice-reconcile/internal/keys"
	"github.com/Veraticus/spice-reconcile/internal/model"
	"github.com/Veraticus/spice-reconcile/internal/protocol"
	"github.com/Veraticus/spice-reconcile/internal/review"
	"github.com/Veraticus/spice-reconcile/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the review screen. The embedded review.State is only ever
// replaced from Update.
type Model struct {
	ctx        context.Context
	outbox     *outbox
	theme      themes.Theme
	state      review.State
	help       help.Model
	status     string
	editor     editor
	config     Config
	keymap     KeyMap
	dispatcher keys.Dispatcher
	focus      keys.Focus
	usedCursor int
	offset     int
	width      int
	height     int
	statusErr  bool
	connected  bool
	quitting   bool
}

// New creates the review model.
func New(ctx context.Context, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	h := help.New()
	h.ShowAll = cfg.ShowHelp
	h.Width = cfg.Width
	var out *outbox
	if cfg.Conn != nil {
		out = newOutbox(ctx, cfg.Conn)
	}
	return Model{
		ctx:        ctx,
		outbox:     out,
		config:     cfg,
		theme:      cfg.Theme,
		state:      review.NewState(cfg.KnownAccounts),
		dispatcher: keys.NewDispatcher(),
		keymap:     DefaultKeyMap(),
		help:       h,
		focus:      keys.FocusCandidates,
		width:      cfg.Width,
		height:     cfg.Height,
	}
}

// State returns the current review state.
func (m Model) State() review.State { return m.state }

// Focus returns which widget owns the keyboard.
func (m Model) Focus() keys.Focus { return m.focus }

// Init starts listening for candidates.
func (m Model) Init() tea.Cmd {
	return m.listen()
}

func (m Model) listen() tea.Cmd {
	if m.config.Conn == nil {
		return nil
	}
	return listenCmd(m.ctx, m.config.Conn)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampScroll()
		return m, nil

	case candidatesMsg:
		m.connected = true
		cmd := m.perform(review.ReceiveCandidates{Set: msg.set})
		m.clampUsedCursor()
		m.setStatus(fmt.Sprintf("generation %d received", m.state.Generation()), false)
		return m, tea.Batch(cmd, m.listen())

	case disconnectedMsg:
		m.connected = false
		if !errors.Is(msg.err, context.Canceled) {
			m.setStatus("disconnected: "+common.UserMessage(msg.err), true)
		}
		return m, nil

	case sentMsg:
		m.setStatus("sent "+string(msg.msgType), false)
		return m, nil

	case postAcceptMsg:
		m.setStatus("accepted", false)
		return m, nil

	case errorMsg:
		m.setStatus(msg.context+": "+common.UserMessage(msg.err), true)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		cmd := m.handleMouse(msg)
		return m, cmd
	}

	if m.focus == keys.FocusTextInput {
		var cmd tea.Cmd
		m.editor.input, cmd = m.editor.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.focus {
	case keys.FocusTextInput:
		return m.handleEditorKey(msg)
	case keys.FocusUsedTransactions:
		return m.handleUsedKey(msg)
	}

	if action, ok := m.dispatcher.Dispatch(msg, m.focus); ok {
		return m, m.perform(action)
	}

	k := m.keymap
	switch {
	case key.Matches(msg, k.SkipFirst):
		return m, m.perform(review.Skip{Direction: protocol.DirectionFirst})
	case key.Matches(msg, k.SkipLast):
		return m, m.perform(review.Skip{Direction: protocol.DirectionLast})
	case key.Matches(msg, k.Revert):
		return m, m.perform(review.Revert{})
	case key.Matches(msg, k.SwitchPane):
		if set := m.state.Candidates(); set != nil && len(set.UsedTransactions) > 0 {
			m.focus = keys.FocusUsedTransactions
		}
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, k.Quit):
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleUsedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keymap
	switch {
	case key.Matches(msg, k.SwitchPane):
		m.focus = keys.FocusCandidates
	case key.Matches(msg, k.Up):
		m.usedCursor--
		m.clampUsedCursor()
	case key.Matches(msg, k.Down):
		m.usedCursor++
		m.clampUsedCursor()
	case key.Matches(msg, k.ToggleUsed):
		set := m.state.Candidates()
		if set == nil || m.usedCursor >= len(set.UsedTransactions) {
			return m, nil
		}
		return m, m.perform(review.ToggleUsedTransaction{ID: set.UsedTransactions[m.usedCursor].ID})
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, k.Quit):
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keymap
	switch {
	case key.Matches(msg, k.Commit):
		return m, m.commitEditor()
	case key.Matches(msg, k.Cancel):
		if m.editor.mode == editorAccount {
			return m, m.perform(review.CancelEdit{})
		}
		m.closeEditor()
		return m, nil
	case key.Matches(msg, k.Complete):
		m.editor = m.editor.complete()
		return m, nil
	}

	var cmd tea.Cmd
	m.editor.input, cmd = m.editor.input.Update(msg)
	return m, cmd
}

func (m *Model) commitEditor() tea.Cmd {
	value := m.editor.input.Value()
	if m.editor.mode == editorAccount {
		return m.perform(review.CommitEdit{Value: value})
	}

	ed := m.editor
	m.closeEditor()
	props := m.primaryProperties(ed.index)
	return m.perform(review.ChangeProperties{
		Generation: ed.generation,
		Index:      ed.index,
		Props:      review.ApplyPropertyEdit(props, ed.field, value),
	})
}

func (m Model) primaryProperties(index int) (props model.TransactionProperties) {
	c, ok := m.state.Candidates().Candidate(index)
	if !ok {
		return props
	}
	if e, ok := c.Primary(); ok {
		props = e.Properties()
	}
	return props
}

func (m *Model) openPropertyEditor(cmd review.StartPropertyEdit) {
	if m.editor.open() {
		return
	}
	m.editor = newPropertyEditor(cmd)
	m.focus = keys.FocusTextInput
}

func (m *Model) closeEditor() {
	m.editor = editor{}
	m.focus = keys.FocusCandidates
}

// syncEditor keeps the account editor in step with the review state's edit
// session and drops property editors for a previous generation.
func (m *Model) syncEditor() {
	session, open := m.state.Edit()
	switch m.editor.mode {
	case editorAccount:
		if !open {
			m.closeEditor()
		}
	case editorProperty:
		if m.editor.generation != m.state.Generation() {
			m.closeEditor()
		}
	case editorClosed:
		if open {
			m.editor = newAccountEditor(session, m.state.Generation())
			m.focus = keys.FocusTextInput
		}
	}
}

func (m *Model) clampUsedCursor() {
	n := 0
	if set := m.state.Candidates(); set != nil {
		n = len(set.UsedTransactions)
	}
	m.usedCursor = max(min(m.usedCursor, n-1), 0)
	if n == 0 && m.focus == keys.FocusUsedTransactions {
		m.focus = keys.FocusCandidates
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if !m.state.HasCandidates() {
		return nil
	}
	generation := m.state.Generation()
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		return m.perform(review.SelectRelative{Amount: -1})
	case msg.Button == tea.MouseButtonWheelDown:
		return m.perform(review.SelectRelative{Amount: 1})
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if index, ok := m.rowAt(msg.Y); ok {
			return m.perform(review.Select{Generation: generation, Index: index})
		}
	case msg.Action == tea.MouseActionMotion:
		index, ok := m.rowAt(msg.Y)
		return m.perform(review.Hover{Generation: generation, Index: index, On: ok})
	}
	return nil
}
