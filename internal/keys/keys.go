// Package keys maps key presses on the candidate list to review actions.
// The key table is a documented public contract; keep it stable.
package keys

import (
	"strings"

	"github.com/Veraticus/spice-reconcile/internal/protocol"
	"github.com/Veraticus/spice-reconcile/internal/review"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Focus is which widget currently owns the keyboard.
type Focus int

// Focus targets.
const (
	FocusCandidates Focus = iota
	FocusUsedTransactions
	FocusTextInput
)

// groupDigits lists the digit keys in keyboard-row order; a key's position is
// the group number it edits, so "1" edits group 0 and "0" edits group 9.
const groupDigits = "1234567890"

// GroupKey returns the digit key that edits group n, or "" when n has none.
func GroupKey(n int) string {
	if n < 0 || n >= len(groupDigits) {
		return ""
	}
	return groupDigits[n : n+1]
}

// KeyMap holds the candidate list bindings.
type KeyMap struct {
	SkipPrior     key.Binding
	SkipNext      key.Binding
	EditGroup     key.Binding
	Up            key.Binding
	Down          key.Binding
	Accept        key.Binding
	ChangeAccount key.Binding
	Fixme         key.Binding
	Retrain       key.Binding
	EditTag       key.Binding
	EditLink      key.Binding
	EditNarration key.Binding
}

// DefaultKeyMap returns the candidate list bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		SkipPrior: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prior pending"),
		),
		SkipNext: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next pending"),
		),
		EditGroup: key.NewBinding(
			key.WithKeys(strings.Split(groupDigits, "")...),
			key.WithHelp("1-9,0", "edit account group"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous candidate"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next candidate"),
		),
		Accept: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "accept"),
		),
		ChangeAccount: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "change all accounts"),
		),
		Fixme: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fixme later"),
		),
		Retrain: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "retrain"),
		),
		EditTag: key.NewBinding(
			key.WithKeys("#"),
			key.WithHelp("#", "add tag"),
		),
		EditLink: key.NewBinding(
			key.WithKeys("^"),
			key.WithHelp("^", "add link"),
		),
		EditNarration: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "edit narration"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Accept, k.ChangeAccount, k.Fixme}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Accept},
		{k.SkipPrior, k.SkipNext, k.Retrain},
		{k.ChangeAccount, k.EditGroup, k.Fixme},
		{k.EditTag, k.EditLink, k.EditNarration},
	}
}

// Dispatcher turns key presses into review actions.
type Dispatcher struct {
	keymap KeyMap
}

// NewDispatcher returns a dispatcher using the default bindings.
func NewDispatcher() Dispatcher {
	return Dispatcher{keymap: DefaultKeyMap()}
}

// KeyMap returns the dispatcher's bindings.
func (d Dispatcher) KeyMap() KeyMap { return d.keymap }

// Dispatch returns the action for msg. The boolean reports whether the key
// was consumed; unconsumed keys, and every key while a text input or another
// pane has focus, must be passed on to whatever owns them.
func (d Dispatcher) Dispatch(msg tea.KeyMsg, focus Focus) (review.Action, bool) {
	if focus != FocusCandidates {
		return nil, false
	}
	k := d.keymap
	switch {
	case key.Matches(msg, k.SkipPrior):
		return review.Skip{Direction: protocol.DirectionPrior}, true
	case key.Matches(msg, k.SkipNext):
		return review.Skip{Direction: protocol.DirectionNext}, true
	case key.Matches(msg, k.EditGroup):
		return review.OpenEdit{Target: review.Group(strings.Index(groupDigits, msg.String()))}, true
	case key.Matches(msg, k.Up):
		return review.SelectRelative{Amount: -1}, true
	case key.Matches(msg, k.Down):
		return review.SelectRelative{Amount: 1}, true
	case key.Matches(msg, k.Accept):
		return review.Accept{}, true
	case key.Matches(msg, k.ChangeAccount):
		return review.OpenEdit{Target: review.Whole()}, true
	case key.Matches(msg, k.Fixme):
		return review.Fixme{}, true
	case key.Matches(msg, k.Retrain):
		return review.Retrain{}, true
	case key.Matches(msg, k.EditTag):
		return review.EditProperty{Field: review.PropertyTag}, true
	case key.Matches(msg, k.EditLink):
		return review.EditProperty{Field: review.PropertyLink}, true
	case key.Matches(msg, k.EditNarration):
		return review.EditProperty{Field: review.PropertyNarration}, true
	}
	return nil, false
}
