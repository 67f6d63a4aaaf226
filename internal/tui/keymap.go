package tui

import (
	"github.com/Veraticus/spice-reconcile/internal/keys"
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the bindings the review screen handles itself. Candidate list
// keys belong to the keys package.
type KeyMap struct {
	candidates keys.KeyMap

	// Panes
	SwitchPane key.Binding
	Up         key.Binding
	Down       key.Binding
	ToggleUsed key.Binding

	// Toolbar actions without a list key
	SkipFirst key.Binding
	SkipLast  key.Binding
	Revert    key.Binding

	// Editor
	Commit   key.Binding
	Cancel   key.Binding
	Complete key.Binding

	// Application
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		candidates: keys.DefaultKeyMap(),

		SwitchPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "switch pane"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		ToggleUsed: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("Space", "ignore transaction"),
		),

		SkipFirst: key.NewBinding(
			key.WithKeys("{"),
			key.WithHelp("{", "first pending"),
		),
		SkipLast: key.NewBinding(
			key.WithKeys("}"),
			key.WithHelp("}", "last pending"),
		),
		Revert: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "revert"),
		),

		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "commit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "complete"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+C", "force quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return append(k.candidates.ShortHelp(), k.SwitchPane, k.Help, k.Quit)
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return append(k.candidates.FullHelp(),
		[]key.Binding{k.SkipFirst, k.SkipLast, k.Revert},
		[]key.Binding{k.SwitchPane, k.ToggleUsed, k.Complete},
		[]key.Binding{k.Help, k.Quit, k.ForceQuit},
	)
}
