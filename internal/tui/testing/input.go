// Package testing provides helpers for driving the review TUI in tests.
package testing

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyPress creates a key press message for a rune key such as "a" or "#".
func KeyPress(key string) tea.KeyMsg {
	return tea.KeyMsg{
		Type:  tea.KeyRunes,
		Runes: []rune(key),
	}
}

// Type returns one key press per rune of text.
func Type(text string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(text))
	for _, r := range text {
		if r == ' ' {
			msgs = append(msgs, KeySpace())
			continue
		}
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return msgs
}

// KeyDown creates a down arrow key message.
func KeyDown() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyDown} }

// KeyUp creates an up arrow key message.
func KeyUp() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyUp} }

// KeyEnter creates an enter key message.
func KeyEnter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

// KeyEsc creates an escape key message.
func KeyEsc() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEsc} }

// KeyTab creates a tab key message.
func KeyTab() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyTab} }

// KeySpace creates a space key message.
func KeySpace() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}} }

// KeyCtrlC creates a ctrl+c key message.
func KeyCtrlC() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyCtrlC} }

// WindowSize creates a window size message.
func WindowSize(width, height int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: width, Height: height}
}

// MouseClick creates a left button press at the cell (x, y).
func MouseClick(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}
}

// MouseMotion creates a motion event at the cell (x, y).
func MouseMotion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonNone, Action: tea.MouseActionMotion}
}

// MouseWheel creates a wheel event; up scrolls toward the top.
func MouseWheel(up bool) tea.MouseMsg {
	button := tea.MouseButtonWheelDown
	if up {
		button = tea.MouseButtonWheelUp
	}
	return tea.MouseMsg{Button: button, Action: tea.MouseActionPress}
}
