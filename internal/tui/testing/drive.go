package testing

import (
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes all ANSI escape codes from a string.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// ContainsInOrder checks if the output contains all specified strings in order.
func ContainsInOrder(output string, expected ...string) bool {
	lastIndex := 0
	for _, exp := range expected {
		index := strings.Index(output[lastIndex:], exp)
		if index == -1 {
			return false
		}
		lastIndex += index + len(exp)
	}
	return true
}

// Drive feeds msgs to model in order and returns the final model together
// with every command it produced.
func Drive(model tea.Model, msgs ...tea.Msg) (tea.Model, []tea.Cmd) {
	var cmds []tea.Cmd
	for _, msg := range msgs {
		var cmd tea.Cmd
		model, cmd = model.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return model, cmds
}

// Collect runs cmds and returns the messages they produce, flattening
// batches. Commands that block must not be passed here.
func Collect(cmds ...tea.Cmd) []tea.Msg {
	var msgs []tea.Msg
	for _, cmd := range cmds {
		if cmd == nil {
			continue
		}
		switch msg := cmd().(type) {
		case nil:
		case tea.BatchMsg:
			msgs = append(msgs, Collect(msg...)...)
		default:
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
