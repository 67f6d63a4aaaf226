package tui

import (
	"sort"
	"strings"

	"github.com/Veraticus/spice-reconcile/internal/review"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

type editorMode int

const (
	editorClosed editorMode = iota
	editorAccount
	editorProperty
)

// editor is the single-line input used for account and property edits.
type editor struct {
	input       textinput.Model
	suggestions []string
	prompt      string
	field       review.PropertyField
	mode        editorMode
	generation  int
	index       int
}

func newInput(initial string) textinput.Model {
	in := textinput.New()
	in.SetValue(initial)
	in.CursorEnd()
	in.Focus()
	return in
}

func newAccountEditor(session review.EditSession, generation int) editor {
	return editor{
		mode:        editorAccount,
		input:       newInput(session.InitialValue),
		suggestions: session.Suggestions,
		prompt:      "account (" + session.Target.String() + ")",
		generation:  generation,
		index:       session.CandidateIndex,
	}
}

func newPropertyEditor(cmd review.StartPropertyEdit) editor {
	return editor{
		mode:       editorProperty,
		input:      newInput(cmd.Initial),
		field:      cmd.Field,
		prompt:     cmd.Field.String(),
		generation: cmd.Generation,
		index:      cmd.Index,
	}
}

func (e editor) open() bool { return e.mode != editorClosed }

// matches ranks suggestions against the current input, best first.
func (e editor) matches(limit int) []string {
	query := strings.TrimSpace(e.input.Value())
	var out []string
	if query == "" {
		out = e.suggestions
	} else {
		ranks := fuzzy.RankFindFold(query, e.suggestions)
		sort.Stable(ranks)
		out = make([]string, 0, len(ranks))
		for _, r := range ranks {
			out = append(out, r.Target)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// complete replaces the input with the best suggestion, if there is one.
func (e editor) complete() editor {
	best := e.matches(1)
	if len(best) == 0 {
		return e
	}
	e.input.SetValue(best[0])
	e.input.CursorEnd()
	return e
}
