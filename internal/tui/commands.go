package tui

import (
	"context"

	"github.com/Veraticus/spice-reconcile/internal/common"
	"github.com/Veraticus/spice-reconcile/internal/protocol"
	"github.com/Veraticus/spice-reconcile/internal/review"
	"github.com/Veraticus/spice-reconcile/internal/transport"
	tea "github.com/charmbracelet/bubbletea"
)

// listenCmd waits for the next candidate set.
func listenCmd(ctx context.Context, r transport.Receiver) tea.Cmd {
	return func() tea.Msg {
		set, err := r.Receive(ctx)
		if err != nil {
			return disconnectedMsg{err: err}
		}
		return candidatesMsg{set: set}
	}
}

// sendCmd reports the delivery of a message already queued on the outbox.
// Failures are reported, never retried.
func sendCmd(msg protocol.Message, done <-chan error) tea.Cmd {
	return func() tea.Msg {
		if err := <-done; err != nil {
			common.LogError(err, "Failed to send message", common.Fields{"type": string(msg.Type())})
			return errorMsg{err: err, context: "send " + string(msg.Type())}
		}
		return sentMsg{msgType: msg.Type()}
	}
}

// postAcceptCmd hands accepted entry metadata to the registered callback.
func postAcceptCmd(fn func(map[string]any), meta map[string]any) tea.Cmd {
	return func() tea.Msg {
		if fn != nil {
			fn(meta)
		}
		return postAcceptMsg{meta: meta}
	}
}

// perform applies a to the review state and turns the resulting commands
// into bubbletea commands.
func (m *Model) perform(a review.Action) tea.Cmd {
	var cmds []review.Command
	m.state, cmds = m.state.Apply(a)

	var out []tea.Cmd
	for _, c := range cmds {
		switch c := c.(type) {
		case review.Send:
			if m.outbox == nil {
				out = append(out, func() tea.Msg {
					return errorMsg{err: common.ErrConnectionClosed, context: "send " + string(c.Message.Type())}
				})
				continue
			}
			out = append(out, sendCmd(c.Message, m.outbox.enqueue(c.Message)))
		case review.ScrollToCandidate:
			m.scrollTo(c.Index)
		case review.PostAccept:
			out = append(out, postAcceptCmd(m.config.OnPostAccept, c.Meta))
		case review.StartPropertyEdit:
			m.openPropertyEditor(c)
		}
	}
	m.syncEditor()
	m.clampScroll()
	return tea.Batch(out...)
}
