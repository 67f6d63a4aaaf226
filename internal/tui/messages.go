package tui

import (
	"github.com/Veraticus/spice-reconcile/internal/model"
	"github.com/Veraticus/spice-reconcile/internal/protocol"
)

// candidatesMsg delivers a candidate set read off the connection.
type candidatesMsg struct {
	set model.CandidateSet
}

// sentMsg reports a delivered message.
type sentMsg struct {
	msgType protocol.MessageType
}

// disconnectedMsg reports that the connection stopped yielding candidates.
type disconnectedMsg struct {
	err error
}

// postAcceptMsg follows an accepted candidate.
type postAcceptMsg struct {
	meta map[string]any
}

// Error handling.
type errorMsg struct {
	err     error
	context string
}
