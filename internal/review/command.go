package review

import "github.com/Veraticus/spice-reconcile/internal/protocol"

// Command is a side effect requested by the reducer. The reducer never
// performs side effects itself; the presentation layer executes commands.
type Command interface {
	isCommand()
}

// Send hands a message to the outbound channel.
type Send struct {
	Message protocol.Message
}

// ScrollToCandidate asks the presentation layer to bring a candidate into view.
type ScrollToCandidate struct {
	Index int
}

// PostAccept carries the accepted candidate's primary entry metadata to
// whatever panel associates source files with entries. The payload is opaque.
type PostAccept struct {
	Meta map[string]any
}

// StartPropertyEdit asks the presentation layer to open a property editor.
type StartPropertyEdit struct {
	Initial    string
	Field      PropertyField
	Generation int
	Index      int
}

func (Send) isCommand()              {}
func (ScrollToCandidate) isCommand() {}
func (PostAccept) isCommand()        {}
func (StartPropertyEdit) isCommand() {}
