// Package protocol defines the messages exchanged with the matching server
// and the codecs that frame them on a duplex stream.
package protocol

import (
	"github.com/Veraticus/spice-reconcile/internal/model"
)

// MessageType names a message on the wire.
type MessageType string

// Message types.
const (
	TypeChangeCandidate MessageType = "change_candidate"
	TypeSelectCandidate MessageType = "select_candidate"
	TypeSkip            MessageType = "skip"
	TypeRetrain         MessageType = "retrain"
	TypeCandidates      MessageType = "candidates"
)

// Message is anything that can be sent over the wire.
type Message interface {
	Type() MessageType
}

// Changes is the payload of a change_candidate message. Nil fields are
// omitted; a Changes with every field nil asks the server to restore the
// candidate's original.
type Changes struct {
	Accounts  *[]string `json:"accounts,omitempty" cbor:"accounts,omitempty"`
	Tags      *[]string `json:"tags,omitempty" cbor:"tags,omitempty"`
	Links     *[]string `json:"links,omitempty" cbor:"links,omitempty"`
	Narration *string   `json:"narration,omitempty" cbor:"narration,omitempty"`
	Payee     *string   `json:"payee,omitempty" cbor:"payee,omitempty"`
}

// IsRevert reports whether the changes are empty.
func (c Changes) IsRevert() bool {
	return c.Accounts == nil && c.Tags == nil && c.Links == nil && c.Narration == nil && c.Payee == nil
}

// ChangeCandidate edits the accounts or properties of a candidate.
type ChangeCandidate struct {
	Changes        Changes `json:"changes" cbor:"changes"`
	Generation     int     `json:"generation" cbor:"generation"`
	CandidateIndex int     `json:"candidate_index" cbor:"candidate_index"`
}

// Type implements Message.
func (ChangeCandidate) Type() MessageType { return TypeChangeCandidate }

// SelectCandidate accepts a candidate.
type SelectCandidate struct {
	Generation int `json:"generation" cbor:"generation"`
	Index      int `json:"index" cbor:"index"`
}

// Type implements Message.
func (SelectCandidate) Type() MessageType { return TypeSelectCandidate }

// Direction is where a skip moves the pending cursor.
type Direction string

// Skip directions.
const (
	DirectionPrior Direction = "prior"
	DirectionNext  Direction = "next"
	DirectionFirst Direction = "first"
	DirectionLast  Direction = "last"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	switch d {
	case DirectionPrior, DirectionNext, DirectionFirst, DirectionLast:
		return true
	}
	return false
}

// Skip moves the server's pending cursor.
type Skip struct {
	Direction Direction `json:"direction" cbor:"direction"`
}

// Type implements Message.
func (Skip) Type() MessageType { return TypeSkip }

// Retrain asks the server to retrain its classifier.
type Retrain struct{}

// Type implements Message.
func (Retrain) Type() MessageType { return TypeRetrain }

// Candidates carries a freshly computed candidate set.
type Candidates struct {
	model.CandidateSet
}

// Type implements Message.
func (Candidates) Type() MessageType { return TypeCandidates }
