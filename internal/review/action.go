package review

import (
	"github.com/Veraticus/spice-reconcile/internal/model"
	"github.com/Veraticus/spice-reconcile/internal/protocol"
)

// Action is a discrete event the reducer reacts to. Actions that name a
// candidate by index carry the generation of the view that produced them so
// stale references can be rejected.
type Action interface {
	isAction()
}

// ReceiveCandidates delivers a new candidate set from the server.
type ReceiveCandidates struct {
	Set model.CandidateSet
}

// SelectRelative moves the selection through the visible candidates.
type SelectRelative struct {
	Amount int
}

// Select selects a candidate directly.
type Select struct {
	Generation int
	Index      int
}

// Hover marks or clears the hovered candidate.
type Hover struct {
	Generation int
	Index      int
	On         bool
}

// ToggleUsedTransaction flips whether candidates using ID are hidden.
type ToggleUsedTransaction struct {
	ID int
}

// OpenEdit opens an account edit on the selected candidate.
type OpenEdit struct {
	Target EditTarget
}

// OpenEditAt opens an account edit on an explicit candidate.
type OpenEditAt struct {
	Target     EditTarget
	Generation int
	Index      int
}

// CommitEdit closes the open edit and sends the new accounts.
type CommitEdit struct {
	Value string
}

// CancelEdit closes the open edit without sending anything.
type CancelEdit struct{}

// Accept accepts the selected candidate.
type Accept struct{}

// AcceptAt accepts an explicit candidate.
type AcceptAt struct {
	Generation int
	Index      int
}

// Fixme resets every substitution of the selected candidate to its original
// account and sends the change immediately.
type Fixme struct{}

// Revert restores the selected candidate's original.
type Revert struct{}

// EditProperty asks the presentation layer to edit a property of the
// selected candidate.
type EditProperty struct {
	Field PropertyField
}

// ChangeProperties sends edited transaction properties for a candidate.
type ChangeProperties struct {
	Props      model.TransactionProperties
	Generation int
	Index      int
}

// Skip moves the server's pending cursor.
type Skip struct {
	Direction protocol.Direction
}

// Retrain asks the server to retrain.
type Retrain struct{}

func (ReceiveCandidates) isAction()     {}
func (SelectRelative) isAction()        {}
func (Select) isAction()                {}
func (Hover) isAction()                 {}
func (ToggleUsedTransaction) isAction() {}
func (OpenEdit) isAction()              {}
func (OpenEditAt) isAction()            {}
func (CommitEdit) isAction()            {}
func (CancelEdit) isAction()            {}
func (Accept) isAction()                {}
func (AcceptAt) isAction()              {}
func (Fixme) isAction()                 {}
func (Revert) isAction()                {}
func (EditProperty) isAction()          {}
func (ChangeProperties) isAction()      {}
func (Skip) isAction()                  {}
func (Retrain) isAction()               {}
