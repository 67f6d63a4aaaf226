package transport

import (
	"context"

	"github.com/Veraticus/spice-reconcile/internal/common"
	"github.com/Veraticus/spice-reconcile/internal/model"
	"github.com/Veraticus/spice-reconcile/internal/protocol"
)

// Journal records review traffic.
type Journal interface {
	RecordMessage(ctx context.Context, sessionID string, msg protocol.Message) error
	RecordGeneration(ctx context.Context, sessionID string, set model.CandidateSet) error
}

// JournalingSender records every message it delivers. Journal failures are
// logged and never fail the send.
type JournalingSender struct {
	Duplex
	journal   Journal
	sessionID string
}

// NewJournalingSender wraps d so that its traffic is written to journal under
// sessionID.
func NewJournalingSender(d Duplex, journal Journal, sessionID string) *JournalingSender {
	return &JournalingSender{Duplex: d, journal: journal, sessionID: sessionID}
}

// Send delivers msg and then journals it.
func (s *JournalingSender) Send(ctx context.Context, msg protocol.Message) error {
	if err := s.Duplex.Send(ctx, msg); err != nil {
		return err
	}
	if err := s.journal.RecordMessage(ctx, s.sessionID, msg); err != nil {
		common.LogError(err, "Failed to journal message", common.Fields{"type": string(msg.Type())})
	}
	return nil
}

// Receive returns the next candidate set and journals its generation.
func (s *JournalingSender) Receive(ctx context.Context) (model.CandidateSet, error) {
	set, err := s.Duplex.Receive(ctx)
	if err != nil {
		return set, err
	}
	if err := s.journal.RecordGeneration(ctx, s.sessionID, set); err != nil {
		common.LogError(err, "Failed to journal generation", common.Fields{"generation": set.Generation})
	}
	return set, nil
}
