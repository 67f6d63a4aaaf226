package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Veraticus/spice-reconcile/internal/common"
	"github.com/Veraticus/spice-reconcile/internal/model"
	"github.com/Veraticus/spice-reconcile/internal/protocol"
)

// Loopback is an in-process importer stand-in for demos. It holds a
// candidate set and answers every state-changing message with a new
// generation of it.
type Loopback struct {
	set model.CandidateSet
	mu  sync.Mutex
}

// NewLoopback seeds the server with set.
func NewLoopback(set model.CandidateSet) *Loopback {
	seed := set
	seed.Candidates = append([]model.Candidate(nil), set.Candidates...)
	return &Loopback{set: seed}
}

// Snapshot returns the current candidate set.
func (l *Loopback) Snapshot() model.CandidateSet {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.set
}

// Serve sends the current set on conn and then answers messages until the
// connection closes or ctx is done.
func (l *Loopback) Serve(ctx context.Context, conn *Conn) error {
	if err := conn.Send(ctx, protocol.Candidates{CandidateSet: l.Snapshot()}); err != nil {
		return err
	}
	for {
		msg, err := conn.ReceiveMessage(ctx)
		if errors.Is(err, common.ErrConnectionClosed) || errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}

		next, changed := l.Handle(msg)
		if !changed {
			continue
		}
		if err := conn.Send(ctx, protocol.Candidates{CandidateSet: next}); err != nil {
			return err
		}
	}
}

// Handle applies msg and reports the resulting set. Messages for a stale
// generation or a missing candidate leave the set unchanged.
func (l *Loopback) Handle(msg protocol.Message) (model.CandidateSet, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	switch m := msg.(type) {
	case protocol.ChangeCandidate:
		err = l.change(m)
	case protocol.SelectCandidate:
		err = l.accept(m)
	case protocol.Skip:
		err = l.skip(m.Direction)
	case protocol.Retrain:
	default:
		err = fmt.Errorf("%w: %s", protocol.ErrUnknownMessageType, msg.Type())
	}
	if err != nil {
		common.LogDebug("Loopback ignored message", common.Fields{"type": string(msg.Type()), "reason": err.Error()})
		return l.set, false
	}

	l.set.Generation++
	return l.set, true
}

func (l *Loopback) candidate(generation, index int) (model.Candidate, error) {
	if generation != l.set.Generation {
		return model.Candidate{}, fmt.Errorf("%w: %d, current %d", common.ErrStaleGeneration, generation, l.set.Generation)
	}
	c, ok := l.set.Candidate(index)
	if !ok {
		return model.Candidate{}, fmt.Errorf("%w: candidate %d", common.ErrNotFound, index)
	}
	return c, nil
}

func (l *Loopback) change(m protocol.ChangeCandidate) error {
	c, err := l.candidate(m.Generation, m.CandidateIndex)
	if err != nil {
		return err
	}

	c.SubstitutedAccounts = append([]model.Substitution(nil), c.SubstitutedAccounts...)
	c.NewEntries = append([]model.Entry(nil), c.NewEntries...)

	if m.Changes.IsRevert() {
		for i := range c.SubstitutedAccounts {
			c.SubstitutedAccounts[i].AccountName = c.SubstitutedAccounts[i].OriginalName
		}
		if c.OriginalTransactionProperties != nil && len(c.NewEntries) > 0 {
			setProperties(&c.NewEntries[0], c.OriginalTransactionProperties.Clone())
		}
	} else {
		if accounts := m.Changes.Accounts; accounts != nil {
			if len(*accounts) != len(c.SubstitutedAccounts) {
				return fmt.Errorf("got %d accounts for %d substitutions", len(*accounts), len(c.SubstitutedAccounts))
			}
			for i, a := range *accounts {
				c.SubstitutedAccounts[i].AccountName = a
			}
		}
		if len(c.NewEntries) > 0 {
			applyChanges(&c.NewEntries[0], m.Changes)
		}
	}

	l.set.Candidates = append([]model.Candidate(nil), l.set.Candidates...)
	l.set.Candidates[m.CandidateIndex] = c
	return nil
}

func (l *Loopback) accept(m protocol.SelectCandidate) error {
	if _, err := l.candidate(m.Generation, m.Index); err != nil {
		return err
	}
	candidates := make([]model.Candidate, 0, len(l.set.Candidates)-1)
	candidates = append(candidates, l.set.Candidates[:m.Index]...)
	candidates = append(candidates, l.set.Candidates[m.Index+1:]...)
	l.set.Candidates = candidates
	// Accepting resolves one pending entry.
	l.set.NumPending = max(l.set.NumPending-1, 0)
	l.set.PendingIndex = max(min(l.set.PendingIndex, l.set.NumPending-1), 0)
	return nil
}

func (l *Loopback) skip(d protocol.Direction) error {
	last := l.set.NumPending - 1
	switch d {
	case protocol.DirectionFirst:
		l.set.PendingIndex = 0
	case protocol.DirectionLast:
		l.set.PendingIndex = max(last, 0)
	case protocol.DirectionPrior:
		l.set.PendingIndex = max(l.set.PendingIndex-1, 0)
	case protocol.DirectionNext:
		l.set.PendingIndex = max(min(l.set.PendingIndex+1, last), 0)
	default:
		return fmt.Errorf("unknown direction %q", d)
	}
	return nil
}

func setProperties(e *model.Entry, p model.TransactionProperties) {
	e.Payee = p.Payee
	e.Narration = p.Narration
	e.Tags = p.Tags
	e.Links = p.Links
}

func applyChanges(e *model.Entry, c protocol.Changes) {
	if c.Payee != nil {
		payee := *c.Payee
		e.Payee = &payee
	}
	if c.Narration != nil {
		e.Narration = *c.Narration
	}
	if c.Tags != nil {
		e.Tags = append([]string(nil), *c.Tags...)
	}
	if c.Links != nil {
		e.Links = append([]string(nil), *c.Links...)
	}
}
