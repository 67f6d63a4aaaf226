package protocol

import "github.com/Veraticus/spice-reconcile/internal/model"

// The builders below are stateless. Callers pass the generation they read at
// the moment of sending, never one captured when the interaction started.

// NewChangeAccounts replaces the candidate's substituted accounts. The
// primary transaction's current properties are resent so the change never
// blanks them.
func NewChangeAccounts(generation, index int, c model.Candidate, accounts []string) ChangeCandidate {
	var props model.TransactionProperties
	if primary, ok := c.Primary(); ok {
		props = primary.Properties()
	}
	return ChangeCandidate{
		Generation:     generation,
		CandidateIndex: index,
		Changes:        fullChanges(accounts, props),
	}
}

// NewChangeProperties replaces the candidate's transaction properties and
// resends its current accounts unchanged.
func NewChangeProperties(generation, index int, c model.Candidate, props model.TransactionProperties) ChangeCandidate {
	return ChangeCandidate{
		Generation:     generation,
		CandidateIndex: index,
		Changes:        fullChanges(c.CurrentAccounts(), props),
	}
}

// NewRevert asks the server to restore the candidate's original.
func NewRevert(generation, index int) ChangeCandidate {
	return ChangeCandidate{
		Generation:     generation,
		CandidateIndex: index,
	}
}

// NewSelectCandidate accepts the candidate.
func NewSelectCandidate(generation, index int) SelectCandidate {
	return SelectCandidate{Generation: generation, Index: index}
}

// NewSkip moves the pending cursor.
func NewSkip(d Direction) Skip {
	return Skip{Direction: d}
}

// NewRetrain asks for a retrain.
func NewRetrain() Retrain {
	return Retrain{}
}

func fullChanges(accounts []string, props model.TransactionProperties) Changes {
	accounts = nonNil(accounts)
	tags := nonNil(props.Tags)
	links := nonNil(props.Links)
	narration := props.Narration
	return Changes{
		Accounts:  &accounts,
		Tags:      &tags,
		Links:     &links,
		Narration: &narration,
		Payee:     props.Payee,
	}
}

func nonNil(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
