// Package model defines the candidate data received from the matching server.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// MaxGroupNumber is the largest group number a substitution may carry.
// Groups are addressed by a single digit key.
const MaxGroupNumber = 9

// Validation errors.
var (
	ErrDuplicateGroup     = errors.New("duplicate group number")
	ErrGroupOutOfRange    = errors.New("group number out of range")
	ErrUnknownUsedTxn     = errors.New("unknown used transaction")
	ErrMalformedTuple     = errors.New("malformed substitution tuple")
	ErrDuplicateUsedTxnID = errors.New("duplicate used transaction id")
)

// Substitution is an account whose real value was unknown and was filled in
// with a placeholder. On the wire it is the tuple
// [unique_name, account_name, group_number, original_name].
type Substitution struct {
	_            struct{} `cbor:",toarray"`
	UniqueName   string
	AccountName  string
	GroupNumber  int
	OriginalName string
}

// MarshalJSON encodes the substitution as its wire tuple.
func (s Substitution) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{s.UniqueName, s.AccountName, s.GroupNumber, s.OriginalName})
}

// UnmarshalJSON decodes the wire tuple.
func (s *Substitution) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTuple, err)
	}
	if len(raw) != 4 {
		return fmt.Errorf("%w: want 4 elements, got %d", ErrMalformedTuple, len(raw))
	}
	var out Substitution
	fields := []any{&out.UniqueName, &out.AccountName, &out.GroupNumber, &out.OriginalName}
	for i, f := range fields {
		if err := json.Unmarshal(raw[i], f); err != nil {
			return fmt.Errorf("%w: element %d: %v", ErrMalformedTuple, i, err)
		}
	}
	*s = out
	return nil
}

// Candidate is one proposed transaction match awaiting user acceptance.
type Candidate struct {
	OriginalTransactionProperties *TransactionProperties `json:"original_transaction_properties" cbor:"original_transaction_properties"`
	UsedTransactionIDs            []int                  `json:"used_transaction_ids" cbor:"used_transaction_ids"`
	SubstitutedAccounts           []Substitution         `json:"substituted_accounts" cbor:"substituted_accounts"`
	NewEntries                    []Entry                `json:"new_entries" cbor:"new_entries"`
}

// Uses reports whether the candidate consumes the used transaction id.
func (c Candidate) Uses(id int) bool {
	for _, used := range c.UsedTransactionIDs {
		if used == id {
			return true
		}
	}
	return false
}

// Revertible reports whether the candidate has an original to restore.
// Property edits are only offered for revertible candidates.
func (c Candidate) Revertible() bool {
	return c.OriginalTransactionProperties != nil
}

// Primary returns the primary transaction entry, if any.
func (c Candidate) Primary() (Entry, bool) {
	if len(c.NewEntries) == 0 {
		return Entry{}, false
	}
	return c.NewEntries[0], true
}

// CurrentAccounts returns the account currently assigned to each substitution.
func (c Candidate) CurrentAccounts() []string {
	accounts := make([]string, len(c.SubstitutedAccounts))
	for i, s := range c.SubstitutedAccounts {
		accounts[i] = s.AccountName
	}
	return accounts
}

// OriginalAccounts returns the pre-substitution account of each substitution.
func (c Candidate) OriginalAccounts() []string {
	accounts := make([]string, len(c.SubstitutedAccounts))
	for i, s := range c.SubstitutedAccounts {
		accounts[i] = s.OriginalName
	}
	return accounts
}

// Validate checks that group numbers are unique and digit-addressable.
func (c Candidate) Validate() error {
	seen := make(map[int]bool, len(c.SubstitutedAccounts))
	for i, s := range c.SubstitutedAccounts {
		if s.GroupNumber < 0 || s.GroupNumber > MaxGroupNumber {
			return fmt.Errorf("%w: substitution %d has group %d", ErrGroupOutOfRange, i, s.GroupNumber)
		}
		if seen[s.GroupNumber] {
			return fmt.Errorf("%w: %d", ErrDuplicateGroup, s.GroupNumber)
		}
		seen[s.GroupNumber] = true
	}
	return nil
}

// CandidateSet is an immutable snapshot of the server's candidate list.
// Candidate indices are only meaningful within the generation that produced them.
type CandidateSet struct {
	Candidates       []Candidate       `json:"candidates" cbor:"candidates"`
	UsedTransactions []UsedTransaction `json:"used_transactions" cbor:"used_transactions"`
	Generation       int               `json:"generation" cbor:"generation"`
	PendingIndex     int               `json:"pending_index" cbor:"pending_index"`
	NumPending       int               `json:"num_pending" cbor:"num_pending"`
}

// Len returns the number of candidates.
func (s *CandidateSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Candidates)
}

// Candidate returns the candidate at the global index.
func (s *CandidateSet) Candidate(index int) (Candidate, bool) {
	if s == nil || index < 0 || index >= len(s.Candidates) {
		return Candidate{}, false
	}
	return s.Candidates[index], true
}

// UsedTransaction looks up a used transaction by id.
func (s *CandidateSet) UsedTransaction(id int) (UsedTransaction, bool) {
	if s == nil {
		return UsedTransaction{}, false
	}
	for _, u := range s.UsedTransactions {
		if u.ID == id {
			return u, true
		}
	}
	return UsedTransaction{}, false
}

// Validate checks every candidate and every used transaction reference.
func (s *CandidateSet) Validate() error {
	ids := make(map[int]bool, len(s.UsedTransactions))
	for _, u := range s.UsedTransactions {
		if ids[u.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateUsedTxnID, u.ID)
		}
		ids[u.ID] = true
	}
	for i, c := range s.Candidates {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("candidate %d: %w", i, err)
		}
		for _, id := range c.UsedTransactionIDs {
			if !ids[id] {
				return fmt.Errorf("candidate %d: %w: %d", i, ErrUnknownUsedTxn, id)
			}
		}
	}
	return nil
}

// AccountSuggestions returns the accounts worth offering when editing the
// candidate at index: the known accounts, every current and original
// substitution account, and every posting account of the candidate's entries.
func (s *CandidateSet) AccountSuggestions(index int, known []string) []string {
	set := make(map[string]struct{}, len(known))
	for _, a := range known {
		set[a] = struct{}{}
	}
	if c, ok := s.Candidate(index); ok {
		for _, sub := range c.SubstitutedAccounts {
			set[sub.AccountName] = struct{}{}
			set[sub.OriginalName] = struct{}{}
		}
		for _, e := range c.NewEntries {
			for _, p := range e.Postings {
				set[p.Account] = struct{}{}
			}
		}
	}
	delete(set, "")

	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
