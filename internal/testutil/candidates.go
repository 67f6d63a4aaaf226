package testutil

import (
	"testing"

	"github.com/Veraticus/spice-reconcile/internal/model"
	"github.com/shopspring/decimal"
)

// Accounts used by the fixtures.
const (
	FundingAccount     = "Assets:Checking"
	PlaceholderAccount = "Expenses:FIXME"
)

// FixtureDate is the date of every fixture entry.
const FixtureDate = "2024-03-01"

// CandidateSetBuilder builds candidate sets for tests. Used transactions are
// added first; candidates refer to them by id.
type CandidateSetBuilder struct {
	t   *testing.T
	set model.CandidateSet
}

// NewCandidateSet starts a builder for the given generation.
//
// Example:
//
//	set := testutil.NewCandidateSet(t, 1).
//		WithUsedTransaction(10, "COFFEE", "4.50").
//		WithPlaceholder("COFFEE", "4.50", 10).
//		WithMatch("Coffee", "Expenses:Coffee", "4.50", 10).
//		Build()
func NewCandidateSet(t *testing.T, generation int) *CandidateSetBuilder {
	t.Helper()
	return &CandidateSetBuilder{t: t, set: model.CandidateSet{Generation: generation}}
}

// WithUsedTransaction adds an existing transaction with an unknown expense
// account.
func (b *CandidateSetBuilder) WithUsedTransaction(id int, narration, amount string) *CandidateSetBuilder {
	b.set.UsedTransactions = append(b.set.UsedTransactions, model.UsedTransaction{
		ID:    id,
		Entry: b.entry(narration, PlaceholderAccount, amount),
	})
	return b
}

// WithMatch adds a candidate whose accounts are all known.
func (b *CandidateSetBuilder) WithMatch(narration, account, amount string, used ...int) *CandidateSetBuilder {
	b.set.Candidates = append(b.set.Candidates, model.Candidate{
		UsedTransactionIDs: used,
		NewEntries:         []model.Entry{b.entry(narration, account, amount)},
	})
	return b
}

// WithPlaceholder adds a candidate whose expense account is a placeholder in
// group 0, with its original properties recorded so it can be reverted.
func (b *CandidateSetBuilder) WithPlaceholder(narration, amount string, used ...int) *CandidateSetBuilder {
	placeholder := PlaceholderAccount + ":0"
	entry := b.entry(narration, placeholder, amount)
	props := entry.Properties()
	b.set.Candidates = append(b.set.Candidates, model.Candidate{
		UsedTransactionIDs:            used,
		OriginalTransactionProperties: &props,
		SubstitutedAccounts: []model.Substitution{{
			UniqueName:   "expense",
			AccountName:  placeholder,
			GroupNumber:  0,
			OriginalName: PlaceholderAccount,
		}},
		NewEntries: []model.Entry{entry},
	})
	return b
}

// WithPending sets the pending cursor.
func (b *CandidateSetBuilder) WithPending(index, count int) *CandidateSetBuilder {
	b.set.PendingIndex = index
	b.set.NumPending = count
	return b
}

// Build validates the set and returns it, failing the test when invalid.
func (b *CandidateSetBuilder) Build() model.CandidateSet {
	b.t.Helper()
	if err := b.set.Validate(); err != nil {
		b.t.Fatalf("invalid candidate set fixture: %v", err)
	}
	return b.set
}

func (b *CandidateSetBuilder) entry(narration, account, amount string) model.Entry {
	b.t.Helper()
	n, err := decimal.NewFromString(amount)
	if err != nil {
		b.t.Fatalf("invalid fixture amount %q: %v", amount, err)
	}
	return model.Entry{
		Type:      "Transaction",
		Date:      FixtureDate,
		Flag:      "*",
		Narration: narration,
		Postings: []model.Posting{
			{Account: FundingAccount, Units: &model.Amount{Number: n.Neg(), Currency: "USD"}},
			{Account: account, Units: &model.Amount{Number: n, Currency: "USD"}},
		},
	}
}
