package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a number with its commodity.
type Amount struct {
	Number   decimal.Decimal `json:"number" cbor:"number"`
	Currency string          `json:"currency" cbor:"currency"`
}

// String renders the amount the way a ledger line would show it, keeping the
// scale it was written with.
func (a Amount) String() string {
	places := int32(0)
	if exp := a.Number.Exponent(); exp < 0 {
		places = -exp
	}
	return fmt.Sprintf("%s %s", a.Number.StringFixed(places), a.Currency)
}

// Posting is a single leg of an entry.
type Posting struct {
	Units   *Amount `json:"units,omitempty" cbor:"units,omitempty"`
	Account string  `json:"account" cbor:"account"`
}

// Entry is a ledger directive proposed by the server. Only transaction
// entries carry postings and properties; other directive types pass through.
type Entry struct {
	Meta      map[string]any `json:"meta,omitempty" cbor:"meta,omitempty"`
	Type      string         `json:"type,omitempty" cbor:"type,omitempty"`
	Date      string         `json:"date,omitempty" cbor:"date,omitempty"`
	Flag      string         `json:"flag,omitempty" cbor:"flag,omitempty"`
	Payee     *string        `json:"payee,omitempty" cbor:"payee,omitempty"`
	Narration string         `json:"narration,omitempty" cbor:"narration,omitempty"`
	Tags      []string       `json:"tags,omitempty" cbor:"tags,omitempty"`
	Links     []string       `json:"links,omitempty" cbor:"links,omitempty"`
	Postings  []Posting      `json:"postings,omitempty" cbor:"postings,omitempty"`
}

// Properties returns the editable transaction properties of the entry.
func (e Entry) Properties() TransactionProperties {
	return TransactionProperties{
		Tags:      cloneStrings(e.Tags),
		Links:     cloneStrings(e.Links),
		Narration: e.Narration,
		Payee:     e.Payee,
	}
}

// Accounts returns the accounts of every posting in order.
func (e Entry) Accounts() []string {
	accounts := make([]string, 0, len(e.Postings))
	for _, p := range e.Postings {
		accounts = append(accounts, p.Account)
	}
	return accounts
}

// TransactionProperties are the user-editable header fields of a transaction.
type TransactionProperties struct {
	Payee     *string  `json:"payee" cbor:"payee"`
	Narration string   `json:"narration" cbor:"narration"`
	Tags      []string `json:"tags" cbor:"tags"`
	Links     []string `json:"links" cbor:"links"`
}

// Clone returns a deep copy of the properties.
func (p TransactionProperties) Clone() TransactionProperties {
	out := TransactionProperties{
		Narration: p.Narration,
		Tags:      cloneStrings(p.Tags),
		Links:     cloneStrings(p.Links),
	}
	if p.Payee != nil {
		payee := *p.Payee
		out.Payee = &payee
	}
	return out
}

// UsedTransaction is an existing transaction consumed by one or more candidates.
type UsedTransaction struct {
	Entry Entry `json:"entry" cbor:"entry"`
	ID    int   `json:"id" cbor:"id"`
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
