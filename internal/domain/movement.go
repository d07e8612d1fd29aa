package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies which feed a movement originated from.
type Source string

const (
	SourceBank       Source = "bank"
	SourceAccounting Source = "accounting"
)

// ParseSource validates a source label.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceBank, SourceAccounting:
		return Source(s), nil
	}
	return "", ErrUnknownSource
}

// NoDescription is the sentinel used when a statement row carries no
// usable description text.
const NoDescription = "Sem descrição"

// Movement is a single financial transaction record from either feed.
// Date is a calendar date (no time component), canonical form YYYY-MM-DD.
type Movement struct {
	ID          string
	Date        string
	Amount      decimal.Decimal
	Description string
	Handled     bool
	Note        string
	Fingerprint string
	OriginFile  string
	IngestedAt  time.Time

	// RawRow keeps the original parsed cells for traceability. Empty for
	// movements loaded back from the ledger.
	RawRow map[string]string
}

// DateValue parses the canonical date. Movements are only constructed with
// valid dates, so a zero time here indicates a programming error upstream.
func (m *Movement) DateValue() time.Time {
	t, _ := time.Parse(time.DateOnly, m.Date)
	return t
}

// MatchedPair references one bank movement and one accounting movement that
// the matcher decided represent the same real-world transaction. Both
// original dates and descriptions are kept, never merged.
type MatchedPair struct {
	BankID                string
	AccountingID          string
	Amount                decimal.Decimal
	BankDate              string
	AccountingDate        string
	BankDescription       string
	AccountingDescription string

	// Handled is the conjunction of both sides at match time. It is a
	// snapshot: mutating a side later does not update an existing pair.
	Handled bool
	Note    string
}

// Summary aggregates counts and signed amount sums per result bucket.
// It is derived from the buckets and never independently mutated.
type Summary struct {
	TotalMatched         int             `json:"total_matched"`
	TotalBankOnly        int             `json:"total_bank_only"`
	TotalAccountingOnly  int             `json:"total_accounting_only"`
	AmountMatched        decimal.Decimal `json:"amount_matched"`
	AmountBankOnly       decimal.Decimal `json:"amount_bank_only"`
	AmountAccountingOnly decimal.Decimal `json:"amount_accounting_only"`
}

// ReconciliationResult partitions the two input lists: every input movement
// appears in exactly one bucket.
type ReconciliationResult struct {
	Matched        []MatchedPair
	BankOnly       []Movement
	AccountingOnly []Movement
	Summary        Summary
	GeneratedAt    time.Time
}

// IngestResult reports the outcome of a deduplicated ingestion run.
type IngestResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// SourceStats is an aggregate over one source's ledger for a year.
type SourceStats struct {
	MinDate string `json:"min_date"`
	MaxDate string `json:"max_date"`
	Count   int    `json:"count"`
}

// VerificationResult is the diff between a control file and the ledger.
type VerificationResult struct {
	MissingInLedger []Movement `json:"missing_in_ledger"`
	ExtraInLedger   []Movement `json:"extra_in_ledger"`
}
