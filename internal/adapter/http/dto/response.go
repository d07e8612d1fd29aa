package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/domain"
)

// MovementResponse represents a movement in API responses.
type MovementResponse struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Handled     bool            `json:"handled"`
	Note        string          `json:"note,omitempty"`
	OriginFile  string          `json:"origin_file,omitempty"`
	IngestedAt  time.Time       `json:"ingested_at"`
}

// MovementFromDomain converts a domain movement to a response.
func MovementFromDomain(m domain.Movement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		Date:        m.Date,
		Amount:      m.Amount,
		Description: m.Description,
		Handled:     m.Handled,
		Note:        m.Note,
		OriginFile:  m.OriginFile,
		IngestedAt:  m.IngestedAt,
	}
}

// MovementsFromDomain converts domain movements to responses.
func MovementsFromDomain(movements []domain.Movement) []MovementResponse {
	result := make([]MovementResponse, len(movements))
	for i, m := range movements {
		result[i] = MovementFromDomain(m)
	}
	return result
}

// MatchedPairResponse represents one matched bank/accounting pair.
type MatchedPairResponse struct {
	BankID                string          `json:"bank_id"`
	AccountingID          string          `json:"accounting_id"`
	Amount                decimal.Decimal `json:"amount"`
	BankDate              string          `json:"bank_date"`
	AccountingDate        string          `json:"accounting_date"`
	BankDescription       string          `json:"bank_description"`
	AccountingDescription string          `json:"accounting_description"`
	Handled               bool            `json:"handled"`
	Note                  string          `json:"note,omitempty"`
}

// ReconciliationResponse represents a full reconciliation result.
type ReconciliationResponse struct {
	Matched        []MatchedPairResponse `json:"matched"`
	BankOnly       []MovementResponse    `json:"bank_only"`
	AccountingOnly []MovementResponse    `json:"accounting_only"`
	Summary        domain.Summary        `json:"summary"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

// ReconciliationFromDomain converts a domain reconciliation result.
func ReconciliationFromDomain(r domain.ReconciliationResult) ReconciliationResponse {
	matched := make([]MatchedPairResponse, len(r.Matched))
	for i, p := range r.Matched {
		matched[i] = MatchedPairResponse{
			BankID:                p.BankID,
			AccountingID:          p.AccountingID,
			Amount:                p.Amount,
			BankDate:              p.BankDate,
			AccountingDate:        p.AccountingDate,
			BankDescription:       p.BankDescription,
			AccountingDescription: p.AccountingDescription,
			Handled:               p.Handled,
			Note:                  p.Note,
		}
	}

	return ReconciliationResponse{
		Matched:        matched,
		BankOnly:       MovementsFromDomain(r.BankOnly),
		AccountingOnly: MovementsFromDomain(r.AccountingOnly),
		Summary:        r.Summary,
		GeneratedAt:    r.GeneratedAt,
	}
}

// VerificationResponse reports the two difference sets of a
// file-versus-ledger check.
type VerificationResponse struct {
	MissingInLedger []MovementResponse `json:"missing_in_ledger"`
	ExtraInLedger   []MovementResponse `json:"extra_in_ledger"`
}

// VerificationFromDomain converts a domain verification result.
func VerificationFromDomain(v domain.VerificationResult) VerificationResponse {
	return VerificationResponse{
		MissingInLedger: MovementsFromDomain(v.MissingInLedger),
		ExtraInLedger:   MovementsFromDomain(v.ExtraInLedger),
	}
}

// IngestResponse reports the outcome of an upload.
type IngestResponse struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// IngestFromDomain converts a domain ingest result.
func IngestFromDomain(r domain.IngestResult) IngestResponse {
	return IngestResponse{
		Added:   r.Added,
		Skipped: r.Skipped,
		Total:   r.Total,
	}
}

// UpdatedResponse reports how many rows a bulk update touched.
type UpdatedResponse struct {
	Updated int `json:"updated"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
