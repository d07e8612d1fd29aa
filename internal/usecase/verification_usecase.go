package usecase

import (
	"context"
	"fmt"

	"github.com/iho/bankrecon/internal/domain"
)

// VerificationUseCase compares a control file against a source ledger.
type VerificationUseCase struct {
	repo   MovementRepository
	parser StatementParser
}

// NewVerificationUseCase creates a new VerificationUseCase.
func NewVerificationUseCase(repo MovementRepository, parser StatementParser) *VerificationUseCase {
	return &VerificationUseCase{repo: repo, parser: parser}
}

// Verify computes the two diff sets: control-file movements whose
// fingerprint is absent from the ledger, and ledger rows within the
// file's date span whose fingerprint the file does not contain. A file
// with zero parsed rows yields empty sets on both sides: there is no
// range to check.
func (uc *VerificationUseCase) Verify(ctx context.Context, source domain.Source, data []byte) (*domain.VerificationResult, error) {
	movements, err := uc.parser.Parse(data)
	if err != nil {
		return nil, err
	}

	result := &domain.VerificationResult{
		MissingInLedger: []domain.Movement{},
		ExtraInLedger:   []domain.Movement{},
	}
	if len(movements) == 0 {
		return result, nil
	}

	fileHashes := make(map[string]struct{}, len(movements))
	minDate, maxDate := movements[0].Date, movements[0].Date

	for i := range movements {
		movements[i].ComputeFingerprint()
		fileHashes[movements[i].Fingerprint] = struct{}{}

		if movements[i].Date < minDate {
			minDate = movements[i].Date
		}
		if movements[i].Date > maxDate {
			maxDate = movements[i].Date
		}
	}

	for _, m := range movements {
		exists, err := uc.repo.HasFingerprint(ctx, source, m.Fingerprint)
		if err != nil {
			return nil, fmt.Errorf("check fingerprint: %w", err)
		}
		if !exists {
			result.MissingInLedger = append(result.MissingInLedger, m)
		}
	}

	ledgerRows, err := uc.repo.QueryRange(ctx, source, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("query ledger span: %w", err)
	}

	for _, row := range ledgerRows {
		if _, ok := fileHashes[row.Fingerprint]; !ok {
			result.ExtraInLedger = append(result.ExtraInLedger, row)
		}
	}

	return result, nil
}
