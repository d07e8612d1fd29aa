package usecase

import (
	"context"
	"fmt"

	"github.com/iho/bankrecon/internal/domain"
	"github.com/iho/bankrecon/internal/matcher"
)

// ReconcileUseCase runs the matching engine over parsed files or over
// date ranges pulled from the persisted ledgers.
type ReconcileUseCase struct {
	repo   MovementRepository
	parser StatementParser
}

// NewReconcileUseCase creates a new ReconcileUseCase.
func NewReconcileUseCase(repo MovementRepository, parser StatementParser) *ReconcileUseCase {
	return &ReconcileUseCase{repo: repo, parser: parser}
}

// ReconcileFiles parses both statement buffers and matches them. Nothing
// is persisted.
func (uc *ReconcileUseCase) ReconcileFiles(ctx context.Context, bankData, accountingData []byte, opts matcher.Options) (*domain.ReconciliationResult, error) {
	bank, err := uc.parser.Parse(bankData)
	if err != nil {
		return nil, fmt.Errorf("parse bank statement: %w", err)
	}

	accounting, err := uc.parser.Parse(accountingData)
	if err != nil {
		return nil, fmt.Errorf("parse accounting statement: %w", err)
	}

	result := matcher.Match(bank, accounting, opts)
	return &result, nil
}

// ReconcileRange pulls both ledgers for the inclusive date range and
// matches them.
func (uc *ReconcileUseCase) ReconcileRange(ctx context.Context, start, end string, opts matcher.Options) (*domain.ReconciliationResult, error) {
	if err := domain.ValidateDateRange(start, end); err != nil {
		return nil, err
	}

	bank, err := uc.repo.QueryRange(ctx, domain.SourceBank, start, end)
	if err != nil {
		return nil, fmt.Errorf("query bank ledger: %w", err)
	}

	accounting, err := uc.repo.QueryRange(ctx, domain.SourceAccounting, start, end)
	if err != nil {
		return nil, fmt.Errorf("query accounting ledger: %w", err)
	}

	result := matcher.Match(bank, accounting, opts)
	return &result, nil
}
