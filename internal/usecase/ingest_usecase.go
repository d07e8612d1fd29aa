package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/iho/bankrecon/internal/domain"
)

// ImportOrigin labels ledger rows promoted from verification results.
const ImportOrigin = "imported-via-verification"

// IngestUseCase handles deduplicated ingestion into the movement ledgers.
type IngestUseCase struct {
	txManager TransactionManager
	repo      MovementRepository
	parser    StatementParser
	retrier   Retrier
	cache     Cache
}

// NewIngestUseCase creates a new IngestUseCase. retrier and cache are
// optional.
func NewIngestUseCase(
	txManager TransactionManager,
	repo MovementRepository,
	parser StatementParser,
	retrier Retrier,
	cache Cache,
) *IngestUseCase {
	return &IngestUseCase{
		txManager: txManager,
		repo:      repo,
		parser:    parser,
		retrier:   retrier,
		cache:     cache,
	}
}

// Ingest parses the statement bytes and inserts every movement whose
// fingerprint is not yet in the source's ledger. Re-uploading the same
// file is idempotent: every row counts as skipped the second time.
func (uc *IngestUseCase) Ingest(ctx context.Context, source domain.Source, data []byte, originFile string) (*domain.IngestResult, error) {
	movements, err := uc.parser.Parse(data)
	if err != nil {
		return nil, err
	}

	return uc.ingestMovements(ctx, source, movements, originFile)
}

// ImportMovements re-runs ingest semantics for an explicit movement list,
// letting an operator promote verification results into the ledger.
func (uc *IngestUseCase) ImportMovements(ctx context.Context, source domain.Source, movements []domain.Movement) (*domain.IngestResult, error) {
	return uc.ingestMovements(ctx, source, movements, ImportOrigin)
}

func (uc *IngestUseCase) ingestMovements(ctx context.Context, source domain.Source, movements []domain.Movement, originFile string) (*domain.IngestResult, error) {
	result := &domain.IngestResult{Total: len(movements)}

	operation := func() error {
		result.Added, result.Skipped = 0, 0

		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin ingest transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		for i := range movements {
			m := movements[i]
			m.OriginFile = originFile
			m.ComputeFingerprint()

			inserted, err := uc.repo.InsertIfAbsent(ctx, tx, source, &m)
			if err != nil {
				return fmt.Errorf("insert movement %s: %w", m.Fingerprint, err)
			}

			if inserted {
				result.Added++
			} else {
				result.Skipped++
			}
		}

		return tx.Commit(ctx)
	}

	if uc.retrier != nil {
		err := uc.retrier.Retry(ctx, operation)
		if err != nil {
			return nil, err
		}
	} else if err := operation(); err != nil {
		return nil, err
	}

	uc.invalidateStats(ctx, source, movements)

	return result, nil
}

// invalidateStats drops cached year stats for every year the batch
// touched. Best effort: a stale cache entry only delays observability.
func (uc *IngestUseCase) invalidateStats(ctx context.Context, source domain.Source, movements []domain.Movement) {
	if uc.cache == nil {
		return
	}

	years := map[string]struct{}{}
	for _, m := range movements {
		if len(m.Date) >= 4 {
			years[m.Date[:4]] = struct{}{}
		}
	}

	for year := range years {
		if _, err := strconv.Atoi(year); err != nil {
			continue
		}
		uc.cache.Delete(ctx, statsCacheKey(source, year))
	}
}

func statsCacheKey(source domain.Source, year string) string {
	return fmt.Sprintf("stats:%s:%s", source, year)
}
