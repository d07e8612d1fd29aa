package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/iho/bankrecon/internal/domain"
)

const statsCacheTTL = 10 * time.Minute

// MovementUseCase handles queries and status updates on the ledgers.
type MovementUseCase struct {
	repo  MovementRepository
	cache Cache
}

// NewMovementUseCase creates a new MovementUseCase. cache is optional.
func NewMovementUseCase(repo MovementRepository, cache Cache) *MovementUseCase {
	return &MovementUseCase{repo: repo, cache: cache}
}

// QueryRange returns all ledger movements for the source dated within
// [start, end] inclusive.
func (uc *MovementUseCase) QueryRange(ctx context.Context, source domain.Source, start, end string) ([]domain.Movement, error) {
	if err := domain.ValidateDateRange(start, end); err != nil {
		return nil, err
	}

	return uc.repo.QueryRange(ctx, source, start, end)
}

// SetHandled flags the given movements as reviewed (or not). Unknown ids
// are a no-op; the returned count reflects rows actually affected.
func (uc *MovementUseCase) SetHandled(ctx context.Context, source domain.Source, ids []string, handled bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	return uc.repo.BulkSetHandled(ctx, source, ids, handled)
}

// SetNote attaches an annotation to one movement.
func (uc *MovementUseCase) SetNote(ctx context.Context, source domain.Source, id, note string) error {
	return uc.repo.SetNote(ctx, source, id, note)
}

// Stats aggregates the ledger rows whose date falls in the given year.
// Results are cached briefly; ingestion invalidates the touched years.
func (uc *MovementUseCase) Stats(ctx context.Context, source domain.Source, year int) (*domain.SourceStats, error) {
	if err := domain.ValidateYear(year); err != nil {
		return nil, err
	}

	key := statsCacheKey(source, strconv.Itoa(year))

	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, key); err == nil && cached != "" {
			var stats domain.SourceStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := uc.repo.StatsForYear(ctx, source, year)
	if err != nil {
		return nil, fmt.Errorf("stats for %s/%d: %w", source, year, err)
	}

	if uc.cache != nil {
		if encoded, err := json.Marshal(stats); err == nil {
			uc.cache.Set(ctx, key, string(encoded), statsCacheTTL)
		}
	}

	return stats, nil
}

// Status reports both sources' stats for one year in a single call.
func (uc *MovementUseCase) Status(ctx context.Context, year int) (map[domain.Source]*domain.SourceStats, error) {
	out := make(map[domain.Source]*domain.SourceStats, 2)

	for _, source := range []domain.Source{domain.SourceBank, domain.SourceAccounting} {
		stats, err := uc.Stats(ctx, source, year)
		if err != nil {
			return nil, err
		}
		out[source] = stats
	}

	return out, nil
}
