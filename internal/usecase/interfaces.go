package usecase

import (
	"context"
	"time"

	"github.com/iho/bankrecon/internal/domain"
)

// MovementRepository defines data access for the per-source movement
// ledgers. InsertIfAbsent relies on a storage-level unique constraint on
// the fingerprint: a plain check-then-insert would race under concurrent
// ingestion of the same file.
type MovementRepository interface {
	// InsertIfAbsent inserts the movement unless a row with the same
	// fingerprint already exists for the source. Reports whether a row
	// was actually inserted.
	InsertIfAbsent(ctx context.Context, tx Transaction, source domain.Source, m *domain.Movement) (bool, error)
	QueryRange(ctx context.Context, source domain.Source, start, end string) ([]domain.Movement, error)
	HasFingerprint(ctx context.Context, source domain.Source, fingerprint string) (bool, error)
	BulkSetHandled(ctx context.Context, source domain.Source, ids []string, handled bool) (int, error)
	SetNote(ctx context.Context, source domain.Source, id, note string) error
	StatsForYear(ctx context.Context, source domain.Source, year int) (*domain.SourceStats, error)
}

// StatementParser turns raw spreadsheet bytes into canonical movements.
type StatementParser interface {
	Parse(data []byte) ([]domain.Movement, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage for upload endpoints.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
