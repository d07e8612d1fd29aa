package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/domain"
	"github.com/iho/bankrecon/internal/usecase"
)

// MovementRepository implements movement persistence over the two
// per-source tables.
type MovementRepository struct {
	pool *pgxpool.Pool
}

// NewMovementRepository creates a new movement repository.
func NewMovementRepository(pool *pgxpool.Pool) *MovementRepository {
	return &MovementRepository{pool: pool}
}

// tableFor maps a source to its ledger table. The name is interpolated
// into queries, so it must come from this switch and never from input.
func tableFor(source domain.Source) (string, error) {
	switch source {
	case domain.SourceBank:
		return "bank_movements", nil
	case domain.SourceAccounting:
		return "accounting_movements", nil
	}

	return "", domain.ErrUnknownSource
}

// InsertIfAbsent inserts the movement unless its fingerprint is already
// present. Deduplication is enforced by the unique constraint on the
// fingerprint column, so concurrent uploads of the same file cannot both
// insert a row.
func (r *MovementRepository) InsertIfAbsent(ctx context.Context, tx usecase.Transaction, source domain.Source, m *domain.Movement) (bool, error) {
	table, err := tableFor(source)
	if err != nil {
		return false, err
	}

	pgTx, ok := tx.(*Tx)
	if !ok {
		return false, errors.New("transaction is not a postgres transaction")
	}

	rawRow, err := json.Marshal(m.RawRow)
	if err != nil {
		return false, err
	}

	if m.IngestedAt.IsZero() {
		m.IngestedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, date, amount, description, handled, note, fingerprint, origin_file, raw_row, ingested_at)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (fingerprint) DO NOTHING
	`, table)

	tag, err := pgTx.PgxTx().Exec(ctx, query,
		m.ID,
		m.Date,
		decimalToNumeric(m.Amount),
		m.Description,
		m.Handled,
		m.Note,
		m.Fingerprint,
		m.OriginFile,
		rawRow,
		timeToPgTimestamptz(m.IngestedAt),
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// QueryRange returns movements with date between start and end inclusive,
// ordered by date then insertion order.
func (r *MovementRepository) QueryRange(ctx context.Context, source domain.Source, start, end string) ([]domain.Movement, error) {
	table, err := tableFor(source)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, to_char(date, 'YYYY-MM-DD'), amount, description, handled, note, fingerprint, origin_file, raw_row, ingested_at
		FROM %s
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY date, id
	`, table)

	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []domain.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}

	return movements, rows.Err()
}

// HasFingerprint reports whether a movement with the given fingerprint
// exists for the source.
func (r *MovementRepository) HasFingerprint(ctx context.Context, source domain.Source, fingerprint string) (bool, error) {
	table, err := tableFor(source)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE fingerprint = $1)`, table)

	var exists bool
	if err := r.pool.QueryRow(ctx, query, fingerprint).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// BulkSetHandled flips the handled flag on the given movements and
// returns how many rows changed.
func (r *MovementRepository) BulkSetHandled(ctx context.Context, source domain.Source, ids []string, handled bool) (int, error) {
	table, err := tableFor(source)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`UPDATE %s SET handled = $2 WHERE id = ANY($1)`, table)

	tag, err := r.pool.Exec(ctx, query, ids, handled)
	if err != nil {
		return 0, err
	}

	return int(tag.RowsAffected()), nil
}

// SetNote attaches a free-form note to one movement.
func (r *MovementRepository) SetNote(ctx context.Context, source domain.Source, id, note string) error {
	table, err := tableFor(source)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET note = $2 WHERE id = $1`, table)

	tag, err := r.pool.Exec(ctx, query, id, note)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrMovementNotFound
	}

	return nil
}

// StatsForYear aggregates one source's ledger over a calendar year.
func (r *MovementRepository) StatsForYear(ctx context.Context, source domain.Source, year int) (*domain.SourceStats, error) {
	table, err := tableFor(source)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT coalesce(to_char(min(date), 'YYYY-MM-DD'), ''),
		       coalesce(to_char(max(date), 'YYYY-MM-DD'), ''),
		       count(*)
		FROM %s
		WHERE date >= make_date($1, 1, 1) AND date < make_date($1 + 1, 1, 1)
	`, table)

	var stats domain.SourceStats
	err = r.pool.QueryRow(ctx, query, year).Scan(&stats.MinDate, &stats.MaxDate, &stats.Count)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func scanMovement(rows pgx.Rows) (domain.Movement, error) {
	var (
		m          domain.Movement
		amount     pgtype.Numeric
		rawRow     []byte
		ingestedAt pgtype.Timestamptz
	)

	err := rows.Scan(
		&m.ID,
		&m.Date,
		&amount,
		&m.Description,
		&m.Handled,
		&m.Note,
		&m.Fingerprint,
		&m.OriginFile,
		&rawRow,
		&ingestedAt,
	)
	if err != nil {
		return domain.Movement{}, err
	}

	m.Amount = numericToDecimal(amount)
	m.IngestedAt = ingestedAt.Time

	if len(rawRow) > 0 {
		if err := json.Unmarshal(rawRow, &m.RawRow); err != nil {
			return domain.Movement{}, err
		}
	}

	return m, nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
