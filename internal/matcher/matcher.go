// Package matcher pairs bank movements with accounting movements by
// amount and date proximity. A full bipartite optimal assignment was
// rejected on purpose: greedy nearest-date matching over sorted lists is
// deterministic, O(n·m), and the rare sub-optimal pairing is acceptable
// in this domain.
package matcher

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/domain"
)

// Default tolerances. Amounts must agree within strictly less than one
// cent; dates may differ by up to 15 days inclusive.
var DefaultAmountTolerance = decimal.RequireFromString("0.01")

const DefaultDateToleranceDays = 15

// Options tunes a matching run. The zero value selects the defaults.
type Options struct {
	// AmountTolerance is the exclusive bound on |bank - accounting|.
	AmountTolerance decimal.Decimal

	// DateToleranceDays is the inclusive bound on date distance.
	DateToleranceDays int

	// MatchAbsolute also pairs movements of equal magnitude and opposite
	// sign. Off by default: a credit matching a debit is almost always a
	// mistake, so it must be asked for explicitly.
	MatchAbsolute bool
}

func (o Options) withDefaults() Options {
	if o.AmountTolerance.IsZero() {
		o.AmountTolerance = DefaultAmountTolerance
	}
	if o.DateToleranceDays == 0 {
		o.DateToleranceDays = DefaultDateToleranceDays
	}
	return o
}

// Match partitions the two movement lists into matched pairs and
// per-source leftovers. Every input movement lands in exactly one bucket.
// Match never mutates its inputs and holds no shared state, so it is safe
// to call concurrently on independent input pairs.
func Match(bank, accounting []domain.Movement, opts Options) domain.ReconciliationResult {
	opts = opts.withDefaults()

	bankSorted := sortedByDate(bank)
	pool := sortedByDate(accounting)
	poolDates := make([]time.Time, len(pool))
	for i := range pool {
		poolDates[i] = pool[i].DateValue()
	}

	claimed := make([]bool, len(pool))
	maxDiff := time.Duration(opts.DateToleranceDays) * 24 * time.Hour

	var matched []domain.MatchedPair
	var bankOnly []domain.Movement

	for _, bm := range bankSorted {
		bankDate := bm.DateValue()

		best := -1
		var bestDiff time.Duration
		for i := range pool {
			if claimed[i] {
				continue
			}
			if !amountsMatch(bm.Amount, pool[i].Amount, opts) {
				continue
			}

			diff := absDuration(poolDates[i].Sub(bankDate))
			if diff > maxDiff {
				continue
			}

			// Nearest date wins; ties keep the first pool entry seen.
			if best == -1 || diff < bestDiff {
				best = i
				bestDiff = diff
			}
		}

		if best == -1 {
			bankOnly = append(bankOnly, bm)
			continue
		}

		claimed[best] = true
		matched = append(matched, newPair(bm, pool[best]))
	}

	var accountingOnly []domain.Movement
	for i := range pool {
		if !claimed[i] {
			accountingOnly = append(accountingOnly, pool[i])
		}
	}

	return domain.ReconciliationResult{
		Matched:        matched,
		BankOnly:       bankOnly,
		AccountingOnly: accountingOnly,
		Summary:        summarize(matched, bankOnly, accountingOnly),
		GeneratedAt:    time.Now().UTC(),
	}
}

func amountsMatch(bank, accounting decimal.Decimal, opts Options) bool {
	if bank.Sub(accounting).Abs().LessThan(opts.AmountTolerance) {
		return true
	}

	if opts.MatchAbsolute {
		return bank.Abs().Sub(accounting.Abs()).Abs().LessThan(opts.AmountTolerance)
	}

	return false
}

func newPair(bank, accounting domain.Movement) domain.MatchedPair {
	note := bank.Note
	if note == "" {
		note = accounting.Note
	}

	return domain.MatchedPair{
		BankID:                bank.ID,
		AccountingID:          accounting.ID,
		Amount:                bank.Amount,
		BankDate:              bank.Date,
		AccountingDate:        accounting.Date,
		BankDescription:       bank.Description,
		AccountingDescription: accounting.Description,
		Handled:               bank.Handled && accounting.Handled,
		Note:                  note,
	}
}

func summarize(matched []domain.MatchedPair, bankOnly, accountingOnly []domain.Movement) domain.Summary {
	s := domain.Summary{
		TotalMatched:         len(matched),
		TotalBankOnly:        len(bankOnly),
		TotalAccountingOnly:  len(accountingOnly),
		AmountMatched:        decimal.Zero,
		AmountBankOnly:       decimal.Zero,
		AmountAccountingOnly: decimal.Zero,
	}

	for _, p := range matched {
		s.AmountMatched = s.AmountMatched.Add(p.Amount)
	}
	for _, m := range bankOnly {
		s.AmountBankOnly = s.AmountBankOnly.Add(m.Amount)
	}
	for _, m := range accountingOnly {
		s.AmountAccountingOnly = s.AmountAccountingOnly.Add(m.Amount)
	}

	return s
}

// sortedByDate copies and stable-sorts ascending by date, keeping source
// order among equal dates so that tie-breaking stays deterministic.
func sortedByDate(movements []domain.Movement) []domain.Movement {
	out := make([]domain.Movement, len(movements))
	copy(out, movements)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
