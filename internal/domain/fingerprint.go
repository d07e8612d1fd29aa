package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"
)

// Fingerprint computes the deduplication key for a movement: a SHA-256
// digest over the pipe-joined canonical date, amount and description.
// The amount is rendered with exactly two decimal places so that 120,
// 120.0 and 120.00 fingerprint identically. Row ids and ingestion order
// never participate, so the digest is stable across processes.
func Fingerprint(date string, amount decimal.Decimal, description string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", date, amount.StringFixed(2), description)))
	return hex.EncodeToString(sum[:])
}

// ComputeFingerprint fills in the movement's fingerprint from its
// canonical fields.
func (m *Movement) ComputeFingerprint() {
	m.Fingerprint = Fingerprint(m.Date, m.Amount, m.Description)
}
