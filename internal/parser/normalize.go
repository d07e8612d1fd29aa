package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CleanValue converts a locale-formatted cell into a decimal amount.
// Currency symbols and spaces are stripped. When both ',' and '.' appear,
// '.' is a thousands separator and ',' the decimal point; a lone ',' is
// the decimal point. Unparseable input yields zero, never an error:
// statement spreadsheets are not schema-controlled and a bad cell must
// not abort the batch.
func CleanValue(raw string) decimal.Decimal {
	clean := strings.NewReplacer("€", "", "$", "", " ", "", " ", "").Replace(raw)

	switch {
	case strings.Contains(clean, ",") && strings.Contains(clean, "."):
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case strings.Contains(clean, ","):
		clean = strings.Replace(clean, ",", ".", 1)
	}

	value, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero
	}

	return value
}

// NormalizeDate rewrites DD/MM/YYYY and DD.MM.YYYY spellings into
// YYYY-MM-DD, falling through to generic date parsing otherwise. Input
// that does not resolve to a valid calendar date yields the empty string
// and the caller must drop the record.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	for _, sep := range []string{"/", "."} {
		if !strings.Contains(raw, sep) {
			continue
		}

		parts := strings.Split(raw, sep)
		if len(parts) != 3 {
			continue
		}

		day, errD := strconv.Atoi(strings.TrimSpace(parts[0]))
		month, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
		year, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
		if errD != nil || errM != nil || errY != nil {
			return ""
		}

		return validDate(fmt.Sprintf("%04d-%02d-%02d", year, month, day))
	}

	for _, layout := range []string{time.DateOnly, "2006-1-2", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(time.DateOnly)
		}
	}

	return ""
}

// validDate rejects spellings like 2024-02-31 that survive reordering but
// are not real calendar dates.
func validDate(iso string) string {
	if _, err := time.Parse(time.DateOnly, iso); err != nil {
		return ""
	}
	return iso
}
