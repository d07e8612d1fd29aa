package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/domain"
)

// layoutKind tags the detected statement layout. Detection runs once per
// file; every row is then extracted by the layout's own function rather
// than per-row field probing.
type layoutKind int

const (
	layoutGeneric layoutKind = iota
	layoutBank
	layoutAccounting
)

func (k layoutKind) String() string {
	switch k {
	case layoutBank:
		return "bank"
	case layoutAccounting:
		return "accounting"
	default:
		return "generic"
	}
}

// detectLayout scans the first rows for signature header tokens. The first
// layout whose required tokens are all present wins; absence of any
// signature defaults to generic with the header in row zero.
func detectLayout(rows [][]string) (layoutKind, int) {
	limit := len(rows)
	if limit > 10 {
		limit = 10
	}

	for i := 0; i < limit; i++ {
		serialized := strings.Join(rows[i], "|")

		if strings.Contains(serialized, "Data de Movimento") && strings.Contains(serialized, "Montante") {
			return layoutBank, i
		}

		// Accounting exports carry header cells padded with whitespace,
		// e.g. "Data      " and "Saldo               ".
		if strings.Contains(serialized, "Saldo") && strings.Contains(serialized, "Data") && strings.Contains(serialized, "Documento") {
			return layoutAccounting, i
		}
	}

	return layoutGeneric, 0
}

// record is one data row keyed by its column header.
type record map[string]string

func (r record) trimmedKeys() record {
	clean := make(record, len(r))
	for k, v := range r {
		clean[strings.TrimSpace(k)] = v
	}
	return clean
}

// first returns the first non-empty value among the given keys.
func (r record) first(keys ...string) string {
	for _, k := range keys {
		if v := r[k]; v != "" {
			return v
		}
	}
	return ""
}

// extractFunc pulls the raw date, description and amount out of a record
// according to one layout's conventions.
type extractFunc func(record) (date, description string, amount decimal.Decimal)

func (k layoutKind) extractor() extractFunc {
	switch k {
	case layoutBank:
		return extractBank
	case layoutAccounting:
		return extractAccounting
	default:
		return extractGeneric
	}
}

// extractBank handles the bank statement layout: an explicit movement
// date, a signed amount column and a separate debit/credit indicator.
func extractBank(row record) (string, string, decimal.Decimal) {
	date := row["Data de Movimento"]

	description := row["Descrição"]
	if description == "" {
		description = domain.NoDescription
	}

	amount := CleanValue(row["Montante"]).Abs()
	if row["D/C"] == "D" {
		amount = amount.Neg()
	}

	return date, description, amount
}

// extractAccounting handles the ERP export: the amount lives in the Saldo
// column signed as given, and the description is the movement-type label
// concatenated with the free-text field.
func extractAccounting(row record) (string, string, decimal.Decimal) {
	row = row.trimmedKeys()

	date := row["Data"]

	description := strings.TrimSpace(row["Movimento"] + " " + row.first("Descricao", "Descrição"))
	if description == "" {
		description = domain.NoDescription
	}

	return date, description, CleanValue(row["Saldo"])
}

// extractGeneric probes a priority list of header synonyms in Portuguese
// and English.
func extractGeneric(row record) (string, string, decimal.Decimal) {
	date := row.first("Data", "Date", "Movimento", "data")

	description := row.first("Descrição", "Descricao", "Description", "Histórico", "Historico")
	if entity := row["Entidade"]; entity != "" {
		if description != "" {
			description = strings.TrimSpace(entity + " (" + description + ")")
		} else {
			description = entity
		}
	}
	if description == "" {
		description = domain.NoDescription
	}

	var amount decimal.Decimal
	if direct := row.first("Valor", "Amount", "Montante"); direct != "" {
		amount = CleanValue(direct)
	} else {
		debit := CleanValue(row.first("Débito", "Debito", "Debit"))
		credit := CleanValue(row.first("Crédito", "Credito", "Credit"))
		amount = credit.Sub(debit)

		// A value coded as a lone positive debit means money out.
		if amount.IsZero() && (!debit.IsZero() || !credit.IsZero()) {
			if !credit.IsZero() {
				amount = credit
			} else {
				amount = debit.Neg()
			}
		}
	}

	return date, description, amount
}
