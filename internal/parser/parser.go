package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/iho/bankrecon/internal/domain"
)

// IDGenerator mints ids for parsed movements. Injected so that parsing
// stays reproducible in tests.
type IDGenerator interface {
	Generate() string
}

// Parser turns raw spreadsheet bytes into canonical movements. It accepts
// xlsx workbooks and CSV exports (comma or semicolon separated).
type Parser struct {
	ids IDGenerator
}

// New creates a Parser.
func New(ids IDGenerator) *Parser {
	return &Parser{ids: ids}
}

// Parse produces the canonical movement list for one statement file.
// Individual malformed cells degrade to defaults and rows without a valid
// date or with a zero amount are dropped; the only hard failure is a byte
// buffer that is not a readable spreadsheet container.
func (p *Parser) Parse(data []byte) ([]domain.Movement, error) {
	rows, err := readRows(data)
	if err != nil {
		return nil, err
	}

	kind, headerIdx := detectLayout(rows)
	extract := kind.extractor()

	if headerIdx >= len(rows) {
		return []domain.Movement{}, nil
	}
	headers := rows[headerIdx]

	movements := make([]domain.Movement, 0, len(rows)-headerIdx-1)
	for _, raw := range rows[headerIdx+1:] {
		row := make(record, len(headers))
		for i, cell := range raw {
			if i >= len(headers) || headers[i] == "" || cell == "" {
				continue
			}
			row[headers[i]] = cell
		}
		if len(row) == 0 {
			continue
		}

		rawDate, description, amount := extract(row)

		date := NormalizeDate(rawDate)
		if date == "" {
			continue
		}

		// Zero-amount rows are non-movements (opening balances, totals).
		if amount.IsZero() {
			continue
		}

		movements = append(movements, domain.Movement{
			ID:          p.ids.Generate(),
			Date:        date,
			Amount:      amount,
			Description: strings.TrimSpace(description),
			RawRow:      row,
		})
	}

	return movements, nil
}

// readRows opens the container: xlsx first, CSV as fallback.
func readRows(data []byte) ([][]string, error) {
	if len(data) == 0 {
		return nil, domain.ErrUnreadableInput
	}

	if wb, err := excelize.OpenReader(bytes.NewReader(data)); err == nil {
		defer wb.Close()

		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, domain.ErrUnreadableInput
		}

		rows, err := wb.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnreadableInput, err)
		}

		return rows, nil
	}

	return readCSV(data)
}

func readCSV(data []byte) ([][]string, error) {
	// Binary junk is not a CSV.
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, domain.ErrUnreadableInput
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil || len(rows) == 0 {
		return nil, domain.ErrUnreadableInput
	}

	return rows, nil
}

// detectDelimiter picks ';' over ',' when the first line favors it;
// European statement exports are usually semicolon separated.
func detectDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}

	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}
