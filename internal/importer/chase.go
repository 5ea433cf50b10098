package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// ChaseParser parses Chase bank checking CSV exports.
type ChaseParser struct{}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV and returns BankRows.
func (p *ChaseParser) Parse(r io.Reader) ([]BankRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var rows []BankRow
	for i, rec := range records[1:] {
		date, err := time.Parse(chaseDateFormat, rec[chaseColDate])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", i+2, rec[chaseColDate], err)
		}
		amount, err := decimal.NewFromString(rec[chaseColAmount])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+2, rec[chaseColAmount], err)
		}
		desc := rec[chaseColDesc]
		rows = append(rows, BankRow{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Reference:   makeRef("chase", date, desc),
		})
	}
	return rows, nil
}
