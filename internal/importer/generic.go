package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GenericParser parses the fixed-column format date,description,amount,reference
// with ISO dates and a header row.
type GenericParser struct{}

const (
	genericDateFormat = "2006-01-02"
	genericNumFields  = 4
	genericColDate    = 0
	genericColDesc    = 1
	genericColAmount  = 2
	genericColRef     = 3
)

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Parse reads the CSV and returns BankRows.
func (p *GenericParser) Parse(r io.Reader) ([]BankRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = genericNumFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var rows []BankRow
	for i, rec := range records[1:] {
		row, err := parseGenericRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseGenericRow(rec []string) (BankRow, error) {
	date, err := time.Parse(genericDateFormat, strings.TrimSpace(rec[genericColDate]))
	if err != nil {
		return BankRow{}, fmt.Errorf("parsing date %q: %w", rec[genericColDate], err)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(rec[genericColAmount]))
	if err != nil {
		return BankRow{}, fmt.Errorf("parsing amount %q: %w", rec[genericColAmount], err)
	}

	desc := strings.TrimSpace(rec[genericColDesc])
	ref := strings.TrimSpace(rec[genericColRef])
	if ref == "" {
		ref = makeRef("bank", date, desc)
	}
	return BankRow{Date: date, Description: desc, Amount: amount, Reference: ref}, nil
}
