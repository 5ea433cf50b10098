// Package chart loads a chart of accounts and its sales taxes from YAML.
package chart

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a chart seed.
type File struct {
	Accounts   []AccountSpec  `yaml:"accounts"`
	SalesTaxes []SalesTaxSpec `yaml:"salesTaxes"`
}

// AccountSpec is one account; accounts are matched by code on reseed.
type AccountSpec struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Currency    string `yaml:"currency,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// SalesTaxSpec is one tax; Account holds the code of the account it posts to.
type SalesTaxSpec struct {
	Name    string `yaml:"name"`
	Rate    string `yaml:"rate"`
	Account string `yaml:"account"`
}

// LoadFile reads a chart seed from path.
func LoadFile(path string) ([]domain.Account, []domain.SalesTax, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open chart file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a chart seed. Unknown keys are rejected so typos do not seed half a chart.
// Sales taxes carry their account code in AccountID; the account service resolves it.
func Load(r io.Reader) ([]domain.Account, []domain.SalesTax, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil, fmt.Errorf("chart file is empty")
		}
		return nil, nil, fmt.Errorf("failed to parse chart file: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Accounts))
	accounts := make([]domain.Account, 0, len(file.Accounts))
	for i, spec := range file.Accounts {
		code := strings.TrimSpace(spec.Code)
		if code == "" || strings.TrimSpace(spec.Name) == "" {
			return nil, nil, fmt.Errorf("account %d: code and name are required", i)
		}
		if _, dup := seen[code]; dup {
			return nil, nil, fmt.Errorf("account %d: duplicate code %s", i, code)
		}
		seen[code] = struct{}{}

		accType := domain.AccountType(strings.ToUpper(strings.TrimSpace(spec.Type)))
		if !accType.IsValid() {
			return nil, nil, fmt.Errorf("account %s: unknown type '%s'", code, spec.Type)
		}
		accounts = append(accounts, domain.Account{
			Code:         code,
			Name:         strings.TrimSpace(spec.Name),
			AccountType:  accType,
			CurrencyCode: strings.ToUpper(strings.TrimSpace(spec.Currency)),
			Description:  spec.Description,
		})
	}

	taxes := make([]domain.SalesTax, 0, len(file.SalesTaxes))
	for i, spec := range file.SalesTaxes {
		rate, err := decimal.NewFromString(strings.TrimSpace(spec.Rate))
		if err != nil {
			return nil, nil, fmt.Errorf("sales tax %d: invalid rate '%s'", i, spec.Rate)
		}
		if strings.TrimSpace(spec.Name) == "" || strings.TrimSpace(spec.Account) == "" {
			return nil, nil, fmt.Errorf("sales tax %d: name and account are required", i)
		}
		taxes = append(taxes, domain.SalesTax{
			Name:      strings.TrimSpace(spec.Name),
			Rate:      rate,
			AccountID: strings.TrimSpace(spec.Account),
		})
	}

	return accounts, taxes, nil
}
