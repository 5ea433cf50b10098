package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_core/internal/dto"
	"github.com/google/uuid"
)

type accountService struct {
	BaseService
	accountRepo  portsrepo.AccountRepositoryFacade
	currencyRepo portsrepo.CurrencyReader
	taxRepo      portsrepo.SalesTaxRepositoryFacade
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, currencyRepo portsrepo.CurrencyReader, taxRepo portsrepo.SalesTaxRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo:  accountRepo,
		currencyRepo: currencyRepo,
		taxRepo:      taxRepo,
	}
}

func (s *accountService) validateAccount(ctx context.Context, acc domain.Account) error {
	if !acc.AccountType.IsValid() {
		return apperrors.NewFieldValidationError("accountType", fmt.Sprintf("unknown account type '%s'", acc.AccountType))
	}
	if strings.TrimSpace(acc.Code) == "" {
		return apperrors.NewFieldValidationError("code", "code is required")
	}
	if acc.CurrencyCode == "" {
		return nil
	}
	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, acc.CurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewFieldValidationError("currencyCode", fmt.Sprintf("currency code '%s' not found", acc.CurrencyCode))
		}
		return fmt.Errorf("failed to validate currency '%s': %w", acc.CurrencyCode, err)
	}
	return nil
}

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	actor := actorOrSystem(userID)
	now := s.Now()
	account := domain.Account{
		AccountID:    uuid.NewString(),
		Code:         strings.TrimSpace(req.Code),
		Name:         req.Name,
		AccountType:  req.AccountType,
		CurrencyCode: strings.ToUpper(req.CurrencyCode),
		Description:  req.Description,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}
	if err := s.validateAccount(ctx, account); err != nil {
		return nil, err
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account in repository", slog.String("account_id", account.AccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully in service", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID in repository", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

// ListAccounts retrieves a paginated list of accounts.
func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts from repository", slog.Int("limit", limit), slog.Int("offset", offset))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

// DeactivateAccount marks an account as inactive.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	err := s.accountRepo.DeactivateAccount(ctx, accountID, actorOrSystem(userID), s.Now())
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to deactivate account in repository", slog.String("account_id", accountID))
		}
		return err
	}
	s.LogInfo(ctx, "Account deactivated successfully in service", slog.String("account_id", accountID))
	return nil
}

// SeedChart upserts accounts by code, then sales taxes by name. A tax whose AccountID
// matches a seeded account code is linked to that account.
func (s *accountService) SeedChart(ctx context.Context, accounts []domain.Account, taxes []domain.SalesTax, userID string) (*portssvc.SeedResult, error) {
	actor := actorOrSystem(userID)
	now := s.Now()
	idsByCode := make(map[string]string, len(accounts))
	result := &portssvc.SeedResult{}

	for _, acc := range accounts {
		acc.Code = strings.TrimSpace(acc.Code)
		acc.CurrencyCode = strings.ToUpper(acc.CurrencyCode)
		if err := s.validateAccount(ctx, acc); err != nil {
			return result, fmt.Errorf("account %s: %w", acc.Code, err)
		}
		if acc.AccountID == "" {
			acc.AccountID = uuid.NewString()
		}
		acc.IsActive = true
		acc.AuditFields = domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor}

		stored, err := s.accountRepo.UpsertAccountByCode(ctx, acc)
		if err != nil {
			return result, fmt.Errorf("failed to seed account %s: %w", acc.Code, err)
		}
		idsByCode[stored.Code] = stored.AccountID
		result.Accounts++
	}

	for _, tax := range taxes {
		if id, ok := idsByCode[tax.AccountID]; ok {
			tax.AccountID = id
		} else if acc, err := s.accountRepo.FindAccountByCode(ctx, tax.AccountID); err == nil {
			tax.AccountID = acc.AccountID
		}
		if tax.AccountID == "" || !tax.Rate.IsPositive() {
			return result, apperrors.NewValidationError(fmt.Sprintf("sales tax %s needs an account and a positive rate", tax.Name))
		}
		if tax.SalesTaxID == "" {
			tax.SalesTaxID = uuid.NewString()
		}
		tax.IsActive = true
		tax.AuditFields = domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor}

		if _, err := s.taxRepo.UpsertSalesTaxByName(ctx, tax); err != nil {
			return result, fmt.Errorf("failed to seed sales tax %s: %w", tax.Name, err)
		}
		result.SalesTaxes++
	}

	s.LogInfo(ctx, "Chart of accounts seeded", slog.Int("accounts", result.Accounts), slog.Int("sales_taxes", result.SalesTaxes))
	return result, nil
}
