package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_core/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindEffectiveRate(ctx context.Context, pair domain.CurrencyPair, date time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, pair, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListExchangeRates(ctx context.Context, fromCurrency, toCurrency *string, effectiveDate *time.Time, page, pageSize int) ([]domain.ExchangeRate, int, error) {
	args := m.Called(ctx, fromCurrency, toCurrency, effectiveDate, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Int(1), args.Error(2)
}

func (m *MockExchangeRateRepository) UpsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, rate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

// --- Mock CurrencyReader ---
type MockCurrencyReader struct {
	mock.Mock
}

func (m *MockCurrencyReader) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyReader) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// --- Mock TransactionReader (only rate usage is exercised) ---
type MockRateUsageReader struct {
	mock.Mock
	portsrepo.TransactionReader
}

func (m *MockRateUsageReader) CountTransactionsUsingRate(ctx context.Context, pair domain.CurrencyPair, date time.Time) (int, error) {
	args := m.Called(ctx, pair, date)
	return args.Int(0), args.Error(1)
}

// --- Test Suite ---
type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo     *MockExchangeRateRepository
	mockCurrencyRepo *MockCurrencyReader
	mockTxnRepo      *MockRateUsageReader
	service          portssvc.ExchangeRateSvcFacade
	ctx              context.Context
	pair             domain.CurrencyPair
	date             time.Time
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockExchangeRateRepository)
	suite.mockCurrencyRepo = new(MockCurrencyReader)
	suite.mockTxnRepo = new(MockRateUsageReader)
	suite.service = services.NewExchangeRateService(suite.mockRateRepo, suite.mockCurrencyRepo, suite.mockTxnRepo,
		services.WithRateCache(time.Minute, time.Minute))
	suite.ctx = context.Background()
	suite.pair = domain.NewCurrencyPair("cad", "usd")
	suite.date = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
}

func (suite *ExchangeRateServiceTestSuite) expectCurrencies() {
	suite.mockCurrencyRepo.On("FindCurrencyByCode", suite.ctx, "CAD").Return(&domain.Currency{CurrencyCode: "CAD"}, nil)
	suite.mockCurrencyRepo.On("FindCurrencyByCode", suite.ctx, "USD").Return(&domain.Currency{CurrencyCode: "USD"}, nil)
}

// --- Test Cases ---

func (suite *ExchangeRateServiceTestSuite) TestResolve_IdentityNeedsNoLookup() {
	rate, found, err := suite.service.Resolve(suite.ctx, domain.NewCurrencyPair("USD", "usd"), suite.date)

	suite.Require().NoError(err)
	suite.True(found)
	suite.True(rate.Rate.Equal(decimal.NewFromInt(1)))
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindEffectiveRate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_CachesDirectRate() {
	stored := &domain.ExchangeRate{FromCurrencyCode: "CAD", ToCurrencyCode: "USD", Rate: decimal.RequireFromString("0.73"), DateEffective: suite.date}
	suite.mockRateRepo.On("FindEffectiveRate", suite.ctx, suite.pair, suite.date).Return(stored, nil).Once()

	for i := 0; i < 3; i++ {
		rate, found, err := suite.service.Resolve(suite.ctx, suite.pair, suite.date)
		suite.Require().NoError(err)
		suite.True(found)
		suite.True(rate.Rate.Equal(stored.Rate))
	}
	suite.mockRateRepo.AssertNumberOfCalls(suite.T(), "FindEffectiveRate", 1)
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_MissIsNotCached() {
	notFound := apperrors.NewNotFoundError("rate")
	suite.mockRateRepo.On("FindEffectiveRate", suite.ctx, suite.pair, suite.date).Return(nil, notFound).Twice()
	suite.mockRateRepo.On("FindEffectiveRate", suite.ctx, suite.pair.Inverse(), suite.date).Return(nil, notFound).Twice()

	for i := 0; i < 2; i++ {
		_, found, err := suite.service.Resolve(suite.ctx, suite.pair, suite.date)
		suite.Require().NoError(err)
		suite.False(found)
	}
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_WriteDuringLookupIsNotCachedStale() {
	old := &domain.ExchangeRate{FromCurrencyCode: "CAD", ToCurrencyCode: "USD", Rate: decimal.RequireFromString("0.73"), DateEffective: suite.date}
	fetched := &domain.ExchangeRate{FromCurrencyCode: "CAD", ToCurrencyCode: "USD", Rate: decimal.RequireFromString("0.75"), DateEffective: suite.date}

	suite.mockRateRepo.On("UpsertExchangeRate", suite.ctx, mock.Anything).Return(fetched, nil).Once()
	// The row is replaced after the first lookup read it but before it returned.
	suite.mockRateRepo.On("FindEffectiveRate", suite.ctx, suite.pair, suite.date).
		Run(func(mock.Arguments) {
			_, err := suite.service.StoreAutomaticRate(suite.ctx, suite.pair, suite.date, fetched.Rate)
			suite.Require().NoError(err)
		}).
		Return(old, nil).Once()
	suite.mockRateRepo.On("FindEffectiveRate", suite.ctx, suite.pair, suite.date).Return(fetched, nil).Once()

	first, _, err := suite.service.Resolve(suite.ctx, suite.pair, suite.date)
	suite.Require().NoError(err)
	suite.True(first.Rate.Equal(old.Rate))

	second, _, err := suite.service.Resolve(suite.ctx, suite.pair, suite.date)
	suite.Require().NoError(err)
	suite.True(second.Rate.Equal(fetched.Rate))
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_ZeroTTLDisablesCache() {
	service := services.NewExchangeRateService(suite.mockRateRepo, suite.mockCurrencyRepo, suite.mockTxnRepo,
		services.WithRateCache(0, 0))
	stored := &domain.ExchangeRate{FromCurrencyCode: "CAD", ToCurrencyCode: "USD", Rate: decimal.RequireFromString("0.73"), DateEffective: suite.date}
	suite.mockRateRepo.On("FindEffectiveRate", suite.ctx, suite.pair, suite.date).Return(stored, nil).Twice()

	for i := 0; i < 2; i++ {
		_, found, err := service.Resolve(suite.ctx, suite.pair, suite.date)
		suite.Require().NoError(err)
		suite.True(found)
	}
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestSetRate_AllOnDateInvalidatesCache() {
	suite.expectCurrencies()
	old := &domain.ExchangeRate{FromCurrencyCode: "CAD", ToCurrencyCode: "USD", Rate: decimal.RequireFromString("0.73"), DateEffective: suite.date}
	updated := &domain.ExchangeRate{FromCurrencyCode: "CAD", ToCurrencyCode: "USD", Rate: decimal.RequireFromString("0.74"), DateEffective: suite.date, IsManual: true}

	suite.mockRateRepo.On("FindEffectiveRate", suite.ctx, suite.pair, suite.date).Return(old, nil).Once()
	_, _, err := suite.service.Resolve(suite.ctx, suite.pair, suite.date)
	suite.Require().NoError(err)

	suite.mockTxnRepo.On("CountTransactionsUsingRate", suite.ctx, suite.pair, suite.date).Return(0, nil).Once()
	suite.mockRateRepo.On("UpsertExchangeRate", suite.ctx, mock.MatchedBy(func(r domain.ExchangeRate) bool {
		return r.IsManual && r.Rate.Equal(updated.Rate) && r.CreatedBy == "user-1"
	})).Return(updated, nil).Once()

	result, err := suite.service.SetRate(suite.ctx, suite.pair, suite.date, updated.Rate, domain.ScopeAllOnDate, false, "user-1")
	suite.Require().NoError(err)
	suite.Equal(updated, result.Stored)

	suite.mockRateRepo.On("FindEffectiveRate", suite.ctx, suite.pair, suite.date).Return(updated, nil).Once()
	rate, _, err := suite.service.Resolve(suite.ctx, suite.pair, suite.date)
	suite.Require().NoError(err)
	suite.True(rate.Rate.Equal(updated.Rate))
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestSetRate_RequiresConfirmationWhenInUse() {
	suite.expectCurrencies()
	suite.mockTxnRepo.On("CountTransactionsUsingRate", suite.ctx, suite.pair, suite.date).Return(3, nil).Once()

	_, err := suite.service.SetRate(suite.ctx, suite.pair, suite.date, decimal.RequireFromString("0.74"), domain.ScopeAllOnDate, false, "user-1")

	suite.Require().ErrorIs(err, apperrors.ErrConfirmationRequired)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "UpsertExchangeRate", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestSetRate_TransactionOnlyWritesNothing() {
	suite.expectCurrencies()

	result, err := suite.service.SetRate(suite.ctx, suite.pair, suite.date, decimal.RequireFromString("0.74"), domain.ScopeTransactionOnly, false, "user-1")

	suite.Require().NoError(err)
	suite.Nil(result.Stored)
	suite.Equal(domain.ScopeTransactionOnly, result.Scope)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "UpsertExchangeRate", mock.Anything, mock.Anything)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "CountTransactionsUsingRate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestSetRate_Validation() {
	suite.expectCurrencies()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", suite.ctx, "XYZ").Return(nil, apperrors.NewNotFoundError("currency XYZ"))

	tests := []struct {
		name  string
		pair  domain.CurrencyPair
		rate  string
		scope domain.RateScope
	}{
		{"zero rate", suite.pair, "0", domain.ScopeAllOnDate},
		{"negative rate", suite.pair, "-1", domain.ScopeAllOnDate},
		{"identity pair", domain.NewCurrencyPair("USD", "USD"), "1", domain.ScopeAllOnDate},
		{"unknown currency", domain.NewCurrencyPair("XYZ", "USD"), "1", domain.ScopeAllOnDate},
		{"unknown scope", suite.pair, "1", "forever"},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.SetRate(suite.ctx, tt.pair, suite.date, decimal.RequireFromString(tt.rate), tt.scope, true, "user-1")
			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
}

func (suite *ExchangeRateServiceTestSuite) TestListRates_ClampsPaging() {
	suite.mockRateRepo.On("ListExchangeRates", suite.ctx, (*string)(nil), (*string)(nil), (*time.Time)(nil), 1, 20).
		Return([]domain.ExchangeRate{}, 0, nil).Once()

	rates, total, err := suite.service.ListRates(suite.ctx, nil, nil, nil, 0, 500)

	suite.Require().NoError(err)
	suite.Empty(rates)
	suite.Zero(total)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}
