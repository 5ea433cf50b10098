package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portsrepo "github.com/SscSPs/bookkeeping_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

const (
	defaultRateCacheTTL     = 10 * time.Minute
	defaultRateCacheCleanup = 20 * time.Minute
)

// exchangeRateService resolves and maintains exchange rates. Resolved rates are
// cached per pair and date; writes invalidate every cached date of the pair.
//
// The cache only sees writes made through this process. Rows written elsewhere (the
// rates fetch command, another replica) become visible once the entry expires.
type exchangeRateService struct {
	BaseService
	rateRepo     portsrepo.ExchangeRateRepositoryFacade
	currencyRepo portsrepo.CurrencyReader
	txnRepo      portsrepo.TransactionReader
	cache        *cache.Cache
	cacheOff     bool

	// genMu guards generations and makes a generation check plus cache write atomic
	// with respect to invalidation.
	genMu       sync.Mutex
	generations map[string]uint64
}

// ExchangeRateOption configures the exchange rate service.
type ExchangeRateOption func(*exchangeRateService)

// WithRateCache sets the expiry and cleanup interval of the resolved-rate cache.
// A ttl of zero or less disables caching.
func WithRateCache(ttl, cleanup time.Duration) ExchangeRateOption {
	return func(s *exchangeRateService) {
		if ttl <= 0 {
			s.cacheOff = true
			return
		}
		s.cache = cache.New(ttl, cleanup)
	}
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(
	rateRepo portsrepo.ExchangeRateRepositoryFacade,
	currencyRepo portsrepo.CurrencyReader,
	txnRepo portsrepo.TransactionReader,
	opts ...ExchangeRateOption,
) portssvc.ExchangeRateSvcFacade {
	s := &exchangeRateService{
		rateRepo:     rateRepo,
		currencyRepo: currencyRepo,
		txnRepo:      txnRepo,
		generations:  make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil && !s.cacheOff {
		s.cache = cache.New(defaultRateCacheTTL, defaultRateCacheCleanup)
	}
	return s
}

func rateCacheKey(pair domain.CurrencyPair, date time.Time) string {
	return fmt.Sprintf("rate-%s-%s-%s", pair.From, pair.To, date.Format("2006-01-02"))
}

func ratePairPrefix(pair domain.CurrencyPair) string {
	return fmt.Sprintf("rate-%s-%s-", pair.From, pair.To)
}

// generationKey is shared by a pair and its inverse, since a resolved rate may be
// derived from either direction.
func generationKey(pair domain.CurrencyPair) string {
	if pair.From > pair.To {
		pair = pair.Inverse()
	}
	return pair.From + "/" + pair.To
}

func (s *exchangeRateService) generation(pair domain.CurrencyPair) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[generationKey(pair)]
}

func (s *exchangeRateService) cached(key string) (domain.ExchangeRate, bool) {
	if s.cache == nil {
		return domain.ExchangeRate{}, false
	}
	v, found := s.cache.Get(key)
	if !found {
		return domain.ExchangeRate{}, false
	}
	return v.(domain.ExchangeRate), true
}

// remember caches rate unless the pair was written since gen was read.
func (s *exchangeRateService) remember(key string, pair domain.CurrencyPair, gen uint64, rate domain.ExchangeRate) {
	if s.cache == nil {
		return
	}
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generations[generationKey(pair)] != gen {
		return
	}
	s.cache.Set(key, rate, cache.DefaultExpiration)
}

// Resolve returns the rate for pair effective on date. A direct row wins; when the pair has
// no row on or before date the inverse pair is tried.
func (s *exchangeRateService) Resolve(ctx context.Context, pair domain.CurrencyPair, date time.Time) (domain.ExchangeRate, bool, error) {
	pair = domain.NewCurrencyPair(pair.From, pair.To)
	date = domain.DateOnly(date)
	if pair.IsIdentity() {
		return domain.IdentityRate(pair.From, date), true, nil
	}

	key := rateCacheKey(pair, date)
	if rate, found := s.cached(key); found {
		return rate, true, nil
	}

	gen := s.generation(pair)
	rate, err := s.rateRepo.FindEffectiveRate(ctx, pair, date)
	if err == nil {
		s.remember(key, pair, gen, *rate)
		return *rate, true, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up exchange rate", slog.String("pair", pair.String()))
		return domain.ExchangeRate{}, false, fmt.Errorf("failed to resolve rate %s: %w", pair, err)
	}

	inverse, err := s.rateRepo.FindEffectiveRate(ctx, pair.Inverse(), date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "No exchange rate on or before date", slog.String("pair", pair.String()), slog.Time("date", date))
			return domain.ExchangeRate{}, false, nil
		}
		return domain.ExchangeRate{}, false, fmt.Errorf("failed to resolve inverse rate %s: %w", pair.Inverse(), err)
	}
	if !inverse.Rate.IsPositive() {
		return domain.ExchangeRate{}, false, nil
	}

	derived := domain.ExchangeRate{
		ExchangeRateID:   inverse.ExchangeRateID,
		FromCurrencyCode: pair.From,
		ToCurrencyCode:   pair.To,
		Rate:             decimal.NewFromInt(1).DivRound(inverse.Rate, domain.RatePlaces),
		DateEffective:    inverse.DateEffective,
		IsManual:         inverse.IsManual,
		AuditFields:      inverse.AuditFields,
	}
	s.remember(key, pair, gen, derived)
	return derived, true, nil
}

// RateUsage counts posted transactions that would have resolved pair on date.
func (s *exchangeRateService) RateUsage(ctx context.Context, pair domain.CurrencyPair, date time.Time) (int, error) {
	pair = domain.NewCurrencyPair(pair.From, pair.To)
	count, err := s.txnRepo.CountTransactionsUsingRate(ctx, pair, domain.DateOnly(date))
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions using rate %s: %w", pair, err)
	}
	return count, nil
}

// ListRates retrieves stored rates with optional filtering.
func (s *exchangeRateService) ListRates(ctx context.Context, from, to *string, effectiveDate *time.Time, page, pageSize int) ([]domain.ExchangeRate, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	if from != nil {
		upper := strings.ToUpper(*from)
		from = &upper
	}
	if to != nil {
		upper := strings.ToUpper(*to)
		to = &upper
	}
	return s.rateRepo.ListExchangeRates(ctx, from, to, effectiveDate, page, pageSize)
}

func (s *exchangeRateService) validateRateInput(ctx context.Context, pair domain.CurrencyPair, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return apperrors.NewFieldValidationError("rate", "exchange rate must be positive")
	}
	if pair.IsIdentity() {
		return apperrors.NewValidationError("from and to currency codes cannot be the same")
	}
	for _, code := range []string{pair.From, pair.To} {
		if _, err := s.currencyRepo.FindCurrencyByCode(ctx, code); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewFieldValidationError("currencyCode", fmt.Sprintf("currency code '%s' not found", code))
			}
			return fmt.Errorf("failed to validate currency '%s': %w", code, err)
		}
	}
	return nil
}

// SetRate applies a rate correction. transaction_only writes nothing: the caller embeds the
// rate on the transaction it saves. all_on_date upserts the manual row for (pair, date);
// already-posted transactions keep their entries until they are saved again.
func (s *exchangeRateService) SetRate(ctx context.Context, pair domain.CurrencyPair, date time.Time, rate decimal.Decimal, scope domain.RateScope, confirm bool, userID string) (*domain.RateUpdate, error) {
	pair = domain.NewCurrencyPair(pair.From, pair.To)
	date = domain.DateOnly(date)
	if !scope.IsValid() {
		return nil, apperrors.NewFieldValidationError("scope", fmt.Sprintf("unknown scope '%s'", scope))
	}
	if err := s.validateRateInput(ctx, pair, rate); err != nil {
		return nil, err
	}

	update := &domain.RateUpdate{Pair: pair, Date: date, Rate: rate, Scope: scope}

	switch scope {
	case domain.ScopeTransactionOnly:
		return update, nil
	case domain.ScopeAllOnDate:
		if !confirm {
			used, err := s.RateUsage(ctx, pair, date)
			if err != nil {
				return nil, err
			}
			if used > 0 {
				return nil, fmt.Errorf("%w: %d transactions use %s on %s", apperrors.ErrConfirmationRequired, used, pair, date.Format("2006-01-02"))
			}
		}
	}

	now := s.Now()
	actor := actorOrSystem(userID)
	stored, err := s.rateRepo.UpsertExchangeRate(ctx, domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: pair.From,
		ToCurrencyCode:   pair.To,
		Rate:             rate,
		DateEffective:    date,
		IsManual:         true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to upsert manual exchange rate", slog.String("pair", pair.String()))
		return nil, fmt.Errorf("failed to store exchange rate: %w", err)
	}
	s.invalidatePair(pair)

	s.LogInfo(ctx, "Manual exchange rate stored",
		slog.String("pair", pair.String()),
		slog.String("date", date.Format("2006-01-02")),
		slog.String("rate", rate.String()),
		slog.String("user_id", actor))

	update.Stored = stored
	return update, nil
}

// StoreAutomaticRate records a fetched rate. An existing manual row on the same date is left untouched.
func (s *exchangeRateService) StoreAutomaticRate(ctx context.Context, pair domain.CurrencyPair, date time.Time, rate decimal.Decimal) (*domain.ExchangeRate, error) {
	pair = domain.NewCurrencyPair(pair.From, pair.To)
	if !rate.IsPositive() {
		return nil, apperrors.NewFieldValidationError("rate", "exchange rate must be positive")
	}
	if pair.IsIdentity() {
		return nil, apperrors.NewValidationError("from and to currency codes cannot be the same")
	}

	now := s.Now()
	stored, err := s.rateRepo.UpsertExchangeRate(ctx, domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: pair.From,
		ToCurrencyCode:   pair.To,
		Rate:             rate,
		DateEffective:    domain.DateOnly(date),
		IsManual:         false,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     domain.SystemActor,
			LastUpdatedAt: now,
			LastUpdatedBy: domain.SystemActor,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store automatic rate %s: %w", pair, err)
	}
	s.invalidatePair(pair)

	s.LogInfo(ctx, "Automatic exchange rate stored",
		slog.String("pair", pair.String()),
		slog.String("date", stored.DateEffective.Format("2006-01-02")),
		slog.String("rate", rate.String()))
	return stored, nil
}

// invalidatePair drops every cached date of the pair and of its inverse, since a
// new row can change resolution for any later date. Lookups already in flight for
// the pair see a new generation and skip caching what they read.
func (s *exchangeRateService) invalidatePair(pair domain.CurrencyPair) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.generations[generationKey(pair)]++
	if s.cache == nil {
		return
	}
	direct := ratePairPrefix(pair)
	inverse := ratePairPrefix(pair.Inverse())
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, direct) || strings.HasPrefix(key, inverse) {
			s.cache.Delete(key)
		}
	}
}
