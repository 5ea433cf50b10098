package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

const (
	ecbBaseCurrency     = "EUR"
	defaultECBBaseURL   = "https://data-api.ecb.europa.eu/service/data/EXR"
	defaultFetchTimeout = 15 * time.Second
)

// ecbResponse is the part of the ECB SDMX-JSON payload needed to read daily reference rates.
type ecbResponse struct {
	DataSets []struct {
		Series map[string]struct {
			Observations map[string][]json.Number `json:"observations"`
		} `json:"series"`
	} `json:"dataSets"`
	Structure struct {
		Dimensions struct {
			Series []struct {
				ID     string `json:"id"`
				Values []struct {
					ID string `json:"id"`
				} `json:"values"`
			} `json:"series"`
		} `json:"dimensions"`
	} `json:"structure"`
}

// ecbRateFetcher stores ECB euro reference rates as automatic rates into the home currency.
type ecbRateFetcher struct {
	BaseService
	client       *http.Client
	baseURL      string
	lookbackDays int
	homeCurrency string
	rates        portssvc.ExchangeRateWriterSvc
}

// NewECBRateFetcher creates a fetcher. An empty baseURL uses the public ECB data API.
func NewECBRateFetcher(baseURL string, lookbackDays int, homeCurrency string, rates portssvc.ExchangeRateWriterSvc, client *http.Client) portssvc.RateFetcherSvc {
	if baseURL == "" {
		baseURL = defaultECBBaseURL
	}
	if lookbackDays < 0 {
		lookbackDays = 0
	}
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &ecbRateFetcher{
		client:       client,
		baseURL:      strings.TrimRight(baseURL, "/"),
		lookbackDays: lookbackDays,
		homeCurrency: strings.ToUpper(homeCurrency),
		rates:        rates,
	}
}

// FetchRates walks back from date, one day at a time up to the lookback window, until the
// ECB publishes a reference day (weekends and holidays have none). Each currency's rate into
// the home currency is stored with that day as its effective date.
func (f *ecbRateFetcher) FetchRates(ctx context.Context, currencies []string, date time.Time) ([]domain.ExchangeRate, error) {
	var wanted []string
	for _, c := range currencies {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" && c != f.homeCurrency {
			wanted = append(wanted, c)
		}
	}
	wanted = uniqueStrings(wanted)
	if len(wanted) == 0 {
		return nil, apperrors.NewFieldValidationError("currencies", "at least one foreign currency is required")
	}

	query := uniqueStrings(append(append([]string{}, wanted...), f.homeCurrency))
	var series []string
	for _, c := range query {
		if c != ecbBaseCurrency {
			series = append(series, c)
		}
	}
	sort.Strings(series)

	date = domain.DateOnly(date)
	for i := 0; i <= f.lookbackDays; i++ {
		day := date.AddDate(0, 0, -i)
		perEuro, err := f.fetchDay(ctx, series, day)
		if err != nil {
			return nil, err
		}
		if !hasAll(perEuro, series) {
			f.LogDebug(ctx, "No ECB reference rates for day, trying previous day", slog.String("date", day.Format("2006-01-02")))
			continue
		}
		perEuro[ecbBaseCurrency] = decimal.NewFromInt(1)

		stored := make([]domain.ExchangeRate, 0, len(wanted))
		for _, c := range wanted {
			rate := perEuro[f.homeCurrency].DivRound(perEuro[c], domain.RatePlaces)
			row, err := f.rates.StoreAutomaticRate(ctx, domain.NewCurrencyPair(c, f.homeCurrency), day, rate)
			if err != nil {
				return stored, err
			}
			stored = append(stored, *row)
		}
		f.LogInfo(ctx, "ECB reference rates stored",
			slog.String("requested_date", date.Format("2006-01-02")),
			slog.String("found_date", day.Format("2006-01-02")),
			slog.Int("rates", len(stored)))
		return stored, nil
	}

	return nil, apperrors.NewNotFoundError(fmt.Sprintf("ECB reference rates on or within %d days before %s", f.lookbackDays, date.Format("2006-01-02")))
}

func hasAll(values map[string]decimal.Decimal, codes []string) bool {
	for _, c := range codes {
		if v, ok := values[c]; !ok || !v.IsPositive() {
			return false
		}
	}
	return true
}

// fetchDay returns units of each currency per euro on day. An unpublished day yields an empty map.
func (f *ecbRateFetcher) fetchDay(ctx context.Context, codes []string, day time.Time) (map[string]decimal.Decimal, error) {
	values := make(map[string]decimal.Decimal)
	if len(codes) == 0 {
		return values, nil
	}
	dateStr := day.Format("2006-01-02")
	url := fmt.Sprintf("%s/D.%s.EUR.SP00.A?startPeriod=%s&endPeriod=%s&format=jsondata",
		f.baseURL, strings.Join(codes, "+"), dateStr, dateStr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build ECB request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ECB request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return values, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ECB API returned status %s", resp.Status)
	}

	var payload ecbResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode ECB response: %w", err)
	}
	if len(payload.DataSets) == 0 {
		return values, nil
	}

	// Series keys look like "0:1:0:0:0"; the position of the CURRENCY dimension
	// indexes into that dimension's values.
	currencyDim := -1
	var currencyValues []string
	for i, dim := range payload.Structure.Dimensions.Series {
		if dim.ID == "CURRENCY" {
			currencyDim = i
			for _, v := range dim.Values {
				currencyValues = append(currencyValues, v.ID)
			}
		}
	}
	if currencyDim == -1 {
		return nil, fmt.Errorf("ECB response has no CURRENCY dimension")
	}

	for key, s := range payload.DataSets[0].Series {
		parts := strings.Split(key, ":")
		if currencyDim >= len(parts) {
			continue
		}
		var idx int
		if _, err := fmt.Sscanf(parts[currencyDim], "%d", &idx); err != nil || idx >= len(currencyValues) {
			continue
		}
		obs, ok := s.Observations["0"]
		if !ok || len(obs) == 0 || obs[0] == "" {
			continue
		}
		v, err := decimal.NewFromString(obs[0].String())
		if err != nil {
			continue
		}
		values[currencyValues[idx]] = v
	}
	return values, nil
}
