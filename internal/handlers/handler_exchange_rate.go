package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/bookkeeping_core/internal/core/domain"
	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_core/internal/dto"
	"github.com/SscSPs/bookkeeping_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
	}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(exchangeRateService)

	rates := rg.Group("/exchange-rates")
	{
		rates.GET("", h.listExchangeRates)
		rates.PUT("", h.setExchangeRate)
		rates.GET("/resolve", h.resolveExchangeRate)
		rates.GET("/usage", h.getRateUsage)
	}
}

// pairFromQuery reads the from/to query parameters as a normalised pair.
func pairFromQuery(c *gin.Context) domain.CurrencyPair {
	return domain.NewCurrencyPair(strings.TrimSpace(c.Query("from")), strings.TrimSpace(c.Query("to")))
}

// resolveExchangeRate godoc
// @Summary Resolve the rate for a pair on a date
// @Description Returns the latest rate on or before the date, preferring manual rates and falling back to the inverse pair. found=false means no rate exists.
// @Tags exchange-rates
// @Produce  json
// @Param   from query string true "Source currency code"
// @Param   to query string true "Target currency code"
// @Param   date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.ResolveRateResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 500 {object} map[string]string "Failed to resolve rate"
// @Security BearerAuth
// @Router /exchange-rates/resolve [get]
func (h *exchangeRateHandler) resolveExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	pair := pairFromQuery(c)
	date, err := parseRequiredDate(c, "date")
	if err != nil {
		respondError(c, logger, err, "Failed to resolve rate")
		return
	}

	rate, found, err := h.exchangeRateService.Resolve(c.Request.Context(), pair, date)
	if err != nil {
		respondError(c, logger.With(slog.String("pair", pair.String())), err, "Failed to resolve rate")
		return
	}

	resp := dto.ResolveRateResponse{Found: found}
	if found {
		r := dto.ToExchangeRateResponse(rate)
		resp.Rate = &r
	}
	c.JSON(http.StatusOK, resp)
}

// setExchangeRate godoc
// @Summary Set or correct an exchange rate
// @Description transaction_only returns the rate for inline use without storing it. all_on_date stores a manual rate and needs confirm=true when posted transactions already use the pair on that date.
// @Tags exchange-rates
// @Accept  json
// @Produce  json
// @Param   rate body dto.SetExchangeRateRequest true "Rate details"
// @Success 200 {object} dto.SetRateResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Confirmation required"
// @Failure 500 {object} map[string]string "Failed to set rate"
// @Security BearerAuth
// @Router /exchange-rates [put]
func (h *exchangeRateHandler) setExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SetExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetExchangeRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	pair := domain.NewCurrencyPair(req.FromCurrencyCode, req.ToCurrencyCode)
	logger = logger.With(slog.String("pair", pair.String()), slog.String("scope", string(req.Scope)))
	logger.Info("Received request to set exchange rate", slog.String("rate", req.Rate.String()))

	update, err := h.exchangeRateService.SetRate(c.Request.Context(), pair, req.Date, req.Rate, req.Scope, req.Confirm, actorID(c))
	if err != nil {
		respondError(c, logger, err, "Failed to set exchange rate")
		return
	}

	c.JSON(http.StatusOK, dto.ToSetRateResponse(*update))
}

// getRateUsage godoc
// @Summary Count transactions using a rate
// @Description Counts posted transactions in the source currency dated on the given date
// @Tags exchange-rates
// @Produce  json
// @Param   from query string true "Source currency code"
// @Param   to query string true "Target currency code"
// @Param   date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.RateUsageResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 500 {object} map[string]string "Failed to count rate usage"
// @Security BearerAuth
// @Router /exchange-rates/usage [get]
func (h *exchangeRateHandler) getRateUsage(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	pair := pairFromQuery(c)
	date, err := parseRequiredDate(c, "date")
	if err != nil {
		respondError(c, logger, err, "Failed to count rate usage")
		return
	}

	count, err := h.exchangeRateService.RateUsage(c.Request.Context(), pair, date)
	if err != nil {
		respondError(c, logger, err, "Failed to count rate usage")
		return
	}

	c.JSON(http.StatusOK, dto.RateUsageResponse{
		FromCurrencyCode: pair.From,
		ToCurrencyCode:   pair.To,
		Date:             date,
		Transactions:     count,
	})
}

// listExchangeRates godoc
// @Summary List stored exchange rates
// @Tags exchange-rates
// @Produce  json
// @Param   from query string false "Source currency code"
// @Param   to query string false "Target currency code"
// @Param   date query string false "Only rates effective on or before this date (YYYY-MM-DD)"
// @Param   page query int false "Page number" default(1)
// @Param   pageSize query int false "Page size" default(20)
// @Success 200 {object} dto.ListExchangeRatesResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 500 {object} map[string]string "Failed to list rates"
// @Security BearerAuth
// @Router /exchange-rates [get]
func (h *exchangeRateHandler) listExchangeRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListExchangeRatesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListExchangeRates", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	date, err := parseOptionalDate(c, "date")
	if err != nil {
		respondError(c, logger, err, "Failed to list exchange rates")
		return
	}

	var from, to *string
	if params.From != "" {
		f := strings.ToUpper(params.From)
		from = &f
	}
	if params.To != "" {
		t := strings.ToUpper(params.To)
		to = &t
	}

	rates, total, err := h.exchangeRateService.ListRates(c.Request.Context(), from, to, date, params.Page, params.PageSize)
	if err != nil {
		respondError(c, logger, err, "Failed to list exchange rates")
		return
	}

	page, pageSize := params.Page, params.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	resp := dto.ListExchangeRatesResponse{
		Rates:    make([]dto.ExchangeRateResponse, len(rates)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for i, r := range rates {
		resp.Rates[i] = dto.ToExchangeRateResponse(r)
	}
	c.JSON(http.StatusOK, resp)
}
