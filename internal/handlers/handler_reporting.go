package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_core/internal/dto"
	"github.com/SscSPs/bookkeeping_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to ledger reports
type reportingHandler struct {
	ledgerService portssvc.LedgerReaderSvc
}

func newReportingHandler(ls portssvc.LedgerReaderSvc) *reportingHandler {
	return &reportingHandler{
		ledgerService: ls,
	}
}

// registerReportingRoutes registers routes related to reports
func registerReportingRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerReaderSvc) {
	h := newReportingHandler(ledgerService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
	}
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Totals home-currency debits and credits per account, optionally up to a date
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD)"
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, err := parseOptionalDate(c, "asOf")
	if err != nil {
		respondError(c, logger, err, "Failed to generate trial balance")
		return
	}

	report, err := h.ledgerService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate trial balance")
		return
	}

	if !report.TotalDebits.Equal(report.TotalCredits) {
		logger.Error("Trial balance does not balance",
			slog.String("debits", report.TotalDebits.String()),
			slog.String("credits", report.TotalCredits.String()))
	}
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(*report))
}
