package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_core/internal/dto"
	"github.com/SscSPs/bookkeeping_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles HTTP requests related to transactions and their settlement.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
	paymentService     portssvc.PaymentSvcFacade
	recalcService      portssvc.RecalculationSvc
	now                func() time.Time
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade, ps portssvc.PaymentSvcFacade, rs portssvc.RecalculationSvc) *transactionHandler {
	return &transactionHandler{
		transactionService: ts,
		paymentService:     ps,
		recalcService:      rs,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

// registerTransactionRoutes registers routes related to transactions.
func registerTransactionRoutes(rg *gin.RouterGroup, ts portssvc.TransactionSvcFacade, ps portssvc.PaymentSvcFacade, rs portssvc.RecalculationSvc) {
	h := newTransactionHandler(ts, ps, rs)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.createTransaction)
		transactions.GET("", h.listTransactions)
		transactions.GET("/:id", h.getTransaction)
		transactions.PUT("/:id", h.updateTransaction)
		transactions.DELETE("/:id", h.deleteTransaction)
		transactions.POST("/:id/cancel", h.cancelTransaction)
		transactions.GET("/:id/payments", h.getPaymentHistory)
		transactions.POST("/:id/recalculate", h.recalculateBalance)
	}
	rg.POST("/payments/:paymentID/applications", h.applyPayment)
	rg.POST("/maintenance/recalculate-open", h.recalculateAllOpen)
}

// createTransaction godoc
// @Summary Create and post a transaction
// @Description Validates, converts to the home currency and posts balanced ledger entries. Payment types may apply to targets in the same request.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Transaction"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Referenced account, tax or target not found"
// @Failure 409 {object} map[string]string "Over-application or concurrent modification"
// @Failure 422 {object} map[string]string "Exchange rate missing"
// @Failure 500 {object} map[string]string "Failed to create transaction"
// @Security BearerAuth
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("type", string(req.Type)), slog.String("currency_code", req.CurrencyCode))
	logger.Info("Received request to create transaction", slog.Int("line_items", len(req.LineItems)), slog.Int("applications", len(req.Applications)))

	detail, err := h.transactionService.CreateTransaction(c.Request.Context(), req, actorID(c))
	if err != nil {
		respondError(c, logger, err, "Failed to create transaction")
		return
	}

	logger.Info("Transaction created successfully", slog.String("transaction_id", detail.Transaction.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionDetailResponse(*detail, h.now()))
}

// getTransaction godoc
// @Summary Get a transaction
// @Description Retrieves a transaction with its line items and ledger entries
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve transaction"
// @Security BearerAuth
// @Router /transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("transaction_id", c.Param("id")))

	detail, err := h.transactionService.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionDetailResponse(*detail, h.now()))
}

// listTransactions godoc
// @Summary List transactions
// @Description Lists transactions newest first using a continuation token. status=overdue selects pending transactions past their due date.
// @Tags transactions
// @Produce  json
// @Param   type query string false "Transaction type"
// @Param   status query string false "Status (draft, pending, paid, overdue)"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Continuation token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	txns, nextToken, err := h.transactionService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}

	today := h.now()
	resp := dto.ListTransactionsResponse{
		Transactions: make([]dto.TransactionResponse, len(txns)),
		NextToken:    nextToken,
	}
	for i, t := range txns {
		resp.Transactions[i] = dto.ToTransactionResponse(t, today)
	}
	c.JSON(http.StatusOK, resp)
}

// updateTransaction godoc
// @Summary Update a transaction
// @Description Reverses the transaction's ledger entries and reposts it from the new fields. Payment applications are reversed when the amount or rate changes.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   transaction body dto.UpdateTransactionRequest true "Replacement fields"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Version conflict"
// @Failure 422 {object} map[string]string "Exchange rate missing"
// @Failure 500 {object} map[string]string "Failed to update transaction"
// @Security BearerAuth
// @Router /transactions/{id} [put]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	transactionID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("transaction_id", transactionID))

	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	detail, err := h.transactionService.UpdateTransaction(c.Request.Context(), transactionID, req, actorID(c))
	if err != nil {
		respondError(c, logger, err, "Failed to update transaction")
		return
	}

	logger.Info("Transaction updated successfully", slog.Int("version", detail.Transaction.Version))
	c.JSON(http.StatusOK, dto.ToTransactionDetailResponse(*detail, h.now()))
}

// deleteTransaction godoc
// @Summary Delete a transaction
// @Description Reverses its payment applications and ledger entries, then removes it
// @Tags transactions
// @Param   id path string true "Transaction ID"
// @Param   expectedVersion query int false "Reject the delete if the stored version differs"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid version"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Version conflict"
// @Failure 500 {object} map[string]string "Failed to delete transaction"
// @Security BearerAuth
// @Router /transactions/{id} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	transactionID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("transaction_id", transactionID))

	expectedVersion, err := expectedVersionFromQuery(c)
	if err != nil {
		respondError(c, logger, err, "Failed to delete transaction")
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), transactionID, expectedVersion, actorID(c)); err != nil {
		respondError(c, logger, err, "Failed to delete transaction")
		return
	}

	logger.Info("Transaction deleted successfully")
	c.Status(http.StatusNoContent)
}

// expectedVersionFromQuery reads the optional expectedVersion query parameter.
func expectedVersionFromQuery(c *gin.Context) (*int, error) {
	raw := c.Query("expectedVersion")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.NewFieldValidationError("expectedVersion", "must be an integer")
	}
	return &v, nil
}

// cancelTransaction godoc
// @Summary Cancel an invoice or bill
// @Description Reverses the ledger entries of a pending invoice or bill with no payments applied and marks it cancelled
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   expectedVersion query int false "Reject the cancel if the stored version differs"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Not cancellable"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Version conflict"
// @Failure 500 {object} map[string]string "Failed to cancel transaction"
// @Security BearerAuth
// @Router /transactions/{id}/cancel [post]
func (h *transactionHandler) cancelTransaction(c *gin.Context) {
	transactionID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("transaction_id", transactionID))

	expectedVersion, err := expectedVersionFromQuery(c)
	if err != nil {
		respondError(c, logger, err, "Failed to cancel transaction")
		return
	}

	detail, err := h.transactionService.CancelTransaction(c.Request.Context(), transactionID, expectedVersion, actorID(c))
	if err != nil {
		respondError(c, logger, err, "Failed to cancel transaction")
		return
	}

	logger.Info("Transaction cancelled successfully", slog.Int("version", detail.Transaction.Version))
	c.JSON(http.StatusOK, dto.ToTransactionDetailResponse(*detail, h.now()))
}

// applyPayment godoc
// @Summary Apply a payment
// @Description Applies part of a payment-type transaction to an invoice or bill
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   paymentID path string true "Payment transaction ID"
// @Param   application body dto.ApplyPaymentRequest true "Target and amount"
// @Success 201 {object} dto.PaymentApplicationResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Payment or target not found"
// @Failure 409 {object} map[string]string "Over-application or concurrent modification"
// @Failure 500 {object} map[string]string "Failed to apply payment"
// @Security BearerAuth
// @Router /payments/{paymentID}/applications [post]
func (h *transactionHandler) applyPayment(c *gin.Context) {
	paymentID := c.Param("paymentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("payment_id", paymentID))

	var req dto.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApplyPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	app, err := h.paymentService.ApplyPayment(c.Request.Context(), paymentID, req.TargetID, req.Amount, actorID(c))
	if err != nil {
		respondError(c, logger, err, "Failed to apply payment")
		return
	}

	logger.Info("Payment applied", slog.String("target_id", req.TargetID), slog.String("amount", req.Amount.StringFixed(2)))
	c.JSON(http.StatusCreated, dto.ToPaymentApplicationResponse(*app))
}

// getPaymentHistory godoc
// @Summary Payment history of an invoice or bill
// @Tags payments
// @Produce  json
// @Param   id path string true "Target transaction ID"
// @Param   includeReversed query bool false "Include reversed applications"
// @Success 200 {array} dto.PaymentHistoryItemResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to load payment history"
// @Security BearerAuth
// @Router /transactions/{id}/payments [get]
func (h *transactionHandler) getPaymentHistory(c *gin.Context) {
	targetID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("target_id", targetID))

	includeReversed, _ := strconv.ParseBool(c.DefaultQuery("includeReversed", "false"))
	items, err := h.paymentService.PaymentHistory(c.Request.Context(), targetID, includeReversed)
	if err != nil {
		respondError(c, logger, err, "Failed to load payment history")
		return
	}

	c.JSON(http.StatusOK, dto.ToPaymentHistoryResponse(items))
}

// recalculateBalance godoc
// @Summary Recalculate a transaction's balance
// @Description Re-derives balance and status from active payment applications
// @Tags payments
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.BalanceSummaryResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to recalculate balance"
// @Security BearerAuth
// @Router /transactions/{id}/recalculate [post]
func (h *transactionHandler) recalculateBalance(c *gin.Context) {
	transactionID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("transaction_id", transactionID))

	summary, err := h.recalcService.Recalculate(c.Request.Context(), transactionID, actorID(c))
	if err != nil {
		respondError(c, logger, err, "Failed to recalculate balance")
		return
	}

	c.JSON(http.StatusOK, dto.ToBalanceSummaryResponse(*summary))
}

// recalculateAllOpen godoc
// @Summary Recalculate every open invoice and bill
// @Tags payments
// @Produce  json
// @Success 200 {array} dto.BalanceSummaryResponse
// @Failure 500 {object} map[string]string "Failed to recalculate balances"
// @Security BearerAuth
// @Router /maintenance/recalculate-open [post]
func (h *transactionHandler) recalculateAllOpen(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	summaries, err := h.recalcService.RecalculateAllOpen(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, logger, err, "Failed to recalculate balances")
		return
	}

	resp := make([]dto.BalanceSummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = dto.ToBalanceSummaryResponse(s)
	}
	logger.Info("Open balances recalculated", slog.Int("count", len(resp)))
	c.JSON(http.StatusOK, resp)
}
