package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/bookkeeping_core/internal/apperrors"
	"github.com/SscSPs/bookkeeping_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// respondError maps a service error to its HTTP status. fallback is the message shown
// for unexpected errors, whose details are only logged.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var (
		rateMissing *apperrors.ExchangeRateMissingError
		unbalanced  *apperrors.UnbalancedError
		overApplied *apperrors.OverApplicationError
		appErr      *apperrors.AppError
	)

	switch {
	case errors.As(err, &rateMissing):
		logger.Warn("Exchange rate missing", slog.String("pair", rateMissing.From+"/"+rateMissing.To), slog.Time("date", rateMissing.Date))
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":            err.Error(),
			"code":             "exchange_rate_missing",
			"fromCurrencyCode": rateMissing.From,
			"toCurrencyCode":   rateMissing.To,
			"date":             rateMissing.Date.Format(dateLayout),
		})
	case errors.As(err, &overApplied):
		logger.Warn("Payment over-application rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{
			"error":     err.Error(),
			"code":      "over_application",
			"remaining": overApplied.Remaining,
		})
	case errors.Is(err, apperrors.ErrConfirmationRequired):
		logger.Warn("Confirmation required", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "confirmation_required"})
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Concurrent modification", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "conflict"})
	case errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Duplicate resource", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "duplicate"})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &unbalanced):
		// A posting that survives remainder correction unbalanced is a bug, not bad input.
		logger.Error("Unbalanced posting", slog.String("error", err.Error()), slog.String("drift", unbalanced.Drift().String()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback, "code": "unbalanced"})
	case errors.As(err, &appErr):
		logger.Error(appErr.Message, slog.String("error", err.Error()))
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// parseOptionalDate parses a YYYY-MM-DD query parameter; a missing parameter is nil.
func parseOptionalDate(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, apperrors.NewFieldValidationError(name, "invalid date format, use YYYY-MM-DD")
	}
	return &d, nil
}

// parseRequiredDate parses a mandatory YYYY-MM-DD query parameter.
func parseRequiredDate(c *gin.Context, name string) (time.Time, error) {
	d, err := parseOptionalDate(c, name)
	if err != nil {
		return time.Time{}, err
	}
	if d == nil {
		return time.Time{}, apperrors.NewFieldValidationError(name, "is required")
	}
	return *d, nil
}

// actorID returns the acting user, or empty when requests run as the system actor.
func actorID(c *gin.Context) string {
	userID, _ := middleware.GetUserIDFromContext(c)
	return userID
}
