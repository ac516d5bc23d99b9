package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fdlabs/fd_deposit_core/internal/apperrors"
	"github.com/fdlabs/fd_deposit_core/internal/core/services"
	"github.com/fdlabs/fd_deposit_core/internal/dto"
	"github.com/fdlabs/fd_deposit_core/internal/middleware"

	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
)

// withdrawalHandler handles premature and partial withdrawal requests.
type withdrawalHandler struct {
	withdrawalService portssvc.WithdrawalSvcFacade
}

// newWithdrawalHandler creates a new withdrawalHandler.
func newWithdrawalHandler(ws portssvc.WithdrawalSvcFacade) *withdrawalHandler {
	return &withdrawalHandler{withdrawalService: ws}
}

// registerWithdrawalRoutes registers withdrawal routes under the account resource.
func registerWithdrawalRoutes(rg *gin.RouterGroup, withdrawalService portssvc.WithdrawalSvcFacade) {
	h := newWithdrawalHandler(withdrawalService)

	withdrawals := rg.Group("/accounts/:accountNumber/withdrawals")
	{
		withdrawals.GET("/premature/quote", h.quotePremature)
		withdrawals.POST("/premature", h.processPremature)
		withdrawals.POST("/partial", h.processPartial)
	}
}

func (h *withdrawalHandler) respondWithdrawalError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Account not found for withdrawal")
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
	case errors.Is(err, services.ErrAccountNotActive),
		errors.Is(err, services.ErrDepositMatured),
		errors.Is(err, services.ErrInvalidTransition):
		logger.Warn("Withdrawal rejected by account state", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPrematureNotAllowed),
		errors.Is(err, services.ErrPartialNotAllowed),
		errors.Is(err, services.ErrBelowMinBalance),
		errors.Is(err, services.ErrAmountNotPositive),
		errors.Is(err, apperrors.ErrInvalidInterestInput),
		errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Withdrawal rejected by validation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrCollaborator):
		logger.Error("Product catalog unavailable", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Product catalog unavailable"})
	default:
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// quotePremature godoc
// @Summary Preview a premature withdrawal
// @Description Computes the penalty-reduced payout without writing anything
// @Tags withdrawals
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Param   asOf query string false "Date (yyyy-mm-dd), defaults to today"
// @Success 200 {object} dto.PrematureWithdrawalQuote
// @Failure 400 {object} map[string]string "Premature withdrawal not allowed"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{accountNumber}/withdrawals/premature/quote [get]
func (h *withdrawalHandler) quotePremature(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountNumber := c.Param("accountNumber")

	asOf, ok := parseDateQuery(c, "asOf")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be a yyyy-mm-dd date"})
		return
	}

	quote, err := h.withdrawalService.QuotePremature(c.Request.Context(), accountNumber, asOf)
	if err != nil {
		h.respondWithdrawalError(c, logger.With(slog.String("account_number", accountNumber)), err, "quote premature withdrawal")
		return
	}

	c.JSON(http.StatusOK, quote)
}

// processPremature godoc
// @Summary Execute a premature withdrawal
// @Description Pays out principal plus penalty-reduced interest and closes the account
// @Tags withdrawals
// @Accept  json
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Param   withdrawal body dto.PrematureWithdrawalRequest true "Withdrawal confirmation"
// @Success 200 {object} dto.WithdrawalResult
// @Failure 400 {object} map[string]string "Premature withdrawal not allowed"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account not active or already matured"
// @Security BearerAuth
// @Router /accounts/{accountNumber}/withdrawals/premature [post]
func (h *withdrawalHandler) processPremature(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountNumber := c.Param("accountNumber")

	var req dto.PrematureWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for premature withdrawal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	performedBy, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.withdrawalService.ProcessPremature(c.Request.Context(), accountNumber, req, performedBy)
	if err != nil {
		h.respondWithdrawalError(c, logger.With(slog.String("account_number", accountNumber)), err, "process premature withdrawal")
		return
	}

	logger.Info("Premature withdrawal processed", slog.String("account_number", accountNumber), slog.String("reference", result.Reference))
	c.JSON(http.StatusOK, result)
}

// processPartial godoc
// @Summary Withdraw part of the principal
// @Description Withdraws principal while keeping the deposit active above the product minimum
// @Tags withdrawals
// @Accept  json
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Param   withdrawal body dto.PartialWithdrawalRequest true "Withdrawal details"
// @Success 200 {object} dto.WithdrawalResult
// @Failure 400 {object} map[string]string "Amount invalid or below minimum balance"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account not active or already matured"
// @Security BearerAuth
// @Router /accounts/{accountNumber}/withdrawals/partial [post]
func (h *withdrawalHandler) processPartial(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountNumber := c.Param("accountNumber")

	var req dto.PartialWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for partial withdrawal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	performedBy, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.withdrawalService.ProcessPartial(c.Request.Context(), accountNumber, req, performedBy)
	if err != nil {
		h.respondWithdrawalError(c, logger.With(slog.String("account_number", accountNumber)), err, "process partial withdrawal")
		return
	}

	logger.Info("Partial withdrawal processed", slog.String("account_number", accountNumber), slog.String("reference", result.Reference))
	c.JSON(http.StatusOK, result)
}
