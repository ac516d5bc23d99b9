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

// journalHandler handles HTTP requests over the transaction journal.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: js}
}

// registerJournalRoutes registers routes related to journal entries.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	rg.POST("/accounts/:accountNumber/deposits", h.deposit)
	rg.GET("/accounts/:accountNumber/transactions", h.listTransactions)

	transactions := rg.Group("/transactions")
	{
		transactions.GET("/:reference", h.getTransaction)
		transactions.POST("/:reference/reverse", h.reverseTransaction)
	}
}

// deposit godoc
// @Summary Book an additional deposit
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Param   deposit body dto.DepositRequest true "Deposit details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account not active"
// @Security BearerAuth
// @Router /accounts/{accountNumber}/deposits [post]
func (h *journalHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountNumber := c.Param("accountNumber")

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Deposit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	performedBy, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.journalService.Deposit(c.Request.Context(), accountNumber, req, performedBy)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Account not found for deposit", slog.String("account_number", accountNumber))
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, services.ErrAmountNotPositive), errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error booking deposit", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrAccountNotActive):
			logger.Warn("Deposit into inactive account rejected", slog.String("account_number", accountNumber))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to book deposit", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to book deposit"})
		}
		return
	}

	logger.Info("Deposit booked", slog.String("reference", txn.Reference), slog.String("account_number", accountNumber))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List an account's journal entries
// @Tags transactions
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Continuation token"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{accountNumber}/transactions [get]
func (h *journalHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountNumber := c.Param("accountNumber")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.journalService.ListTransactions(c.Request.Context(), accountNumber, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found for transaction listing", slog.String("account_number", accountNumber))
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to list transactions", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getTransaction godoc
// @Summary Get a journal entry by reference
// @Tags transactions
// @Produce  json
// @Param   reference path string true "Transaction reference"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{reference} [get]
func (h *journalHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reference := c.Param("reference")

	txn, err := h.journalService.GetTransaction(c.Request.Context(), reference)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transaction not found", slog.String("reference", reference))
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else {
			logger.Error("Failed to get transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transaction"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// reverseTransaction godoc
// @Summary Reverse a journal entry
// @Description Books a compensating entry that restores the balances the original entry moved
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   reference path string true "Transaction reference"
// @Param   reversal body dto.ReverseTransactionRequest true "Reversal reason"
// @Success 201 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Already reversed or not reversible"
// @Security BearerAuth
// @Router /transactions/{reference}/reverse [post]
func (h *journalHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reference := c.Param("reference")

	var req dto.ReverseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReverseTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	performedBy, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reversal, err := h.journalService.Reverse(c.Request.Context(), reference, req.Reason, performedBy)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Transaction not found for reversal", slog.String("reference", reference))
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		case errors.Is(err, services.ErrAlreadyReversed),
			errors.Is(err, services.ErrNotReversible),
			errors.Is(err, apperrors.ErrConflict):
			logger.Warn("Reversal rejected", slog.String("reference", reference), slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to reverse transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reverse transaction"})
		}
		return
	}

	logger.Info("Transaction reversed", slog.String("reference", reference), slog.String("reversal_reference", reversal.Reference))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(reversal))
}
