package handlers

import (
	"context"
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

// accountHandler handles HTTP requests related to deposit accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	ledgerService  portssvc.LedgerSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade, ls portssvc.LedgerSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
		ledgerService:  ls,
	}
}

// registerAccountRoutes registers routes related to deposit accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, ledgerService portssvc.LedgerSvcFacade) {
	h := newAccountHandler(accountService, ledgerService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.openAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountNumber", h.getAccount)
		accounts.POST("/:accountNumber/suspend", h.suspendAccount)
		accounts.POST("/:accountNumber/reactivate", h.reactivateAccount)
		accounts.GET("/:accountNumber/balance", h.getBalance)
	}
	rg.GET("/ibans/:iban", h.getAccountByIBAN)
}

// openAccount godoc
// @Summary Open a new fixed deposit account
// @Description Validates the request against the product terms, books the initial deposit and returns the new account
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.OpenAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Product catalog unavailable"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) openAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for OpenAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to open account", slog.String("product_code", req.ProductCode), slog.String("customer_id", req.CustomerID))

	account, err := h.accountService.OpenAccount(c.Request.Context(), req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownProduct),
			errors.Is(err, services.ErrUnknownCustomer),
			errors.Is(err, services.ErrAmountOutOfRange),
			errors.Is(err, services.ErrTermOutOfRange),
			errors.Is(err, services.ErrInvalidMethod),
			errors.Is(err, services.ErrInvalidFrequency),
			errors.Is(err, services.ErrEffectiveDateFuture),
			errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error opening account", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrCollaborator):
			logger.Error("Product catalog unavailable", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Product catalog unavailable"})
		default:
			logger.Error("Failed to open account in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open account"})
		}
		return
	}

	logger.Info("Account opened successfully", slog.String("account_number", account.AccountNumber))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account by account number
// @Tags accounts
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{accountNumber} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountNumber := c.Param("accountNumber")

	account, err := h.accountService.GetAccount(c.Request.Context(), accountNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found", slog.String("account_number", accountNumber))
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to get account from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getAccountByIBAN godoc
// @Summary Get an account by IBAN
// @Tags accounts
// @Produce  json
// @Param   iban path string true "IBAN"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /ibans/{iban} [get]
func (h *accountHandler) getAccountByIBAN(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	iban := c.Param("iban")

	account, err := h.accountService.GetAccountByIBAN(c.Request.Context(), iban)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found for IBAN")
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to get account by IBAN from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List a customer's deposit accounts
// @Tags accounts
// @Produce  json
// @Param   customerID query string true "Customer ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Continuation token"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 400 {object} map[string]string "Missing customer ID"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	customerID := c.Query("customerID")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customerID query parameter is required"})
		return
	}

	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListAccounts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.accountService.ListAccountsByCustomer(c.Request.Context(), customerID, params)
	if err != nil {
		logger.Error("Failed to list accounts from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// suspendAccount godoc
// @Summary Suspend an active account
// @Tags accounts
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Security BearerAuth
// @Router /accounts/{accountNumber}/suspend [post]
func (h *accountHandler) suspendAccount(c *gin.Context) {
	h.transitionAccount(c, h.accountService.SuspendAccount)
}

// reactivateAccount godoc
// @Summary Reactivate a suspended account
// @Tags accounts
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Security BearerAuth
// @Router /accounts/{accountNumber}/reactivate [post]
func (h *accountHandler) reactivateAccount(c *gin.Context) {
	h.transitionAccount(c, h.accountService.ReactivateAccount)
}

func (h *accountHandler) transitionAccount(c *gin.Context, transition func(ctx context.Context, accountNumber, userID string) error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountNumber := c.Param("accountNumber")

	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := transition(c.Request.Context(), accountNumber, userID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Account not found for status change", slog.String("account_number", accountNumber))
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, services.ErrInvalidTransition):
			logger.Warn("Status transition not allowed", slog.String("account_number", accountNumber), slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to change account status", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change account status"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// getBalance godoc
// @Summary Balance inquiry
// @Description Returns principal, accrued interest and total as of a date
// @Tags accounts
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Param   asOf query string false "Date (yyyy-mm-dd), defaults to today"
// @Success 200 {object} dto.BalanceResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{accountNumber}/balance [get]
func (h *accountHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountNumber := c.Param("accountNumber")

	asOf, ok := parseDateQuery(c, "asOf")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be a yyyy-mm-dd date"})
		return
	}

	balance, err := h.ledgerService.BalanceInquiry(c.Request.Context(), accountNumber, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found for balance inquiry", slog.String("account_number", accountNumber))
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed balance inquiry", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balance"})
		}
		return
	}

	c.JSON(http.StatusOK, balance)
}
