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

// redemptionHandler handles redemption inquiry and execution requests.
type redemptionHandler struct {
	redemptionService portssvc.RedemptionSvcFacade
}

// newRedemptionHandler creates a new redemptionHandler.
func newRedemptionHandler(rs portssvc.RedemptionSvcFacade) *redemptionHandler {
	return &redemptionHandler{redemptionService: rs}
}

// registerRedemptionRoutes registers redemption routes under the account resource.
func registerRedemptionRoutes(rg *gin.RouterGroup, redemptionService portssvc.RedemptionSvcFacade) {
	h := newRedemptionHandler(redemptionService)

	redemptions := rg.Group("/accounts/:accountNumber/redemptions")
	{
		redemptions.GET("/inquiry", h.inquire)
		redemptions.POST("", h.process)
	}
}

// inquire godoc
// @Summary Redemption inquiry
// @Description Computes what a redemption would pay as of a date; read-only and repeatable
// @Tags redemptions
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Param   asOf query string false "Date (yyyy-mm-dd), defaults to today"
// @Success 200 {object} dto.RedemptionInquiryResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account already closed"
// @Security BearerAuth
// @Router /accounts/{accountNumber}/redemptions/inquiry [get]
func (h *redemptionHandler) inquire(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountNumber := c.Param("accountNumber")

	asOf, ok := parseDateQuery(c, "asOf")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be a yyyy-mm-dd date"})
		return
	}

	inquiry, err := h.redemptionService.Inquire(c.Request.Context(), accountNumber, asOf)
	if err != nil {
		h.respondRedemptionError(c, logger.With(slog.String("account_number", accountNumber)), err, "compute redemption inquiry")
		return
	}

	c.JSON(http.StatusOK, inquiry)
}

// process godoc
// @Summary Execute a redemption
// @Description Executes a FULL or PARTIAL redemption of the deposit
// @Tags redemptions
// @Accept  json
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Param   redemption body dto.RedemptionRequest true "Redemption details"
// @Success 200 {object} dto.RedemptionResult
// @Failure 400 {object} map[string]string "Invalid mode or amount"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account already closed"
// @Security BearerAuth
// @Router /accounts/{accountNumber}/redemptions [post]
func (h *redemptionHandler) process(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountNumber := c.Param("accountNumber")

	var req dto.RedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for redemption", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	performedBy, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.redemptionService.Process(c.Request.Context(), accountNumber, req, performedBy)
	if err != nil {
		h.respondRedemptionError(c, logger.With(slog.String("account_number", accountNumber)), err, "process redemption")
		return
	}

	logger.Info("Redemption processed", slog.String("account_number", accountNumber), slog.String("mode", result.Mode), slog.String("reference", result.Reference))
	c.JSON(http.StatusOK, result)
}

func (h *redemptionHandler) respondRedemptionError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Account not found for redemption")
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
	case errors.Is(err, services.ErrAccountClosed),
		errors.Is(err, services.ErrInvalidTransition):
		logger.Warn("Redemption rejected by account state", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnknownRedemptionMode),
		errors.Is(err, services.ErrRedemptionAmount),
		errors.Is(err, services.ErrRemainingTooSmall),
		errors.Is(err, services.ErrNothingToRedeem),
		errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Redemption rejected by validation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}
