package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fdlabs/fd_deposit_core/internal/apperrors"
	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	"github.com/fdlabs/fd_deposit_core/internal/core/services"
	"github.com/fdlabs/fd_deposit_core/internal/dto"
	"github.com/fdlabs/fd_deposit_core/internal/middleware"

	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
)

// batchHandler exposes the scheduled processing entry points: daily accrual,
// periodic settlement and maturity processing. The batch routes are also how
// an external scheduler drives the system.
type batchHandler struct {
	accrualService  portssvc.AccrualSvcFacade
	scheduleService portssvc.ScheduleSvcFacade
	maturityService portssvc.MaturitySvcFacade
}

// newBatchHandler creates a new batchHandler.
func newBatchHandler(as portssvc.AccrualSvcFacade, ss portssvc.ScheduleSvcFacade, ms portssvc.MaturitySvcFacade) *batchHandler {
	return &batchHandler{
		accrualService:  as,
		scheduleService: ss,
		maturityService: ms,
	}
}

// registerBatchRoutes registers the batch processing routes.
func registerBatchRoutes(rg *gin.RouterGroup, accrualService portssvc.AccrualSvcFacade, scheduleService portssvc.ScheduleSvcFacade, maturityService portssvc.MaturitySvcFacade) {
	h := newBatchHandler(accrualService, scheduleService, maturityService)

	batch := rg.Group("/batch")
	{
		batch.POST("/accruals", h.runAccrual)
		batch.POST("/settlements", h.runSettlement)
		batch.POST("/maturities", h.runMaturity)
	}
	rg.POST("/accounts/:accountNumber/maturity", h.processMaturity)
}

func (h *batchHandler) bindRunDate(c *gin.Context) (time.Time, bool) {
	var req dto.BatchRunRequest
	// An empty body means "run for today".
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return time.Time{}, false
	}
	if req.Date != nil {
		return domain.DateOnly(*req.Date), true
	}
	return domain.DateOnly(time.Now()), true
}

// runAccrual godoc
// @Summary Run the daily interest accrual
// @Description Books one day's interest on every active account; already accrued accounts are skipped
// @Tags batch
// @Accept  json
// @Produce  json
// @Param   run body dto.BatchRunRequest false "Run date, defaults to today"
// @Success 200 {object} dto.BatchResult
// @Security BearerAuth
// @Router /batch/accruals [post]
func (h *batchHandler) runAccrual(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	date, ok := h.bindRunDate(c)
	if !ok {
		return
	}

	logger.Info("Accrual batch requested", slog.Time("run_date", date))
	result, err := h.accrualService.RunDailyAccrual(c.Request.Context(), date)
	if err != nil {
		logger.Error("Accrual batch failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run accrual batch"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// runSettlement godoc
// @Summary Run the periodic interest settlement
// @Description Capitalizes or pays out accrued interest on every account due on the date
// @Tags batch
// @Accept  json
// @Produce  json
// @Param   run body dto.BatchRunRequest false "Run date, defaults to today"
// @Success 200 {object} dto.BatchResult
// @Security BearerAuth
// @Router /batch/settlements [post]
func (h *batchHandler) runSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	date, ok := h.bindRunDate(c)
	if !ok {
		return
	}

	logger.Info("Settlement batch requested", slog.Time("run_date", date))
	result, err := h.scheduleService.RunSettlementBatch(c.Request.Context(), date)
	if err != nil {
		logger.Error("Settlement batch failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run settlement batch"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// runMaturity godoc
// @Summary Run maturity processing
// @Description Closes out every active account whose maturity date has been reached
// @Tags batch
// @Accept  json
// @Produce  json
// @Param   run body dto.BatchRunRequest false "Run date, defaults to today"
// @Success 200 {object} dto.BatchResult
// @Security BearerAuth
// @Router /batch/maturities [post]
func (h *batchHandler) runMaturity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	date, ok := h.bindRunDate(c)
	if !ok {
		return
	}

	logger.Info("Maturity batch requested", slog.Time("run_date", date))
	result, err := h.maturityService.RunMaturityBatch(c.Request.Context(), date)
	if err != nil {
		logger.Error("Maturity batch failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run maturity batch"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// processMaturity godoc
// @Summary Process maturity for one account
// @Description Pays out principal plus accrued interest and moves the account to MATURED
// @Tags batch
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Success 200 {object} dto.MaturityResult
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account not active or not yet matured"
// @Security BearerAuth
// @Router /accounts/{accountNumber}/maturity [post]
func (h *batchHandler) processMaturity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountNumber := c.Param("accountNumber")

	performedBy, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.maturityService.ProcessMaturity(c.Request.Context(), accountNumber, performedBy)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Account not found for maturity processing", slog.String("account_number", accountNumber))
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, services.ErrNotMatured),
			errors.Is(err, services.ErrAccountNotActive),
			errors.Is(err, services.ErrInvalidTransition):
			logger.Warn("Maturity processing rejected", slog.String("account_number", accountNumber), slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to process maturity", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process maturity"})
		}
		return
	}

	logger.Info("Maturity processed", slog.String("account_number", accountNumber), slog.String("reference", result.Reference))
	c.JSON(http.StatusOK, result)
}
