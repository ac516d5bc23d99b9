package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fdlabs/fd_deposit_core/internal/apperrors"
	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	"github.com/fdlabs/fd_deposit_core/internal/dto"
	"github.com/fdlabs/fd_deposit_core/internal/middleware"

	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
)

// interestHandler serves standalone interest projections that do not touch
// any stored account.
type interestHandler struct {
	interestService portssvc.InterestSvcFacade
}

// newInterestHandler creates a new interestHandler.
func newInterestHandler(is portssvc.InterestSvcFacade) *interestHandler {
	return &interestHandler{interestService: is}
}

// registerInterestRoutes registers the interest projection routes.
func registerInterestRoutes(rg *gin.RouterGroup, interestService portssvc.InterestSvcFacade) {
	h := newInterestHandler(interestService)

	rg.POST("/interest/calculations", h.calculate)
}

// calculate godoc
// @Summary Project interest for a hypothetical deposit
// @Tags interest
// @Accept  json
// @Produce  json
// @Param   calculation body dto.InterestCalculationRequest true "Projection inputs"
// @Success 200 {object} dto.InterestCalculationResponse
// @Failure 400 {object} map[string]string "Invalid inputs"
// @Security BearerAuth
// @Router /interest/calculations [post]
func (h *interestHandler) calculate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.InterestCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for interest calculation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	method := domain.InterestMethod(req.Method)
	resp := dto.InterestCalculationResponse{
		Principal:  req.Principal,
		AnnualRate: req.AnnualRate,
		TermMonths: req.TermMonths,
		Method:     req.Method,
	}

	var err error
	if resp.InterestAmount, err = h.interestService.InterestFor(method, req.Principal, req.AnnualRate, req.TermMonths); err == nil {
		if resp.MaturityAmount, err = h.interestService.MaturityAmount(method, req.Principal, req.AnnualRate, req.TermMonths); err == nil {
			if resp.MonthlyInterest, err = h.interestService.MonthlyInterest(method, req.Principal, req.AnnualRate, req.TermMonths); err == nil {
				resp.DailyInterest, err = h.interestService.DailyInterest(method, req.Principal, req.AnnualRate)
			}
		}
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInterestInput) {
			logger.Warn("Interest calculation rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to project interest", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to project interest"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
