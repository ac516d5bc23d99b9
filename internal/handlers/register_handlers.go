package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
	"github.com/fdlabs/fd_deposit_core/internal/middleware"
	"github.com/fdlabs/fd_deposit_core/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Health check route
	r.GET("/health", getHealth)

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerAccountRoutes(v1, services.Account, services.Ledger)
	registerJournalRoutes(v1, services.Journal)
	registerWithdrawalRoutes(v1, services.Withdrawal)
	registerRedemptionRoutes(v1, services.Redemption)
	registerBatchRoutes(v1, services.Accrual, services.Schedule, services.Maturity)
	registerInterestRoutes(v1, services.Interest)
}

// parseDateQuery reads an optional yyyy-mm-dd query parameter, defaulting to
// today. The boolean reports whether the value parsed cleanly.
func parseDateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return domain.DateOnly(time.Now()), true
	}
	parsed, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false
	}
	return domain.DateOnly(parsed), true
}
