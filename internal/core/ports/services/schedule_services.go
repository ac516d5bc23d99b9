package services

import (
	"context"
	"time"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	"github.com/fdlabs/fd_deposit_core/internal/dto"
)

// ScheduleSvcFacade settles accrued interest on its due dates. Compound
// accounts capitalize (interest folds into principal); simple accounts pay
// out (interest leaves the account, principal untouched). ON_MATURITY
// accounts are never due before maturity.
type ScheduleSvcFacade interface {
	// IsSettlementDue reports whether the account's payout frequency makes
	// the given calendar date a settlement date.
	IsSettlementDue(account *domain.Account, date time.Time) bool

	// Capitalize folds the account's accrued interest into principal as of
	// the given date. A non-positive accrued balance is a no-op.
	Capitalize(ctx context.Context, accountNumber string, date time.Time, performedBy string) (*dto.SettlementResult, error)

	// Payout credits the accrued interest out of the account as of the
	// given date. A non-positive accrued balance is a no-op.
	Payout(ctx context.Context, accountNumber string, date time.Time, performedBy string) (*dto.SettlementResult, error)

	// RunSettlementBatch settles every active account due on the date.
	// Already-settled accounts are skipped via the schedule markers, so the
	// run is safe to repeat.
	RunSettlementBatch(ctx context.Context, date time.Time) (*dto.BatchResult, error)
}

// AccrualSvcFacade posts the daily interest accrual.
type AccrualSvcFacade interface {
	// AccrueDaily books one day's interest for the account as of the date.
	// Returns apperrors.ErrDuplicate when the date was already accrued and
	// apperrors.ErrValidation when the account is not accruable.
	AccrueDaily(ctx context.Context, accountNumber string, date time.Time) (*domain.Transaction, error)

	// RunDailyAccrual accrues every active, unmatured account for the date
	// across a bounded worker pool.
	RunDailyAccrual(ctx context.Context, date time.Time) (*dto.BatchResult, error)
}
