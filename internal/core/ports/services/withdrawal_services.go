package services

import (
	"context"
	"time"

	"github.com/fdlabs/fd_deposit_core/internal/dto"
)

// WithdrawalSvcFacade handles early exits from an active deposit.
type WithdrawalSvcFacade interface {
	// QuotePremature previews a full early closure as of the date without
	// writing anything.
	QuotePremature(ctx context.Context, accountNumber string, asOf time.Time) (*dto.PrematureWithdrawalQuote, error)

	// ProcessPremature commits a full early closure: interest at the
	// penalty-reduced rate, tax withheld, principal plus net interest paid
	// out, account closed.
	ProcessPremature(ctx context.Context, accountNumber string, req dto.PrematureWithdrawalRequest, performedBy string) (*dto.WithdrawalResult, error)

	// ProcessPartial withdraws part of the principal, keeping the account
	// active. The remaining principal must not fall below the product's
	// minimum balance.
	ProcessPartial(ctx context.Context, accountNumber string, req dto.PartialWithdrawalRequest, performedBy string) (*dto.WithdrawalResult, error)
}

// RedemptionSvcFacade handles redemption inquiry and execution at any point
// in the deposit lifecycle.
type RedemptionSvcFacade interface {
	// Inquire computes what a redemption would pay as of the date. The
	// inquiry is read-only and repeatable.
	Inquire(ctx context.Context, accountNumber string, asOf time.Time) (*dto.RedemptionInquiryResponse, error)

	// Process executes a FULL or PARTIAL redemption.
	Process(ctx context.Context, accountNumber string, req dto.RedemptionRequest, performedBy string) (*dto.RedemptionResult, error)
}

// MaturitySvcFacade closes out deposits that have reached their maturity date.
type MaturitySvcFacade interface {
	// ProcessMaturity pays out principal plus accrued interest and moves
	// the account to MATURED. Only active accounts at or past their
	// maturity date qualify.
	ProcessMaturity(ctx context.Context, accountNumber string, performedBy string) (*dto.MaturityResult, error)

	// RunMaturityBatch processes every active account whose maturity date
	// has been reached as of the given date.
	RunMaturityBatch(ctx context.Context, date time.Time) (*dto.BatchResult, error)
}
