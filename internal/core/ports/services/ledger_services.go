package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	"github.com/fdlabs/fd_deposit_core/internal/dto"
)

// LedgerReaderSvc defines balance lookup operations over the snapshot history.
type LedgerReaderSvc interface {
	// BalanceAsOf returns the balance of one kind as of a calendar date.
	// When no snapshot exists the PRINCIPAL kind falls back to the
	// account's stored principal and every other kind is zero.
	BalanceAsOf(ctx context.Context, accountNumber string, kind domain.BalanceKind, asOf time.Time) (decimal.Decimal, error)

	// CurrentBalances returns today's principal and accrued interest positions.
	CurrentBalances(ctx context.Context, accountNumber string) (domain.BalanceSet, error)

	// BalanceInquiry is the handler-facing balance view for a date.
	BalanceInquiry(ctx context.Context, accountNumber string, asOf time.Time) (*dto.BalanceResponse, error)
}

// LedgerSvcFacade combines the ledger service interfaces.
type LedgerSvcFacade interface {
	LedgerReaderSvc
}
