package repositories

import (
	"context"
	"time"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations for journal entries.
type TransactionReader interface {
	// FindByReference retrieves a transaction by its business reference.
	FindByReference(ctx context.Context, reference string) (*domain.Transaction, error)

	// ListByAccount retrieves a paginated list of transactions for an
	// account, newest first, using token-based pagination.
	ListByAccount(ctx context.Context, accountNumber string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// SumAmountByType returns the sum of non-reversed transaction amounts
	// of the given type for an account. Zero when none exist.
	SumAmountByType(ctx context.Context, accountNumber string, txType domain.TransactionType) (decimal.Decimal, error)

	// ExistsOnDate reports whether a non-reversed transaction of the given
	// type was recorded for the account on the given calendar date.
	ExistsOnDate(ctx context.Context, accountNumber string, txType domain.TransactionType, date time.Time) (bool, error)
}

// TransactionWriter defines append and reversal-linkage operations.
// Journal entries are never updated or deleted apart from the reversal
// linkage set on the original when it is reversed.
type TransactionWriter interface {
	// Append persists a new journal entry.
	Append(ctx context.Context, tx domain.Transaction) error

	// MarkReversed flags the original entry and links it to its
	// compensating REVERSAL entry.
	MarkReversed(ctx context.Context, reference string, reversalReference string, reason string, reversedAt time.Time) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
