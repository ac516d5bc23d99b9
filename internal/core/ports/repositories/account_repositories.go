package repositories

import (
	"context"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindByNumber retrieves an account by its business account number.
	FindByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// FindByIBAN retrieves an account by IBAN.
	FindByIBAN(ctx context.Context, iban string) (*domain.Account, error)

	// ListActive retrieves every account in ACTIVE status. Used by the
	// batch engines, which iterate per account.
	ListActive(ctx context.Context) ([]domain.Account, error)

	// ListByCustomer retrieves a paginated list of accounts for a customer
	// using token-based pagination.
	ListByCustomer(ctx context.Context, customerID string, limit int, nextToken *string) ([]domain.Account, *string, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// Save persists a newly opened account.
	Save(ctx context.Context, account domain.Account) error

	// Update persists mutable account fields (status, principal, closure
	// date, audit fields). History lives in the journal, not the account row.
	Update(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
