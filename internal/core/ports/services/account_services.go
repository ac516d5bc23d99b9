package services

import (
	"context"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	"github.com/fdlabs/fd_deposit_core/internal/dto"
)

// AccountReaderSvc defines read operations for deposit accounts.
type AccountReaderSvc interface {
	// GetAccount retrieves an account by its business account number.
	GetAccount(ctx context.Context, accountNumber string) (*domain.Account, error)

	// GetAccountByIBAN retrieves an account by its IBAN.
	GetAccountByIBAN(ctx context.Context, iban string) (*domain.Account, error)

	// ListAccountsByCustomer retrieves a paginated list of a customer's accounts.
	ListAccountsByCustomer(ctx context.Context, customerID string, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error)
}

// AccountWriterSvc defines lifecycle operations for deposit accounts.
type AccountWriterSvc interface {
	// OpenAccount validates the request against the product terms, books the
	// initial deposit and returns the new account.
	OpenAccount(ctx context.Context, req dto.OpenAccountRequest, creatorUserID string) (*domain.Account, error)

	// SuspendAccount moves an active account to SUSPENDED.
	SuspendAccount(ctx context.Context, accountNumber string, userID string) error

	// ReactivateAccount moves a suspended account back to ACTIVE.
	ReactivateAccount(ctx context.Context, accountNumber string, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
