package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fdlabs/fd_deposit_core/internal/apperrors"
	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
	"github.com/fdlabs/fd_deposit_core/internal/utils/pagination"
)

type accountRepository struct {
	db dbtx
}

var _ portsrepo.AccountRepositoryFacade = (*accountRepository)(nil)

const accountColumns = `
	account_id, account_number, iban, account_name, customer_id, product_code,
	status, principal_amount, interest_rate, custom_interest_rate, term_months,
	effective_date, maturity_date, closure_date, calculation_method,
	payout_frequency, tds_applicable, tds_rate,
	created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	err := row.Scan(
		&acc.AccountID,
		&acc.AccountNumber,
		&acc.IBAN,
		&acc.AccountName,
		&acc.CustomerID,
		&acc.ProductCode,
		&acc.Status,
		&acc.PrincipalAmount,
		&acc.InterestRate,
		&acc.CustomInterestRate,
		&acc.TermMonths,
		&acc.EffectiveDate,
		&acc.MaturityDate,
		&acc.ClosureDate,
		&acc.CalculationMethod,
		&acc.PayoutFrequency,
		&acc.TDSApplicable,
		&acc.TDSRate,
		&acc.CreatedAt,
		&acc.CreatedBy,
		&acc.LastUpdatedAt,
		&acc.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &acc, nil
}

// Save inserts a newly opened account.
func (r *accountRepository) Save(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO fd_accounts (
			account_id, account_number, iban, account_name, customer_id, product_code,
			status, principal_amount, interest_rate, custom_interest_rate, term_months,
			effective_date, maturity_date, closure_date, calculation_method,
			payout_frequency, tds_applicable, tds_rate,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err := r.db.Exec(ctx, query,
		account.AccountID,
		account.AccountNumber,
		account.IBAN,
		account.AccountName,
		account.CustomerID,
		account.ProductCode,
		account.Status,
		account.PrincipalAmount,
		account.InterestRate,
		account.CustomInterestRate,
		account.TermMonths,
		account.EffectiveDate,
		account.MaturityDate,
		account.ClosureDate,
		account.CalculationMethod,
		account.PayoutFrequency,
		account.TDSApplicable,
		account.TDSRate,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", account.AccountNumber, err)
	}
	return nil
}

// Update persists the mutable account fields.
func (r *accountRepository) Update(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE fd_accounts
		SET status = $2, principal_amount = $3, custom_interest_rate = $4,
		    closure_date = $5, last_updated_at = $6, last_updated_by = $7
		WHERE account_number = $1;
	`
	tag, err := r.db.Exec(ctx, query,
		account.AccountNumber,
		account.Status,
		account.PrincipalAmount,
		account.CustomInterestRate,
		account.ClosureDate,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.AccountNumber, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindByNumber retrieves an account by its business account number.
func (r *accountRepository) FindByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM fd_accounts WHERE account_number = $1;`
	return scanAccount(r.db.QueryRow(ctx, query, accountNumber))
}

// FindByIBAN retrieves an account by IBAN.
func (r *accountRepository) FindByIBAN(ctx context.Context, iban string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM fd_accounts WHERE iban = $1;`
	return scanAccount(r.db.QueryRow(ctx, query, iban))
}

// ListActive retrieves every ACTIVE account, oldest first so batch output is
// deterministic.
func (r *accountRepository) ListActive(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM fd_accounts WHERE status = $1 ORDER BY created_at, account_number;`
	rows, err := r.db.Query(ctx, query, domain.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	return accounts, rows.Err()
}

// ListByCustomer retrieves a page of a customer's accounts, newest first,
// keyed by (created_at, account_number).
func (r *accountRepository) ListByCustomer(ctx context.Context, customerID string, limit int, nextToken *string) ([]domain.Account, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + accountColumns + ` FROM fd_accounts WHERE customer_id = $1`
	args := []any{customerID}
	if nextToken != nil && *nextToken != "" {
		cursorAt, cursorID, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` AND (created_at, account_number) < ($2, $3)`
		args = append(args, cursorAt, cursorID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, account_number DESC LIMIT %d;`, limit+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list accounts for customer %s: %w", customerID, err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, nil, err
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var token *string
	if len(accounts) > limit {
		accounts = accounts[:limit]
		last := accounts[len(accounts)-1]
		t := pagination.EncodeCursor(last.CreatedAt, last.AccountNumber)
		token = &t
	}
	return accounts, token, nil
}
