package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fdlabs/fd_deposit_core/internal/apperrors"
	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
	"github.com/fdlabs/fd_deposit_core/internal/utils/pagination"
)

type transactionRepository struct {
	db dbtx
}

var _ portsrepo.TransactionRepositoryFacade = (*transactionRepository)(nil)

const transactionColumns = `
	transaction_id, reference, account_number, type, amount,
	principal_before, principal_after, interest_before, interest_after,
	total_before, total_after, transaction_date, value_date, description,
	performed_by, status, is_reversed, reversal_reference, related_reference,
	reversal_reason, reversed_at, created_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := row.Scan(
		&txn.TransactionID,
		&txn.Reference,
		&txn.AccountNumber,
		&txn.Type,
		&txn.Amount,
		&txn.PrincipalBefore,
		&txn.PrincipalAfter,
		&txn.InterestBefore,
		&txn.InterestAfter,
		&txn.TotalBefore,
		&txn.TotalAfter,
		&txn.TransactionDate,
		&txn.ValueDate,
		&txn.Description,
		&txn.PerformedBy,
		&txn.Status,
		&txn.IsReversed,
		&txn.ReversalReference,
		&txn.RelatedReference,
		&txn.ReversalReason,
		&txn.ReversedAt,
		&txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return &txn, nil
}

// Append inserts a journal entry. Entries are immutable once written.
func (r *transactionRepository) Append(ctx context.Context, txn domain.Transaction) error {
	query := `
		INSERT INTO fd_transactions (
			transaction_id, reference, account_number, type, amount,
			principal_before, principal_after, interest_before, interest_after,
			total_before, total_after, transaction_date, value_date, description,
			performed_by, status, is_reversed, reversal_reference, related_reference,
			reversal_reason, reversed_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err := r.db.Exec(ctx, query,
		txn.TransactionID,
		txn.Reference,
		txn.AccountNumber,
		txn.Type,
		txn.Amount,
		txn.PrincipalBefore,
		txn.PrincipalAfter,
		txn.InterestBefore,
		txn.InterestAfter,
		txn.TotalBefore,
		txn.TotalAfter,
		txn.TransactionDate,
		txn.ValueDate,
		txn.Description,
		txn.PerformedBy,
		txn.Status,
		txn.IsReversed,
		txn.ReversalReference,
		txn.RelatedReference,
		txn.ReversalReason,
		txn.ReversedAt,
		txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction %s: %w", txn.Reference, err)
	}
	return nil
}

// MarkReversed sets the reversal linkage on the original entry. The only
// mutation the journal permits.
func (r *transactionRepository) MarkReversed(ctx context.Context, reference string, reversalReference string, reason string, reversedAt time.Time) error {
	query := `
		UPDATE fd_transactions
		SET is_reversed = TRUE, reversal_reference = $2, reversal_reason = $3, reversed_at = $4
		WHERE reference = $1 AND is_reversed = FALSE;
	`
	tag, err := r.db.Exec(ctx, query, reference, reversalReference, reason, reversedAt)
	if err != nil {
		return fmt.Errorf("failed to mark transaction %s reversed: %w", reference, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s missing or already reversed", apperrors.ErrConflict, reference)
	}
	return nil
}

// FindByReference retrieves a journal entry by its business reference.
func (r *transactionRepository) FindByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM fd_transactions WHERE reference = $1;`
	return scanTransaction(r.db.QueryRow(ctx, query, reference))
}

// ListByAccount retrieves a page of an account's journal, newest first,
// keyed by (created_at, transaction_id).
func (r *transactionRepository) ListByAccount(ctx context.Context, accountNumber string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + transactionColumns + ` FROM fd_transactions WHERE account_number = $1`
	args := []any{accountNumber}
	if nextToken != nil && *nextToken != "" {
		cursorAt, cursorID, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` AND (created_at, transaction_id) < ($2, $3)`
		args = append(args, cursorAt, cursorID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, transaction_id DESC LIMIT %d;`, limit+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transactions for %s: %w", accountNumber, err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, err
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var token *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		t := pagination.EncodeCursor(last.CreatedAt, last.TransactionID)
		token = &t
	}
	return txns, token, nil
}

// SumAmountByType sums the non-reversed amounts of a type for an account.
func (r *transactionRepository) SumAmountByType(ctx context.Context, accountNumber string, txType domain.TransactionType) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM fd_transactions
		WHERE account_number = $1 AND type = $2 AND is_reversed = FALSE;
	`
	var sum decimal.Decimal
	if err := r.db.QueryRow(ctx, query, accountNumber, txType).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s amounts for %s: %w", txType, accountNumber, err)
	}
	return sum, nil
}

// ExistsOnDate reports whether a non-reversed entry of the type has the
// given value date.
func (r *transactionRepository) ExistsOnDate(ctx context.Context, accountNumber string, txType domain.TransactionType, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM fd_transactions
			WHERE account_number = $1 AND type = $2 AND value_date = $3 AND is_reversed = FALSE
		);
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, accountNumber, txType, domain.DateOnly(date)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s on %s: %w", txType, date.Format(time.DateOnly), err)
	}
	return exists, nil
}
