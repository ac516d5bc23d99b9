package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
)

// dbtx is the query surface shared by *pgxpool.Pool and pgx.Tx, letting the
// same repository code run against the pool or inside a transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// newProvider binds all repositories to the given query surface.
func newProvider(db dbtx) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		Accounts:     &accountRepository{db: db},
		Transactions: &transactionRepository{db: db},
		Balances:     &balanceRepository{db: db},
		Schedules:    &scheduleRepository{db: db},
	}
}

// NewRepositoryProvider creates pool-backed repositories for read paths and
// single-statement writes.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return newProvider(pool)
}

// unitOfWork runs a function against transaction-bound repositories.
type unitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork creates the transactional executor for the engines.
func NewUnitOfWork(pool *pgxpool.Pool) portsrepo.UnitOfWork {
	return &unitOfWork{pool: pool}
}

var _ portsrepo.UnitOfWork = (*unitOfWork)(nil)

// WithinTx begins a transaction, hands transaction-bound repositories to fn,
// and commits when fn returns nil. Any error rolls everything back.
func (u *unitOfWork) WithinTx(ctx context.Context, fn func(r portsrepo.RepositoryProvider) error) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			_ = rbErr
		}
	}()

	if err := fn(newProvider(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
