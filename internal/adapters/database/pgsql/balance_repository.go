package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fdlabs/fd_deposit_core/internal/apperrors"
	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
)

type balanceRepository struct {
	db dbtx
}

var _ portsrepo.BalanceRepositoryFacade = (*balanceRepository)(nil)

// AppendSnapshot inserts an immutable balance snapshot.
func (r *balanceRepository) AppendSnapshot(ctx context.Context, snapshot domain.BalanceSnapshot) error {
	query := `
		INSERT INTO fd_balance_snapshots (
			snapshot_id, account_number, kind, balance, as_of_date, description, recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db.Exec(ctx, query,
		snapshot.SnapshotID,
		snapshot.AccountNumber,
		snapshot.Kind,
		snapshot.Balance,
		snapshot.AsOfDate,
		snapshot.Description,
		snapshot.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append %s snapshot for %s: %w", snapshot.Kind, snapshot.AccountNumber, err)
	}
	return nil
}

// LatestAsOf retrieves the snapshot with the latest as-of date not after
// asOf; ties on the date resolve to the most recently recorded.
func (r *balanceRepository) LatestAsOf(ctx context.Context, accountNumber string, kind domain.BalanceKind, asOf time.Time) (*domain.BalanceSnapshot, error) {
	query := `
		SELECT snapshot_id, account_number, kind, balance, as_of_date, description, recorded_at
		FROM fd_balance_snapshots
		WHERE account_number = $1 AND kind = $2 AND as_of_date <= $3
		ORDER BY as_of_date DESC, recorded_at DESC
		LIMIT 1;
	`
	var snap domain.BalanceSnapshot
	err := r.db.QueryRow(ctx, query, accountNumber, kind, domain.DateOnly(asOf)).Scan(
		&snap.SnapshotID,
		&snap.AccountNumber,
		&snap.Kind,
		&snap.Balance,
		&snap.AsOfDate,
		&snap.Description,
		&snap.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s snapshot for %s: %w", kind, accountNumber, err)
	}
	return &snap, nil
}
