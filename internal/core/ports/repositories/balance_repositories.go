package repositories

import (
	"context"
	"time"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
)

// BalanceReader defines read operations for balance snapshots.
type BalanceReader interface {
	// LatestAsOf retrieves the snapshot of the given kind with the latest
	// as-of date not after asOf; among same-date snapshots the most
	// recently recorded wins. Returns apperrors.ErrNotFound when no
	// snapshot qualifies.
	LatestAsOf(ctx context.Context, accountNumber string, kind domain.BalanceKind, asOf time.Time) (*domain.BalanceSnapshot, error)
}

// BalanceWriter appends snapshots. Snapshots are immutable; history is never
// rewritten.
type BalanceWriter interface {
	AppendSnapshot(ctx context.Context, snapshot domain.BalanceSnapshot) error
}

// BalanceRepositoryFacade combines the balance repository interfaces.
type BalanceRepositoryFacade interface {
	BalanceReader
	BalanceWriter
}
