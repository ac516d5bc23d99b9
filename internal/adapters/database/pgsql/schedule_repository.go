package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
)

type scheduleRepository struct {
	db dbtx
}

var _ portsrepo.ScheduleMarkerRepository = (*scheduleRepository)(nil)

// LastProcessed returns the most recent processed date for the account and
// schedule kind, or nil when the schedule has never run.
func (r *scheduleRepository) LastProcessed(ctx context.Context, accountNumber string, kind portsrepo.ScheduleKind) (*time.Time, error) {
	query := `
		SELECT last_processed
		FROM fd_schedule_markers
		WHERE account_number = $1 AND kind = $2;
	`
	var last time.Time
	err := r.db.QueryRow(ctx, query, accountNumber, kind).Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s marker for %s: %w", kind, accountNumber, err)
	}
	return &last, nil
}

// MarkProcessed upserts the marker; the date only ever moves forward.
func (r *scheduleRepository) MarkProcessed(ctx context.Context, accountNumber string, kind portsrepo.ScheduleKind, day time.Time) error {
	query := `
		INSERT INTO fd_schedule_markers (account_number, kind, last_processed, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (account_number, kind)
		DO UPDATE SET last_processed = GREATEST(fd_schedule_markers.last_processed, EXCLUDED.last_processed), updated_at = NOW();
	`
	_, err := r.db.Exec(ctx, query, accountNumber, kind, domain.DateOnly(day))
	if err != nil {
		return fmt.Errorf("failed to mark %s processed for %s: %w", kind, accountNumber, err)
	}
	return nil
}
