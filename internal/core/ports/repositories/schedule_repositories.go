package repositories

import (
	"context"
	"time"
)

// ScheduleKind names a per-account scheduled process whose last run date is
// persisted as an idempotency marker.
type ScheduleKind string

const (
	ScheduleAccrual        ScheduleKind = "ACCRUAL"
	ScheduleCapitalization ScheduleKind = "CAPITALIZATION"
	SchedulePayout         ScheduleKind = "PAYOUT"
)

// ScheduleMarkerRepository persists the last processed date per account per
// schedule kind. Running a scheduler twice on the same calendar date must
// not double-credit; the marker is the guard.
type ScheduleMarkerRepository interface {
	// LastProcessed returns the most recent processed date for the account
	// and kind, or nil when the schedule has never run.
	LastProcessed(ctx context.Context, accountNumber string, kind ScheduleKind) (*time.Time, error)

	// MarkProcessed records that the schedule ran for the given calendar date.
	MarkProcessed(ctx context.Context, accountNumber string, kind ScheduleKind, day time.Time) error
}
