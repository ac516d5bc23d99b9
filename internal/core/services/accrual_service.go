package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fdlabs/fd_deposit_core/internal/apperrors"
	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
	"github.com/fdlabs/fd_deposit_core/internal/dto"
)

var (
	ErrNotAccruable    = errors.New("account is not eligible for accrual")
	ErrNothingToAccrue = errors.New("no interest to accrue")
)

// accrualService posts one INTEREST_ACCRUAL entry per account per calendar
// day, at the exact day-count rate on the principal balance.
type accrualService struct {
	BaseService
	repos    portsrepo.RepositoryProvider
	uow      portsrepo.UnitOfWork
	locker   portsrepo.AccountLocker
	journal  portssvc.JournalEntrySvc
	interest portssvc.InterestSvcFacade
	events   portssvc.EventSink
	workers  int
}

// NewAccrualService creates a new AccrualService. workers bounds the batch
// fan-out; values below 1 run the batch sequentially.
func NewAccrualService(
	repos portsrepo.RepositoryProvider,
	uow portsrepo.UnitOfWork,
	locker portsrepo.AccountLocker,
	journal portssvc.JournalEntrySvc,
	interest portssvc.InterestSvcFacade,
	events portssvc.EventSink,
	workers int,
) portssvc.AccrualSvcFacade {
	if workers < 1 {
		workers = 1
	}
	return &accrualService{
		repos:    repos,
		uow:      uow,
		locker:   locker,
		journal:  journal,
		interest: interest,
		events:   events,
		workers:  workers,
	}
}

var _ portssvc.AccrualSvcFacade = (*accrualService)(nil)

// AccrueDaily books one day's interest for the account as of the date.
func (s *accrualService) AccrueDaily(ctx context.Context, accountNumber string, date time.Time) (*domain.Transaction, error) {
	day := domain.DateOnly(date)

	release, err := s.locker.Acquire(ctx, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", accountNumber, err)
	}
	defer release()

	var entry *domain.Transaction
	err = s.uow.WithinTx(ctx, func(r portsrepo.RepositoryProvider) error {
		account, err := r.Accounts.FindByNumber(ctx, accountNumber)
		if err != nil {
			return fmt.Errorf("failed to load account %s: %w", accountNumber, err)
		}
		if !account.IsActive() {
			return fmt.Errorf("%w: status is %s", ErrNotAccruable, account.Status)
		}
		if account.IsMaturedAsOf(day) {
			return fmt.Errorf("%w: matured on %s", ErrNotAccruable, account.MaturityDate.Format(time.DateOnly))
		}

		last, err := r.Schedules.LastProcessed(ctx, accountNumber, portsrepo.ScheduleAccrual)
		if err != nil {
			return fmt.Errorf("failed to read accrual marker: %w", err)
		}
		if last != nil && !last.Before(day) {
			return fmt.Errorf("%w: already accrued for %s", apperrors.ErrDuplicate, day.Format(time.DateOnly))
		}
		// Marker and journal can disagree after a restore; the journal wins.
		exists, err := r.Transactions.ExistsOnDate(ctx, accountNumber, domain.TxnInterestAccrual, day)
		if err != nil {
			return fmt.Errorf("failed to check existing accrual: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: already accrued for %s", apperrors.ErrDuplicate, day.Format(time.DateOnly))
		}

		positions, err := loadPositions(ctx, r, account, day)
		if err != nil {
			return err
		}
		amount, err := s.interest.InterestForPeriod(positions.Principal, account.EffectiveRate(), 1)
		if err != nil {
			return fmt.Errorf("failed to compute daily accrual: %w", err)
		}
		if amount.LessThanOrEqual(decimal.Zero) {
			return ErrNothingToAccrue
		}

		entry, err = s.journal.AppendEntry(ctx, r, portssvc.EntrySpec{
			AccountNumber: accountNumber,
			Type:          domain.TxnInterestAccrual,
			Amount:        amount,
			ValueDate:     day,
			Description:   fmt.Sprintf("Daily interest accrual for %s", day.Format(time.DateOnly)),
			PerformedBy:   "system",
		})
		if err != nil {
			return err
		}
		return r.Schedules.MarkProcessed(ctx, accountNumber, portsrepo.ScheduleAccrual, day)
	})
	if err != nil {
		return nil, err
	}

	s.publishAccrualEvent(ctx, entry)
	return entry, nil
}

// RunDailyAccrual accrues every active, unmatured account for the date
// across a bounded worker pool. Per-account failures are counted, logged
// and skipped; the run itself only fails when the account list cannot be
// loaded.
func (s *accrualService) RunDailyAccrual(ctx context.Context, date time.Time) (*dto.BatchResult, error) {
	day := domain.DateOnly(date)
	accounts, err := s.repos.Accounts.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}

	var (
		mu     sync.Mutex
		result = dto.BatchResult{RunDate: day}
		wg     sync.WaitGroup
		sem    = make(chan struct{}, s.workers)
	)
	for _, account := range accounts {
		wg.Add(1)
		sem <- struct{}{}
		go func(accountNumber string) {
			defer wg.Done()
			defer func() { <-sem }()

			_, err := s.AccrueDaily(ctx, accountNumber, day)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Processed++
			case errors.Is(err, apperrors.ErrDuplicate),
				errors.Is(err, ErrNotAccruable),
				errors.Is(err, ErrNothingToAccrue):
				result.Skipped++
			default:
				result.Failed++
				s.LogError(ctx, err, "daily accrual failed",
					slog.String("account_number", accountNumber),
					slog.String("run_date", day.Format(time.DateOnly)))
			}
		}(account.AccountNumber)
	}
	wg.Wait()

	s.LogInfo(ctx, "daily accrual run finished",
		slog.String("run_date", day.Format(time.DateOnly)),
		slog.Int("processed", result.Processed),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed))
	return &result, nil
}

func (s *accrualService) publishAccrualEvent(ctx context.Context, entry *domain.Transaction) {
	if s.events == nil || entry == nil {
		return
	}
	event := domain.NewTransactionEvent(uuid.NewString(), domain.EventInterestAccrued, entry, time.Now().UTC())
	if err := s.events.Publish(ctx, event); err != nil {
		s.LogWarn(ctx, "failed to publish accrual event",
			slog.String("reference", entry.Reference),
			slog.String("error", err.Error()))
	}
}
