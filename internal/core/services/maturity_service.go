package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
	"github.com/fdlabs/fd_deposit_core/internal/dto"
)

var ErrNotMatured = errors.New("account has not reached its maturity date")

// maturityService closes out deposits that have reached maturity: one
// MATURITY_PAYOUT entry for principal plus accrued interest, then the
// account moves to MATURED.
type maturityService struct {
	BaseService
	repos    portsrepo.RepositoryProvider
	uow      portsrepo.UnitOfWork
	locker   portsrepo.AccountLocker
	journal  portssvc.JournalEntrySvc
	events   portssvc.EventSink
	notifier portssvc.NotificationSink
}

// NewMaturityService creates a new MaturityService.
func NewMaturityService(
	repos portsrepo.RepositoryProvider,
	uow portsrepo.UnitOfWork,
	locker portsrepo.AccountLocker,
	journal portssvc.JournalEntrySvc,
	events portssvc.EventSink,
	notifier portssvc.NotificationSink,
) portssvc.MaturitySvcFacade {
	return &maturityService{
		repos:    repos,
		uow:      uow,
		locker:   locker,
		journal:  journal,
		events:   events,
		notifier: notifier,
	}
}

var _ portssvc.MaturitySvcFacade = (*maturityService)(nil)

// ProcessMaturity pays out principal plus accrued interest and moves the
// account to MATURED.
func (s *maturityService) ProcessMaturity(ctx context.Context, accountNumber string, performedBy string) (*dto.MaturityResult, error) {
	release, err := s.locker.Acquire(ctx, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", accountNumber, err)
	}
	defer release()

	var (
		result  *dto.MaturityResult
		account *domain.Account
		payout  *domain.Transaction
	)
	err = s.uow.WithinTx(ctx, func(r portsrepo.RepositoryProvider) error {
		now := time.Now().UTC()
		account, err = r.Accounts.FindByNumber(ctx, accountNumber)
		if err != nil {
			return fmt.Errorf("failed to load account %s: %w", accountNumber, err)
		}
		if !account.IsActive() {
			return fmt.Errorf("%w: status is %s", ErrAccountNotActive, account.Status)
		}
		if !account.IsMaturedAsOf(now) {
			return fmt.Errorf("%w: matures on %s", ErrNotMatured, account.MaturityDate.Format(time.DateOnly))
		}

		positions, err := loadPositions(ctx, r, account, now)
		if err != nil {
			return err
		}
		maturityAmount := positions.Total()
		if maturityAmount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: balance is %s", ErrNothingToRedeem, maturityAmount)
		}

		payout, err = s.journal.AppendEntryWithBalances(ctx, r, portssvc.EntrySpec{
			AccountNumber: accountNumber,
			Type:          domain.TxnMaturityPayout,
			Amount:        maturityAmount,
			Description:   fmt.Sprintf("Maturity payout for deposit matured on %s", account.MaturityDate.Format(time.DateOnly)),
			PerformedBy:   performedBy,
		}, domain.BalanceSet{Principal: decimal.Zero, Interest: decimal.Zero})
		if err != nil {
			return err
		}

		if !account.Status.CanTransitionTo(domain.StatusMatured) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, account.Status, domain.StatusMatured)
		}
		closure := domain.DateOnly(now)
		account.Status = domain.StatusMatured
		account.ClosureDate = &closure
		account.PrincipalAmount = decimal.Zero
		account.LastUpdatedAt = now
		account.LastUpdatedBy = performedBy
		if err := r.Accounts.Update(ctx, *account); err != nil {
			return fmt.Errorf("failed to mark account matured: %w", err)
		}

		result = &dto.MaturityResult{
			AccountNumber:  accountNumber,
			Reference:      payout.Reference,
			MaturityAmount: maturityAmount,
			ProcessedOn:    closure,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishMaturityEvent(ctx, payout)
	if s.notifier != nil {
		if err := s.notifier.NotifyMaturity(ctx, account, result.MaturityAmount); err != nil {
			s.LogWarn(ctx, "maturity notification failed",
				slog.String("account_number", accountNumber),
				slog.String("error", err.Error()))
		}
	}
	s.LogInfo(ctx, "maturity processed",
		slog.String("account_number", accountNumber),
		slog.String("maturity_amount", result.MaturityAmount.String()),
		slog.String("reference", result.Reference))
	return result, nil
}

// RunMaturityBatch processes every active account at or past maturity as of
// the date. Per-account failures are logged and counted, never fatal.
func (s *maturityService) RunMaturityBatch(ctx context.Context, date time.Time) (*dto.BatchResult, error) {
	day := domain.DateOnly(date)
	accounts, err := s.repos.Accounts.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}

	result := dto.BatchResult{RunDate: day}
	for _, account := range accounts {
		if !account.IsMaturedAsOf(day) {
			result.Skipped++
			continue
		}
		if _, err := s.ProcessMaturity(ctx, account.AccountNumber, "system"); err != nil {
			if errors.Is(err, ErrAccountNotActive) || errors.Is(err, ErrNotMatured) {
				result.Skipped++
				continue
			}
			result.Failed++
			s.LogError(ctx, err, "maturity processing failed",
				slog.String("account_number", account.AccountNumber),
				slog.String("run_date", day.Format(time.DateOnly)))
			continue
		}
		result.Processed++
	}

	s.LogInfo(ctx, "maturity run finished",
		slog.String("run_date", day.Format(time.DateOnly)),
		slog.Int("processed", result.Processed),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed))
	return &result, nil
}

func (s *maturityService) publishMaturityEvent(ctx context.Context, entry *domain.Transaction) {
	if s.events == nil || entry == nil {
		return
	}
	event := domain.NewTransactionEvent(uuid.NewString(), domain.EventMaturityProcessed, entry, time.Now().UTC())
	if err := s.events.Publish(ctx, event); err != nil {
		s.LogWarn(ctx, "failed to publish maturity event",
			slog.String("reference", entry.Reference),
			slog.String("error", err.Error()))
	}
}
