package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fdlabs/fd_deposit_core/internal/apperrors"
	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
	"github.com/fdlabs/fd_deposit_core/internal/dto"
)

// scheduleService settles accrued interest on the dates the account's payout
// frequency makes due. Compound accounts capitalize; simple accounts pay the
// interest out. ON_MATURITY accounts settle only at maturity closure.
type scheduleService struct {
	BaseService
	repos   portsrepo.RepositoryProvider
	uow     portsrepo.UnitOfWork
	locker  portsrepo.AccountLocker
	journal portssvc.JournalEntrySvc
	events  portssvc.EventSink
}

// NewScheduleService creates a new ScheduleService.
func NewScheduleService(
	repos portsrepo.RepositoryProvider,
	uow portsrepo.UnitOfWork,
	locker portsrepo.AccountLocker,
	journal portssvc.JournalEntrySvc,
	events portssvc.EventSink,
) portssvc.ScheduleSvcFacade {
	return &scheduleService{
		repos:   repos,
		uow:     uow,
		locker:  locker,
		journal: journal,
		events:  events,
	}
}

var _ portssvc.ScheduleSvcFacade = (*scheduleService)(nil)

// IsSettlementDue reports whether the date is a settlement date for the
// account. Settlement dates fall on the effective date's day-of-month, every
// N months per the frequency.
func (s *scheduleService) IsSettlementDue(account *domain.Account, date time.Time) bool {
	day := domain.DateOnly(date)
	if account.PayoutFrequency == domain.FrequencyOnMaturity {
		return false
	}
	if day.Day() != account.EffectiveDate.Day() {
		return false
	}

	months := domain.MonthsBetween(account.EffectiveDate, day)
	if months <= 0 {
		return false
	}
	switch account.PayoutFrequency {
	case domain.FrequencyMonthly:
		return true
	case domain.FrequencyQuarterly:
		return months%3 == 0
	case domain.FrequencyHalfYearly:
		return months%6 == 0
	case domain.FrequencyYearly:
		return months%12 == 0
	}
	return false
}

// Capitalize folds the accrued interest into principal as of the date.
func (s *scheduleService) Capitalize(ctx context.Context, accountNumber string, date time.Time, performedBy string) (*dto.SettlementResult, error) {
	return s.settle(ctx, accountNumber, date, performedBy, portsrepo.ScheduleCapitalization)
}

// Payout credits the accrued interest out of the account as of the date.
// Principal is untouched; the interest position returns to zero.
func (s *scheduleService) Payout(ctx context.Context, accountNumber string, date time.Time, performedBy string) (*dto.SettlementResult, error) {
	return s.settle(ctx, accountNumber, date, performedBy, portsrepo.SchedulePayout)
}

func (s *scheduleService) settle(ctx context.Context, accountNumber string, date time.Time, performedBy string, kind portsrepo.ScheduleKind) (*dto.SettlementResult, error) {
	day := domain.DateOnly(date)

	release, err := s.locker.Acquire(ctx, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", accountNumber, err)
	}
	defer release()

	var (
		result  *dto.SettlementResult
		settled *domain.Transaction
	)
	err = s.uow.WithinTx(ctx, func(r portsrepo.RepositoryProvider) error {
		account, err := r.Accounts.FindByNumber(ctx, accountNumber)
		if err != nil {
			return fmt.Errorf("failed to load account %s: %w", accountNumber, err)
		}
		if !account.IsActive() {
			return fmt.Errorf("%w: status is %s", ErrAccountNotActive, account.Status)
		}

		last, err := r.Schedules.LastProcessed(ctx, accountNumber, kind)
		if err != nil {
			return fmt.Errorf("failed to read %s marker: %w", kind, err)
		}
		if last != nil && !last.Before(day) {
			return fmt.Errorf("%w: %s already settled for %s", apperrors.ErrDuplicate, kind, day.Format(time.DateOnly))
		}

		positions, err := loadPositions(ctx, r, account, day)
		if err != nil {
			return err
		}
		accrued := positions.Interest
		if accrued.LessThanOrEqual(decimal.Zero) {
			// Nothing accrued: the settlement is a no-op, not a failure.
			result = &dto.SettlementResult{
				AccountNumber:  accountNumber,
				Amount:         decimal.Zero,
				PrincipalAfter: positions.Principal,
				ProcessedOn:    day,
			}
			return nil
		}

		var entry *domain.Transaction
		if kind == portsrepo.ScheduleCapitalization {
			entry, err = s.journal.AppendEntry(ctx, r, portssvc.EntrySpec{
				AccountNumber: accountNumber,
				Type:          domain.TxnInterestCapitalization,
				Amount:        accrued,
				ValueDate:     day,
				Description:   fmt.Sprintf("Interest capitalization for %s", day.Format(time.DateOnly)),
				PerformedBy:   performedBy,
			})
		} else {
			// Interest is paid out of the account: position drops to zero,
			// principal stays where it is.
			entry, err = s.journal.AppendEntryWithBalances(ctx, r, portssvc.EntrySpec{
				AccountNumber: accountNumber,
				Type:          domain.TxnInterestCredit,
				Amount:        accrued,
				ValueDate:     day,
				Description:   fmt.Sprintf("Interest payout for %s", day.Format(time.DateOnly)),
				PerformedBy:   performedBy,
			}, domain.BalanceSet{Principal: positions.Principal, Interest: decimal.Zero})
		}
		if err != nil {
			return err
		}

		if err := syncAccountPrincipal(ctx, r, account, entry, performedBy); err != nil {
			return err
		}
		if err := r.Schedules.MarkProcessed(ctx, accountNumber, kind, day); err != nil {
			return fmt.Errorf("failed to mark %s processed: %w", kind, err)
		}

		settled = entry
		result = &dto.SettlementResult{
			AccountNumber:  accountNumber,
			Reference:      entry.Reference,
			Amount:         entry.Amount,
			PrincipalAfter: entry.PrincipalAfter,
			ProcessedOn:    day,
			Settled:        true,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Settled {
		s.LogInfo(ctx, "nothing to settle",
			slog.String("account_number", accountNumber),
			slog.String("kind", string(kind)))
		return result, nil
	}

	s.publishSettlementEvent(ctx, settled)
	s.LogInfo(ctx, "interest settled",
		slog.String("account_number", accountNumber),
		slog.String("kind", string(kind)),
		slog.String("amount", result.Amount.String()),
		slog.String("reference", result.Reference))
	return result, nil
}

func (s *scheduleService) publishSettlementEvent(ctx context.Context, entry *domain.Transaction) {
	if s.events == nil || entry == nil {
		return
	}
	event := domain.NewTransactionEvent(uuid.NewString(), domain.EventTransactionCreated, entry, time.Now().UTC())
	if err := s.events.Publish(ctx, event); err != nil {
		s.LogWarn(ctx, "failed to publish settlement event",
			slog.String("reference", entry.Reference),
			slog.String("error", err.Error()))
	}
}

// RunSettlementBatch settles every active account due on the date. Accounts
// already settled for the date, or with nothing accrued, are skipped.
func (s *scheduleService) RunSettlementBatch(ctx context.Context, date time.Time) (*dto.BatchResult, error) {
	day := domain.DateOnly(date)
	accounts, err := s.repos.Accounts.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}

	result := dto.BatchResult{RunDate: day}
	for _, account := range accounts {
		if !s.IsSettlementDue(&account, day) {
			continue
		}

		var (
			settleRes *dto.SettlementResult
			settleErr error
		)
		if account.CalculationMethod == domain.MethodCompound {
			settleRes, settleErr = s.Capitalize(ctx, account.AccountNumber, day, "system")
		} else {
			settleRes, settleErr = s.Payout(ctx, account.AccountNumber, day, "system")
		}
		switch {
		case settleErr == nil && settleRes.Settled:
			result.Processed++
		case settleErr == nil, errors.Is(settleErr, apperrors.ErrDuplicate):
			result.Skipped++
		default:
			result.Failed++
			s.LogError(ctx, settleErr, "settlement failed",
				slog.String("account_number", account.AccountNumber),
				slog.String("run_date", day.Format(time.DateOnly)))
		}
	}

	s.LogInfo(ctx, "settlement run finished",
		slog.String("run_date", day.Format(time.DateOnly)),
		slog.Int("processed", result.Processed),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed))
	return &result, nil
}
