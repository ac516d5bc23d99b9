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

var (
	ErrPrematureNotAllowed = errors.New("product does not allow premature withdrawal")
	ErrPartialNotAllowed   = errors.New("product does not allow partial withdrawal")
	ErrDepositMatured      = errors.New("deposit has reached maturity, use maturity processing")
	ErrBelowMinBalance     = errors.New("withdrawal would leave balance below the product minimum")
)

// withdrawalService handles early exits: full premature closure at a
// penalty-reduced rate, and partial principal withdrawals.
type withdrawalService struct {
	BaseService
	repos       portsrepo.RepositoryProvider
	uow         portsrepo.UnitOfWork
	locker      portsrepo.AccountLocker
	journal     portssvc.JournalEntrySvc
	interest    portssvc.InterestSvcFacade
	products    portssvc.ProductSvcFacade
	events      portssvc.EventSink
	notifier    portssvc.NotificationSink
	penaltyRate decimal.Decimal // percentage points shaved off the rate
}

// NewWithdrawalService creates a new WithdrawalService. penaltyRate is the
// rate reduction, in percentage points, applied on premature closure.
func NewWithdrawalService(
	repos portsrepo.RepositoryProvider,
	uow portsrepo.UnitOfWork,
	locker portsrepo.AccountLocker,
	journal portssvc.JournalEntrySvc,
	interest portssvc.InterestSvcFacade,
	products portssvc.ProductSvcFacade,
	events portssvc.EventSink,
	notifier portssvc.NotificationSink,
	penaltyRate decimal.Decimal,
) portssvc.WithdrawalSvcFacade {
	return &withdrawalService{
		repos:       repos,
		uow:         uow,
		locker:      locker,
		journal:     journal,
		interest:    interest,
		products:    products,
		events:      events,
		notifier:    notifier,
		penaltyRate: penaltyRate,
	}
}

var _ portssvc.WithdrawalSvcFacade = (*withdrawalService)(nil)

// quotePremature computes the early-closure figures from the given
// repositories, so the commit path can recompute under its own transaction.
func (s *withdrawalService) quotePremature(ctx context.Context, r portsrepo.RepositoryProvider, accountNumber string, asOf time.Time) (*dto.PrematureWithdrawalQuote, *domain.Account, domain.BalanceSet, error) {
	none := domain.BalanceSet{}
	account, err := r.Accounts.FindByNumber(ctx, accountNumber)
	if err != nil {
		return nil, nil, none, fmt.Errorf("failed to load account %s: %w", accountNumber, err)
	}
	if !account.IsActive() {
		return nil, nil, none, fmt.Errorf("%w: status is %s", ErrAccountNotActive, account.Status)
	}
	if account.IsMaturedAsOf(asOf) {
		return nil, nil, none, fmt.Errorf("%w: matured on %s", ErrDepositMatured, account.MaturityDate.Format(time.DateOnly))
	}

	product, err := s.products.GetProduct(ctx, account.ProductCode)
	if err != nil {
		return nil, nil, none, fmt.Errorf("failed to fetch product %s: %w", account.ProductCode, err)
	}
	if !product.PrematureWithdrawalAllowed {
		return nil, nil, none, fmt.Errorf("%w: %s", ErrPrematureNotAllowed, account.ProductCode)
	}

	positions, err := loadPositions(ctx, r, account, asOf)
	if err != nil {
		return nil, nil, none, err
	}

	daysHeld := domain.DaysBetween(account.EffectiveDate, asOf)
	effectiveRate := account.EffectiveRate()
	revisedRate := effectiveRate.Sub(s.penaltyRate)
	if revisedRate.IsNegative() {
		revisedRate = decimal.Zero
	}

	interestEarned, err := s.interest.InterestForPeriod(positions.Principal, revisedRate, daysHeld)
	if err != nil {
		return nil, nil, none, fmt.Errorf("failed to compute earned interest: %w", err)
	}
	normalInterest, err := s.interest.InterestForPeriod(positions.Principal, effectiveRate, daysHeld)
	if err != nil {
		return nil, nil, none, fmt.Errorf("failed to compute forfeited interest: %w", err)
	}
	// The penalty is rounded from the exact rate differential, not derived
	// from the two already-rounded interest figures.
	penalty := decimal.Zero
	if rateDiff := effectiveRate.Sub(revisedRate); rateDiff.IsPositive() {
		penalty, err = s.interest.InterestForPeriod(positions.Principal, rateDiff, daysHeld)
		if err != nil {
			return nil, nil, none, fmt.Errorf("failed to compute penalty: %w", err)
		}
	}
	// Tax on an early closure is withheld whenever the account is liable;
	// the exemption threshold applies to standalone projections only.
	tds := decimal.Zero
	if account.TDSApplicable && interestEarned.IsPositive() {
		tds = interestEarned.Mul(account.TDSRate).DivRound(hundred, 2)
	}

	return &dto.PrematureWithdrawalQuote{
		AccountNumber:  accountNumber,
		DaysHeld:       daysHeld,
		EffectiveRate:  effectiveRate,
		RevisedRate:    revisedRate,
		InterestEarned: interestEarned,
		NormalInterest: normalInterest,
		PenaltyAmount:  penalty,
		TDSAmount:      tds,
		NetPayable:     positions.Principal.Add(interestEarned).Sub(tds),
	}, account, positions, nil
}

// QuotePremature previews a full early closure without writing anything.
func (s *withdrawalService) QuotePremature(ctx context.Context, accountNumber string, asOf time.Time) (*dto.PrematureWithdrawalQuote, error) {
	quote, _, _, err := s.quotePremature(ctx, s.repos, accountNumber, asOf)
	return quote, err
}

// ProcessPremature commits a full early closure. The interest position is
// restated to the penalty-reduced figure, tax is withheld on it, and the
// remaining balance is paid out in one PREMATURE_WITHDRAWAL entry. The
// withdrawal date defaults to today; back-dated requests settle and close
// as of the given date.
func (s *withdrawalService) ProcessPremature(ctx context.Context, accountNumber string, req dto.PrematureWithdrawalRequest, performedBy string) (*dto.WithdrawalResult, error) {
	withdrawalDate := time.Now().UTC()
	if req.WithdrawalDate != nil {
		withdrawalDate = *req.WithdrawalDate
	}
	withdrawalDate = domain.DateOnly(withdrawalDate)

	release, err := s.locker.Acquire(ctx, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", accountNumber, err)
	}
	defer release()

	var (
		result  *dto.WithdrawalResult
		account *domain.Account
		payout  *domain.Transaction
	)
	err = s.uow.WithinTx(ctx, func(r portsrepo.RepositoryProvider) error {
		now := time.Now().UTC()
		quote, acc, positions, err := s.quotePremature(ctx, r, accountNumber, withdrawalDate)
		if err != nil {
			return err
		}
		account = acc

		// Restate the interest position to the earned figure. Interest
		// accrued so far at the full rate is superseded, not added to.
		_, err = s.journal.AppendEntryWithBalances(ctx, r, portssvc.EntrySpec{
			AccountNumber: accountNumber,
			Type:          domain.TxnInterestCredit,
			Amount:        quote.InterestEarned,
			ValueDate:     withdrawalDate,
			Description:   fmt.Sprintf("Interest earned at revised rate %s for %d days", quote.RevisedRate, quote.DaysHeld),
			PerformedBy:   performedBy,
		}, domain.BalanceSet{Principal: positions.Principal, Interest: quote.InterestEarned})
		if err != nil {
			return err
		}

		if quote.TDSAmount.IsPositive() {
			_, err = s.journal.AppendEntry(ctx, r, portssvc.EntrySpec{
				AccountNumber: accountNumber,
				Type:          domain.TxnTDSDeduction,
				Amount:        quote.TDSAmount,
				ValueDate:     withdrawalDate,
				Description:   "Tax deducted at source on premature closure",
				PerformedBy:   performedBy,
			})
			if err != nil {
				return err
			}
		}

		description := "Premature withdrawal"
		if req.Remarks != "" {
			description = fmt.Sprintf("Premature withdrawal: %s", req.Remarks)
		}
		payout, err = s.journal.AppendEntryWithBalances(ctx, r, portssvc.EntrySpec{
			AccountNumber: accountNumber,
			Type:          domain.TxnPrematureWithdrawal,
			Amount:        quote.NetPayable,
			ValueDate:     withdrawalDate,
			Description:   description,
			PerformedBy:   performedBy,
		}, domain.BalanceSet{Principal: decimal.Zero, Interest: decimal.Zero})
		if err != nil {
			return err
		}

		if !account.Status.CanTransitionTo(domain.StatusClosed) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, account.Status, domain.StatusClosed)
		}
		closure := withdrawalDate
		account.Status = domain.StatusClosed
		account.ClosureDate = &closure
		account.PrincipalAmount = decimal.Zero
		account.LastUpdatedAt = now
		account.LastUpdatedBy = performedBy
		if err := r.Accounts.Update(ctx, *account); err != nil {
			return fmt.Errorf("failed to close account: %w", err)
		}

		result = &dto.WithdrawalResult{
			Reference:      payout.Reference,
			AccountNumber:  accountNumber,
			AmountPaid:     quote.NetPayable,
			PrincipalAfter: decimal.Zero,
			AccountStatus:  string(domain.StatusClosed),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	s.publishWithdrawalEvents(ctx, payout, account, performedBy, now)
	if s.notifier != nil {
		if err := s.notifier.NotifyClosure(ctx, account, result.AmountPaid); err != nil {
			s.LogWarn(ctx, "closure notification failed",
				slog.String("account_number", accountNumber),
				slog.String("error", err.Error()))
		}
	}
	s.LogInfo(ctx, "premature withdrawal processed",
		slog.String("account_number", accountNumber),
		slog.String("net_payable", result.AmountPaid.String()),
		slog.String("reference", result.Reference))
	return result, nil
}

// ProcessPartial withdraws part of the principal, keeping the account active.
func (s *withdrawalService) ProcessPartial(ctx context.Context, accountNumber string, req dto.PartialWithdrawalRequest, performedBy string) (*dto.WithdrawalResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", ErrAmountNotPositive, req.Amount)
	}

	release, err := s.locker.Acquire(ctx, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", accountNumber, err)
	}
	defer release()

	var (
		result *dto.WithdrawalResult
		entry  *domain.Transaction
	)
	err = s.uow.WithinTx(ctx, func(r portsrepo.RepositoryProvider) error {
		now := time.Now().UTC()
		account, err := r.Accounts.FindByNumber(ctx, accountNumber)
		if err != nil {
			return fmt.Errorf("failed to load account %s: %w", accountNumber, err)
		}
		if !account.IsActive() {
			return fmt.Errorf("%w: status is %s", ErrAccountNotActive, account.Status)
		}
		if account.IsMaturedAsOf(now) {
			return fmt.Errorf("%w: matured on %s", ErrDepositMatured, account.MaturityDate.Format(time.DateOnly))
		}

		product, err := s.products.GetProduct(ctx, account.ProductCode)
		if err != nil {
			return fmt.Errorf("failed to fetch product %s: %w", account.ProductCode, err)
		}
		if !product.PartialWithdrawalAllowed {
			return fmt.Errorf("%w: %s", ErrPartialNotAllowed, account.ProductCode)
		}

		positions, err := loadPositions(ctx, r, account, now)
		if err != nil {
			return err
		}
		remaining := positions.Principal.Sub(req.Amount)
		if remaining.LessThan(product.MinBalance()) {
			return fmt.Errorf("%w: %s remaining, minimum is %s", ErrBelowMinBalance, remaining, product.MinBalance())
		}

		description := "Partial withdrawal"
		if req.Remarks != "" {
			description = fmt.Sprintf("Partial withdrawal: %s", req.Remarks)
		}
		entry, err = s.journal.AppendEntry(ctx, r, portssvc.EntrySpec{
			AccountNumber: accountNumber,
			Type:          domain.TxnPartialWithdrawal,
			Amount:        req.Amount,
			Description:   description,
			PerformedBy:   performedBy,
		})
		if err != nil {
			return err
		}
		if err := syncAccountPrincipal(ctx, r, account, entry, performedBy); err != nil {
			return err
		}

		result = &dto.WithdrawalResult{
			Reference:      entry.Reference,
			AccountNumber:  accountNumber,
			AmountPaid:     req.Amount,
			PrincipalAfter: entry.PrincipalAfter,
			AccountStatus:  string(account.Status),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEntryEvent(ctx, entry)
	s.LogInfo(ctx, "partial withdrawal processed",
		slog.String("account_number", accountNumber),
		slog.String("amount", result.AmountPaid.String()),
		slog.String("reference", result.Reference))
	return result, nil
}

func (s *withdrawalService) publishEntryEvent(ctx context.Context, entry *domain.Transaction) {
	if s.events == nil || entry == nil {
		return
	}
	event := domain.NewTransactionEvent(uuid.NewString(), domain.EventWithdrawalProcessed, entry, time.Now().UTC())
	if err := s.events.Publish(ctx, event); err != nil {
		s.LogWarn(ctx, "failed to publish withdrawal event",
			slog.String("reference", entry.Reference),
			slog.String("error", err.Error()))
	}
}

func (s *withdrawalService) publishWithdrawalEvents(ctx context.Context, entry *domain.Transaction, account *domain.Account, performedBy string, at time.Time) {
	s.publishEntryEvent(ctx, entry)
	if s.events == nil || account == nil {
		return
	}
	closed := domain.NewAccountEvent(uuid.NewString(), domain.EventAccountClosed, account, performedBy, at)
	if err := s.events.Publish(ctx, closed); err != nil {
		s.LogWarn(ctx, "failed to publish account closed event",
			slog.String("account_number", account.AccountNumber),
			slog.String("error", err.Error()))
	}
}
