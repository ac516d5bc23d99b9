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
	ErrAccountClosed         = errors.New("account is already closed")
	ErrRedemptionAmount      = errors.New("redemption amount must be positive and within the redeemable value")
	ErrRemainingTooSmall     = errors.New("remaining balance after partial redemption is too small")
	ErrNothingToRedeem       = errors.New("no redeemable value on the account")
	ErrUnknownRedemptionMode = errors.New("unknown redemption mode")
)

// Redemption types reported by the inquiry, relative to the maturity date.
const (
	redemptionPremature    = "PREMATURE"
	redemptionOnMaturity   = "ON_MATURITY"
	redemptionPostMaturity = "POST_MATURITY"
)

// minRemainingFraction is the floor a partial redemption must leave behind,
// as a fraction of the current principal.
var minRemainingFraction = decimal.NewFromFloat(0.10)

// redemptionService values and executes redemptions at any point in the
// deposit lifecycle. Unlike the withdrawal engine, it settles from the
// journal's own sums, so the inquiry is repeatable to the cent.
type redemptionService struct {
	BaseService
	repos       portsrepo.RepositoryProvider
	uow         portsrepo.UnitOfWork
	locker      portsrepo.AccountLocker
	journal     portssvc.JournalEntrySvc
	events      portssvc.EventSink
	notifier    portssvc.NotificationSink
	penaltyRate decimal.Decimal // percent of earned interest forfeited on premature redemption
}

// NewRedemptionService creates a new RedemptionService. penaltyRate is the
// percentage of earned interest forfeited when redeeming before maturity.
func NewRedemptionService(
	repos portsrepo.RepositoryProvider,
	uow portsrepo.UnitOfWork,
	locker portsrepo.AccountLocker,
	journal portssvc.JournalEntrySvc,
	events portssvc.EventSink,
	notifier portssvc.NotificationSink,
	penaltyRate decimal.Decimal,
) portssvc.RedemptionSvcFacade {
	return &redemptionService{
		repos:       repos,
		uow:         uow,
		locker:      locker,
		journal:     journal,
		events:      events,
		notifier:    notifier,
		penaltyRate: penaltyRate,
	}
}

var _ portssvc.RedemptionSvcFacade = (*redemptionService)(nil)

func (s *redemptionService) inquire(ctx context.Context, r portsrepo.RepositoryProvider, accountNumber string, asOf time.Time) (*dto.RedemptionInquiryResponse, *domain.Account, error) {
	account, err := r.Accounts.FindByNumber(ctx, accountNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load account %s: %w", accountNumber, err)
	}
	if account.Status == domain.StatusClosed {
		return nil, nil, fmt.Errorf("%w: %s", ErrAccountClosed, accountNumber)
	}

	day := domain.DateOnly(asOf)
	maturity := domain.DateOnly(account.MaturityDate)
	redemptionType := redemptionOnMaturity
	switch {
	case day.Before(maturity):
		redemptionType = redemptionPremature
	case day.After(maturity):
		redemptionType = redemptionPostMaturity
	}

	positions, err := loadPositions(ctx, r, account, day)
	if err != nil {
		return nil, nil, err
	}

	interestEarned, err := r.Transactions.SumAmountByType(ctx, accountNumber, domain.TxnInterestCredit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sum credited interest: %w", err)
	}
	tdsDeducted, err := r.Transactions.SumAmountByType(ctx, accountNumber, domain.TxnTDSDeduction)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sum tax deductions: %w", err)
	}

	penalty := decimal.Zero
	if redemptionType == redemptionPremature {
		penalty = interestEarned.Mul(s.penaltyRate).DivRound(hundred, 2)
	}

	return &dto.RedemptionInquiryResponse{
		AccountNumber:       accountNumber,
		RedemptionType:      redemptionType,
		CurrentBalance:      positions.Total(),
		InterestEarned:      interestEarned,
		TDSDeducted:         tdsDeducted,
		PenaltyAmount:       penalty,
		NetRedemptionAmount: positions.Total().Add(interestEarned).Sub(tdsDeducted).Sub(penalty),
		MaturityDate:        maturity,
		AsOfDate:            day,
	}, account, nil
}

// Inquire computes what a redemption would pay as of the date. Read-only:
// two inquiries without an intervening transaction return the same figures.
func (s *redemptionService) Inquire(ctx context.Context, accountNumber string, asOf time.Time) (*dto.RedemptionInquiryResponse, error) {
	inquiry, _, err := s.inquire(ctx, s.repos, accountNumber, asOf)
	return inquiry, err
}

// Process executes a FULL or PARTIAL redemption.
func (s *redemptionService) Process(ctx context.Context, accountNumber string, req dto.RedemptionRequest, performedBy string) (*dto.RedemptionResult, error) {
	switch req.Mode {
	case dto.RedemptionModeFull, dto.RedemptionModePartial:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownRedemptionMode, req.Mode)
	}

	release, err := s.locker.Acquire(ctx, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", accountNumber, err)
	}
	defer release()

	var (
		result  *dto.RedemptionResult
		account *domain.Account
		entry   *domain.Transaction
	)
	err = s.uow.WithinTx(ctx, func(r portsrepo.RepositoryProvider) error {
		now := time.Now().UTC()
		inquiry, acc, err := s.inquire(ctx, r, accountNumber, now)
		if err != nil {
			return err
		}
		account = acc

		if req.Mode == dto.RedemptionModeFull {
			entry, err = s.redeemFull(ctx, r, account, inquiry, req.Remarks, performedBy, now)
		} else {
			entry, err = s.redeemPartial(ctx, r, account, inquiry, req, performedBy)
		}
		if err != nil {
			return err
		}

		result = &dto.RedemptionResult{
			Reference:          entry.Reference,
			AccountNumber:      accountNumber,
			Mode:               req.Mode,
			AmountPaid:         entry.Amount,
			RemainingPrincipal: entry.PrincipalAfter,
			AccountStatus:      string(account.Status),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishRedemptionEvents(ctx, entry, account, req.Mode, performedBy)
	if req.Mode == dto.RedemptionModeFull && s.notifier != nil {
		if err := s.notifier.NotifyClosure(ctx, account, result.AmountPaid); err != nil {
			s.LogWarn(ctx, "closure notification failed",
				slog.String("account_number", accountNumber),
				slog.String("error", err.Error()))
		}
	}
	s.LogInfo(ctx, "redemption processed",
		slog.String("account_number", accountNumber),
		slog.String("mode", req.Mode),
		slog.String("amount", result.AmountPaid.String()),
		slog.String("reference", result.Reference))
	return result, nil
}

// redeemFull pays the whole net redemption value in one CLOSURE entry and
// closes the account.
func (s *redemptionService) redeemFull(ctx context.Context, r portsrepo.RepositoryProvider, account *domain.Account, inquiry *dto.RedemptionInquiryResponse, remarks, performedBy string, now time.Time) (*domain.Transaction, error) {
	if inquiry.NetRedemptionAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: net value is %s", ErrNothingToRedeem, inquiry.NetRedemptionAmount)
	}

	description := fmt.Sprintf("Full redemption (%s)", inquiry.RedemptionType)
	if remarks != "" {
		description = fmt.Sprintf("%s: %s", description, remarks)
	}
	entry, err := s.journal.AppendEntryWithBalances(ctx, r, portssvc.EntrySpec{
		AccountNumber: account.AccountNumber,
		Type:          domain.TxnClosure,
		Amount:        inquiry.NetRedemptionAmount,
		Description:   description,
		PerformedBy:   performedBy,
	}, domain.BalanceSet{Principal: decimal.Zero, Interest: decimal.Zero})
	if err != nil {
		return nil, err
	}

	if !account.Status.CanTransitionTo(domain.StatusClosed) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, account.Status, domain.StatusClosed)
	}
	closure := domain.DateOnly(now)
	account.Status = domain.StatusClosed
	account.ClosureDate = &closure
	account.PrincipalAmount = decimal.Zero
	account.LastUpdatedAt = now
	account.LastUpdatedBy = performedBy
	if err := r.Accounts.Update(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to close account: %w", err)
	}
	return entry, nil
}

// redeemPartial withdraws part of the redeemable value; the account stays in
// its current status and must keep at least a tenth of its principal.
func (s *redemptionService) redeemPartial(ctx context.Context, r portsrepo.RepositoryProvider, account *domain.Account, inquiry *dto.RedemptionInquiryResponse, req dto.RedemptionRequest, performedBy string) (*domain.Transaction, error) {
	if req.Amount == nil || req.Amount.LessThanOrEqual(decimal.Zero) || req.Amount.GreaterThan(inquiry.NetRedemptionAmount) {
		return nil, fmt.Errorf("%w: net value is %s", ErrRedemptionAmount, inquiry.NetRedemptionAmount)
	}

	positions, err := loadPositions(ctx, r, account, inquiry.AsOfDate)
	if err != nil {
		return nil, err
	}
	floor := positions.Principal.Mul(minRemainingFraction).Round(2)
	remaining := positions.Total().Sub(*req.Amount)
	if remaining.LessThan(floor) {
		return nil, fmt.Errorf("%w: %s remaining, floor is %s", ErrRemainingTooSmall, remaining, floor)
	}

	description := "Partial redemption"
	if req.Remarks != "" {
		description = fmt.Sprintf("Partial redemption: %s", req.Remarks)
	}
	entry, err := s.journal.AppendEntry(ctx, r, portssvc.EntrySpec{
		AccountNumber: account.AccountNumber,
		Type:          domain.TxnWithdrawal,
		Amount:        *req.Amount,
		Description:   description,
		PerformedBy:   performedBy,
	})
	if err != nil {
		return nil, err
	}
	if err := syncAccountPrincipal(ctx, r, account, entry, performedBy); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *redemptionService) publishRedemptionEvents(ctx context.Context, entry *domain.Transaction, account *domain.Account, mode, performedBy string) {
	if s.events == nil || entry == nil {
		return
	}
	event := domain.NewTransactionEvent(uuid.NewString(), domain.EventWithdrawalProcessed, entry, time.Now().UTC())
	if err := s.events.Publish(ctx, event); err != nil {
		s.LogWarn(ctx, "failed to publish redemption event",
			slog.String("reference", entry.Reference),
			slog.String("error", err.Error()))
	}
	if mode == dto.RedemptionModeFull && account != nil {
		closed := domain.NewAccountEvent(uuid.NewString(), domain.EventAccountClosed, account, performedBy, time.Now().UTC())
		if err := s.events.Publish(ctx, closed); err != nil {
			s.LogWarn(ctx, "failed to publish account closed event",
				slog.String("account_number", account.AccountNumber),
				slog.String("error", err.Error()))
		}
	}
}
