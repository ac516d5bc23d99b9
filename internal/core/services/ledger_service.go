package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fdlabs/fd_deposit_core/internal/apperrors"
	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
	"github.com/fdlabs/fd_deposit_core/internal/dto"
)

// ledgerService answers balance questions from the snapshot history.
type ledgerService struct {
	BaseService
	repos portsrepo.RepositoryProvider
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(repos portsrepo.RepositoryProvider) portssvc.LedgerSvcFacade {
	return &ledgerService{repos: repos}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// BalanceAsOf returns one balance kind as of a calendar date. With no
// snapshot on record the PRINCIPAL kind defaults to the account's stored
// principal and every other kind to zero.
func (s *ledgerService) BalanceAsOf(ctx context.Context, accountNumber string, kind domain.BalanceKind, asOf time.Time) (decimal.Decimal, error) {
	snap, err := s.repos.Balances.LatestAsOf(ctx, accountNumber, kind, asOf)
	if err == nil {
		return snap.Balance, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("failed to read %s balance: %w", kind, err)
	}

	if kind == domain.BalancePrincipal || kind == domain.BalanceAvailable {
		account, err := s.repos.Accounts.FindByNumber(ctx, accountNumber)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to load account %s: %w", accountNumber, err)
		}
		return account.PrincipalAmount, nil
	}
	return decimal.Zero, nil
}

// CurrentBalances returns today's principal and accrued interest positions.
func (s *ledgerService) CurrentBalances(ctx context.Context, accountNumber string) (domain.BalanceSet, error) {
	account, err := s.repos.Accounts.FindByNumber(ctx, accountNumber)
	if err != nil {
		return domain.BalanceSet{}, fmt.Errorf("failed to load account %s: %w", accountNumber, err)
	}
	return loadPositions(ctx, s.repos, account, time.Now().UTC())
}

// BalanceInquiry is the handler-facing balance view for a date.
func (s *ledgerService) BalanceInquiry(ctx context.Context, accountNumber string, asOf time.Time) (*dto.BalanceResponse, error) {
	account, err := s.repos.Accounts.FindByNumber(ctx, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", accountNumber, err)
	}
	positions, err := loadPositions(ctx, s.repos, account, asOf)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{
		AccountNumber:   accountNumber,
		Principal:       positions.Principal,
		InterestAccrued: positions.Interest,
		Total:           positions.Total(),
		AsOfDate:        domain.DateOnly(asOf),
	}, nil
}
