package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fdlabs/fd_deposit_core/internal/apperrors"
	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
	"github.com/fdlabs/fd_deposit_core/internal/dto"
	"github.com/fdlabs/fd_deposit_core/internal/utils"
)

var (
	ErrAmountOutOfRange    = errors.New("principal amount is outside the product's limits")
	ErrTermOutOfRange      = errors.New("term is outside the product's limits")
	ErrInvalidTransition   = errors.New("account status transition not allowed")
	ErrUnknownProduct      = errors.New("product not found")
	ErrUnknownCustomer     = errors.New("customer not found")
	ErrInvalidMethod       = errors.New("unknown interest calculation method")
	ErrInvalidFrequency    = errors.New("unknown payout frequency")
	ErrEffectiveDateFuture = errors.New("effective date cannot be in the future")
)

// accountService owns the deposit account lifecycle: opening, suspension and
// reactivation. Terminal transitions (MATURED, CLOSED) belong to the
// maturity, withdrawal and redemption engines.
type accountService struct {
	BaseService
	repos    portsrepo.RepositoryProvider
	uow      portsrepo.UnitOfWork
	locker   portsrepo.AccountLocker
	products portssvc.ProductSvcFacade
	journal  portssvc.JournalEntrySvc
	events   portssvc.EventSink
}

// NewAccountService creates a new AccountService.
func NewAccountService(
	repos portsrepo.RepositoryProvider,
	uow portsrepo.UnitOfWork,
	locker portsrepo.AccountLocker,
	products portssvc.ProductSvcFacade,
	journal portssvc.JournalEntrySvc,
	events portssvc.EventSink,
) portssvc.AccountSvcFacade {
	return &accountService{
		repos:    repos,
		uow:      uow,
		locker:   locker,
		products: products,
		journal:  journal,
		events:   events,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// newAccountNumber builds a deposit account number: FD followed by 12
// random hex characters, uppercased.
func newAccountNumber() (string, error) {
	suffix, err := utils.GenerateSecureRandomString(6)
	if err != nil {
		return "", fmt.Errorf("failed to generate account number: %w", err)
	}
	return "FD" + strings.ToUpper(suffix), nil
}

// OpenAccount validates the request against the product terms, books the
// initial deposit and returns the new account.
func (s *accountService) OpenAccount(ctx context.Context, req dto.OpenAccountRequest, creatorUserID string) (*domain.Account, error) {
	product, err := s.products.GetProduct(ctx, req.ProductCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, req.ProductCode)
		}
		return nil, fmt.Errorf("failed to fetch product %s: %w", req.ProductCode, err)
	}
	if _, err := s.products.GetCustomer(ctx, req.CustomerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCustomer, req.CustomerID)
		}
		return nil, fmt.Errorf("failed to fetch customer %s: %w", req.CustomerID, err)
	}

	if req.PrincipalAmount.LessThan(product.MinAmount) ||
		(product.MaxAmount.IsPositive() && req.PrincipalAmount.GreaterThan(product.MaxAmount)) {
		return nil, fmt.Errorf("%w: %s not in [%s, %s]", ErrAmountOutOfRange,
			req.PrincipalAmount, product.MinAmount, product.MaxAmount)
	}
	if req.TermMonths < product.MinTermMonths ||
		(product.MaxTermMonths > 0 && req.TermMonths > product.MaxTermMonths) {
		return nil, fmt.Errorf("%w: %d months not in [%d, %d]", ErrTermOutOfRange,
			req.TermMonths, product.MinTermMonths, product.MaxTermMonths)
	}

	method := domain.InterestMethod(req.CalculationMethod)
	if method != domain.MethodSimple && method != domain.MethodCompound {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMethod, req.CalculationMethod)
	}
	frequency := domain.PayoutFrequency(req.PayoutFrequency)
	switch frequency {
	case domain.FrequencyMonthly, domain.FrequencyQuarterly, domain.FrequencyHalfYearly,
		domain.FrequencyYearly, domain.FrequencyOnMaturity:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidFrequency, req.PayoutFrequency)
	}

	now := time.Now().UTC()
	effectiveDate := domain.DateOnly(now)
	if req.EffectiveDate != nil {
		effectiveDate = domain.DateOnly(*req.EffectiveDate)
		if effectiveDate.After(domain.DateOnly(now)) {
			return nil, fmt.Errorf("%w: %s", ErrEffectiveDateFuture, effectiveDate.Format(time.DateOnly))
		}
	}

	accountNumber, err := newAccountNumber()
	if err != nil {
		return nil, err
	}

	account := domain.Account{
		AccountID:          uuid.NewString(),
		AccountNumber:      accountNumber,
		IBAN:               req.IBAN,
		AccountName:        req.AccountName,
		CustomerID:         req.CustomerID,
		ProductCode:        req.ProductCode,
		Status:             domain.StatusActive,
		PrincipalAmount:    req.PrincipalAmount,
		InterestRate:       product.BaseRate,
		CustomInterestRate: req.CustomInterestRate,
		TermMonths:         req.TermMonths,
		EffectiveDate:      effectiveDate,
		MaturityDate:       effectiveDate.AddDate(0, req.TermMonths, 0),
		CalculationMethod:  method,
		PayoutFrequency:    frequency,
		TDSApplicable:      product.TDSApplicable,
		TDSRate:            product.TDSRate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	err = s.uow.WithinTx(ctx, func(r portsrepo.RepositoryProvider) error {
		if err := r.Accounts.Save(ctx, account); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}
		_, err := s.journal.AppendEntry(ctx, r, portssvc.EntrySpec{
			AccountNumber: account.AccountNumber,
			Type:          domain.TxnInitialDeposit,
			Amount:        req.PrincipalAmount,
			ValueDate:     effectiveDate,
			Description:   fmt.Sprintf("Initial deposit for %s", account.AccountNumber),
			PerformedBy:   creatorUserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishAccountEvent(ctx, domain.EventAccountCreated, &account, creatorUserID)
	s.LogInfo(ctx, "account opened",
		slog.String("account_number", account.AccountNumber),
		slog.String("product_code", account.ProductCode),
		slog.String("principal", account.PrincipalAmount.String()))
	return &account, nil
}

// GetAccount retrieves an account by its business account number.
func (s *accountService) GetAccount(ctx context.Context, accountNumber string) (*domain.Account, error) {
	account, err := s.repos.Accounts.FindByNumber(ctx, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountNumber, err)
	}
	return account, nil
}

// GetAccountByIBAN retrieves an account by its IBAN.
func (s *accountService) GetAccountByIBAN(ctx context.Context, iban string) (*domain.Account, error) {
	account, err := s.repos.Accounts.FindByIBAN(ctx, iban)
	if err != nil {
		return nil, fmt.Errorf("failed to find account by IBAN: %w", err)
	}
	return account, nil
}

// ListAccountsByCustomer retrieves a paginated list of a customer's accounts.
func (s *accountService) ListAccountsByCustomer(ctx context.Context, customerID string, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error) {
	accounts, nextToken, err := s.repos.Accounts.ListByCustomer(ctx, customerID, params.Limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return &dto.ListAccountsResponse{
		Accounts:  dto.ToListAccountResponse(accounts),
		NextToken: nextToken,
	}, nil
}

// SuspendAccount moves an active account to SUSPENDED.
func (s *accountService) SuspendAccount(ctx context.Context, accountNumber string, userID string) error {
	return s.transition(ctx, accountNumber, domain.StatusSuspended, userID)
}

// ReactivateAccount moves a suspended account back to ACTIVE.
func (s *accountService) ReactivateAccount(ctx context.Context, accountNumber string, userID string) error {
	return s.transition(ctx, accountNumber, domain.StatusActive, userID)
}

func (s *accountService) transition(ctx context.Context, accountNumber string, next domain.AccountStatus, userID string) error {
	release, err := s.locker.Acquire(ctx, accountNumber)
	if err != nil {
		return fmt.Errorf("failed to lock account %s: %w", accountNumber, err)
	}
	defer release()

	var account *domain.Account
	err = s.uow.WithinTx(ctx, func(r portsrepo.RepositoryProvider) error {
		account, err = r.Accounts.FindByNumber(ctx, accountNumber)
		if err != nil {
			return fmt.Errorf("failed to find account %s: %w", accountNumber, err)
		}
		if !account.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, account.Status, next)
		}
		account.Status = next
		account.LastUpdatedAt = time.Now().UTC()
		account.LastUpdatedBy = userID
		return r.Accounts.Update(ctx, *account)
	})
	if err != nil {
		return err
	}

	s.LogInfo(ctx, "account status changed",
		slog.String("account_number", accountNumber),
		slog.String("status", string(next)))
	return nil
}

func (s *accountService) publishAccountEvent(ctx context.Context, eventType string, account *domain.Account, performedBy string) {
	if s.events == nil {
		return
	}
	event := domain.NewAccountEvent(uuid.NewString(), eventType, account, performedBy, time.Now().UTC())
	if err := s.events.Publish(ctx, event); err != nil {
		s.LogWarn(ctx, "failed to publish account event",
			slog.String("account_number", account.AccountNumber),
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}
