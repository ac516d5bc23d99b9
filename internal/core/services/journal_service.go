package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
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
	ErrAmountNotPositive = errors.New("transaction amount must be positive")
	ErrAccountNotActive  = errors.New("account is not active")
	ErrAlreadyReversed   = errors.New("transaction is already reversed")
	ErrNotReversible     = errors.New("transaction type is not reversible")
)

// journalService owns the append-only transaction journal: every balance
// movement flows through it, entries carry their before/after positions,
// and the conservation invariant is checked before anything is persisted.
type journalService struct {
	BaseService
	repos  portsrepo.RepositoryProvider
	uow    portsrepo.UnitOfWork
	locker portsrepo.AccountLocker
	events portssvc.EventSink
}

// NewJournalService creates a new JournalService.
func NewJournalService(repos portsrepo.RepositoryProvider, uow portsrepo.UnitOfWork, locker portsrepo.AccountLocker, events portssvc.EventSink) portssvc.JournalSvcFacade {
	return &journalService{
		repos:  repos,
		uow:    uow,
		locker: locker,
		events: events,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// newReference builds a journal reference: TXN-yyyymmdd-XXXXXXXX where the
// suffix is the first 8 hex characters of a fresh UUID, uppercased. The
// random suffix keeps references collision-free across concurrent writers.
func newReference(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("TXN-%s-%s", now.UTC().Format("20060102"), suffix)
}

// loadPositions reads the current principal and accrued interest positions
// from the snapshot history. An account with no PRINCIPAL snapshot yet is at
// its stored principal; any other missing kind is zero.
func loadPositions(ctx context.Context, r portsrepo.RepositoryProvider, account *domain.Account, asOf time.Time) (domain.BalanceSet, error) {
	var positions domain.BalanceSet

	principalSnap, err := r.Balances.LatestAsOf(ctx, account.AccountNumber, domain.BalancePrincipal, asOf)
	switch {
	case err == nil:
		positions.Principal = principalSnap.Balance
	case errors.Is(err, apperrors.ErrNotFound):
		positions.Principal = account.PrincipalAmount
	default:
		return domain.BalanceSet{}, fmt.Errorf("failed to read principal position: %w", err)
	}

	interestSnap, err := r.Balances.LatestAsOf(ctx, account.AccountNumber, domain.BalanceInterestAccrued, asOf)
	switch {
	case err == nil:
		positions.Interest = interestSnap.Balance
	case errors.Is(err, apperrors.ErrNotFound):
		positions.Interest = decimal.Zero
	default:
		return domain.BalanceSet{}, fmt.Errorf("failed to read interest position: %w", err)
	}

	return positions, nil
}

// buildEntry assembles a journal entry from the spec and the positions
// around it.
func buildEntry(spec portssvc.EntrySpec, before, after domain.BalanceSet, now time.Time) domain.Transaction {
	valueDate := spec.ValueDate
	if valueDate.IsZero() {
		valueDate = now
	}
	return domain.Transaction{
		TransactionID:    uuid.NewString(),
		Reference:        newReference(now),
		AccountNumber:    spec.AccountNumber,
		Type:             spec.Type,
		Amount:           spec.Amount,
		PrincipalBefore:  before.Principal,
		PrincipalAfter:   after.Principal,
		InterestBefore:   before.Interest,
		InterestAfter:    after.Interest,
		TotalBefore:      before.Total(),
		TotalAfter:       after.Total(),
		TransactionDate:  now,
		ValueDate:        domain.DateOnly(valueDate),
		Description:      spec.Description,
		PerformedBy:      spec.PerformedBy,
		Status:           domain.TxnCompleted,
		RelatedReference: spec.RelatedReference,
		CreatedAt:        now,
	}
}

// persistEntry appends the entry and the balance snapshots it implies, all
// inside the caller's unit of work.
func persistEntry(ctx context.Context, r portsrepo.RepositoryProvider, entry domain.Transaction) error {
	if err := domain.CheckConservation(entry); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if err := r.Transactions.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}

	after := domain.BalanceSet{Principal: entry.PrincipalAfter, Interest: entry.InterestAfter}
	snapshots := []domain.BalanceSnapshot{
		{Kind: domain.BalancePrincipal, Balance: after.Principal},
		{Kind: domain.BalanceInterestAccrued, Balance: after.Interest},
		{Kind: domain.BalanceAvailable, Balance: after.Total()},
	}
	for _, snap := range snapshots {
		snap.SnapshotID = uuid.NewString()
		snap.AccountNumber = entry.AccountNumber
		snap.AsOfDate = entry.ValueDate
		snap.Description = fmt.Sprintf("%s %s", entry.Type, entry.Reference)
		snap.RecordedAt = entry.CreatedAt
		if err := r.Balances.AppendSnapshot(ctx, snap); err != nil {
			return fmt.Errorf("failed to append %s snapshot: %w", snap.Kind, err)
		}
	}
	return nil
}

// AppendEntry applies the type's standard balance rule and appends the entry.
// Implements portssvc.JournalEntrySvc; the caller owns the unit of work.
func (s *journalService) AppendEntry(ctx context.Context, r portsrepo.RepositoryProvider, spec portssvc.EntrySpec) (*domain.Transaction, error) {
	if spec.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", ErrAmountNotPositive, spec.Amount)
	}

	account, err := r.Accounts.FindByNumber(ctx, spec.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", spec.AccountNumber, err)
	}

	now := time.Now().UTC()
	before, err := loadPositions(ctx, r, account, now)
	if err != nil {
		return nil, err
	}
	after, err := domain.Apply(spec.Type, before, spec.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	entry := buildEntry(spec, before, after, now)
	if err := persistEntry(ctx, r, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// AppendEntryWithBalances appends an entry whose resulting positions the
// engine computed itself. Settlement and closure flows use this when their
// movement is not a single-kind rule.
func (s *journalService) AppendEntryWithBalances(ctx context.Context, r portsrepo.RepositoryProvider, spec portssvc.EntrySpec, after domain.BalanceSet) (*domain.Transaction, error) {
	if spec.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", ErrAmountNotPositive, spec.Amount)
	}

	account, err := r.Accounts.FindByNumber(ctx, spec.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", spec.AccountNumber, err)
	}

	now := time.Now().UTC()
	before, err := loadPositions(ctx, r, account, now)
	if err != nil {
		return nil, err
	}

	entry := buildEntry(spec, before, after, now)
	if err := persistEntry(ctx, r, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Deposit books an additional deposit into an active account.
func (s *journalService) Deposit(ctx context.Context, accountNumber string, req dto.DepositRequest, performedBy string) (*domain.Transaction, error) {
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
			return fmt.Errorf("%w: status is %s", ErrAccountNotActive, account.Status)
		}

		description := req.Description
		if description == "" {
			description = "Additional deposit"
		}
		entry, err = s.AppendEntry(ctx, r, portssvc.EntrySpec{
			AccountNumber: accountNumber,
			Type:          domain.TxnAdditionalDeposit,
			Amount:        req.Amount,
			Description:   description,
			PerformedBy:   performedBy,
		})
		if err != nil {
			return err
		}
		return syncAccountPrincipal(ctx, r, account, entry, performedBy)
	})
	if err != nil {
		return nil, err
	}

	s.publishEntryEvent(ctx, domain.EventTransactionCreated, entry)
	s.LogInfo(ctx, "deposit recorded",
		slog.String("account_number", accountNumber),
		slog.String("reference", entry.Reference),
		slog.String("amount", entry.Amount.String()))
	return entry, nil
}

// Reverse books a compensating entry for an existing journal entry. The
// reversal is dated now, never backdated to the original's value date.
func (s *journalService) Reverse(ctx context.Context, reference string, reason string, performedBy string) (*domain.Transaction, error) {
	original, err := s.repos.Transactions.FindByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", reference, err)
	}

	release, err := s.locker.Acquire(ctx, original.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", original.AccountNumber, err)
	}
	defer release()

	var reversal *domain.Transaction
	err = s.uow.WithinTx(ctx, func(r portsrepo.RepositoryProvider) error {
		// Re-read under the lock; the first read only located the account.
		original, err := r.Transactions.FindByReference(ctx, reference)
		if err != nil {
			return fmt.Errorf("failed to find transaction %s: %w", reference, err)
		}
		if original.IsReversed {
			return fmt.Errorf("%w: %s", ErrAlreadyReversed, reference)
		}
		if !domain.IsReversible(original.Type) {
			return fmt.Errorf("%w: %s", ErrNotReversible, original.Type)
		}

		account, err := r.Accounts.FindByNumber(ctx, original.AccountNumber)
		if err != nil {
			return fmt.Errorf("failed to load account %s: %w", original.AccountNumber, err)
		}

		now := time.Now().UTC()
		before, err := loadPositions(ctx, r, account, now)
		if err != nil {
			return err
		}
		after := domain.ApplyReversal(*original, before)

		originalRef := original.Reference
		entry := buildEntry(portssvc.EntrySpec{
			AccountNumber:    original.AccountNumber,
			Type:             domain.TxnReversal,
			Amount:           original.Amount,
			Description:      fmt.Sprintf("Reversal of %s: %s", originalRef, reason),
			PerformedBy:      performedBy,
			RelatedReference: &originalRef,
		}, before, after, now)
		if err := persistEntry(ctx, r, entry); err != nil {
			return err
		}
		if err := r.Transactions.MarkReversed(ctx, originalRef, entry.Reference, reason, now); err != nil {
			return fmt.Errorf("failed to mark %s reversed: %w", originalRef, err)
		}
		reversal = &entry
		return syncAccountPrincipal(ctx, r, account, &entry, performedBy)
	})
	if err != nil {
		return nil, err
	}

	s.publishEntryEvent(ctx, domain.EventTransactionCreated, reversal)
	s.LogInfo(ctx, "transaction reversed",
		slog.String("original_reference", reference),
		slog.String("reversal_reference", reversal.Reference))
	return reversal, nil
}

// GetTransaction retrieves a journal entry by its business reference.
func (s *journalService) GetTransaction(ctx context.Context, reference string) (*domain.Transaction, error) {
	tx, err := s.repos.Transactions.FindByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", reference, err)
	}
	return tx, nil
}

// ListTransactions retrieves a page of an account's journal, newest first.
func (s *journalService) ListTransactions(ctx context.Context, accountNumber string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	txns, nextToken, err := s.repos.Transactions.ListByAccount(ctx, accountNumber, params.Limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

// syncAccountPrincipal mirrors the entry's resulting principal onto the
// account row so account reads agree with the ledger without a join.
func syncAccountPrincipal(ctx context.Context, r portsrepo.RepositoryProvider, account *domain.Account, entry *domain.Transaction, updatedBy string) error {
	if account.PrincipalAmount.Equal(entry.PrincipalAfter) {
		return nil
	}
	account.PrincipalAmount = entry.PrincipalAfter
	account.LastUpdatedAt = entry.CreatedAt
	account.LastUpdatedBy = updatedBy
	if err := r.Accounts.Update(ctx, *account); err != nil {
		return fmt.Errorf("failed to sync account principal: %w", err)
	}
	return nil
}

// publishEntryEvent emits a transaction event after commit. Best effort; a
// sink failure never unwinds the ledger write.
func (s *journalService) publishEntryEvent(ctx context.Context, eventType string, entry *domain.Transaction) {
	if s.events == nil || entry == nil {
		return
	}
	event := domain.NewTransactionEvent(uuid.NewString(), eventType, entry, time.Now().UTC())
	if err := s.events.Publish(ctx, event); err != nil {
		s.LogWarn(ctx, "failed to publish transaction event",
			slog.String("reference", entry.Reference),
			slog.String("error", err.Error()))
	}
}
