package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByIBAN(ctx context.Context, iban string) (*domain.Account, error) {
	args := m.Called(ctx, iban)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListActive(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListByCustomer(ctx context.Context, customerID string, limit int, nextToken *string) ([]domain.Account, *string, error) {
	args := m.Called(ctx, customerID, limit, nextToken)
	var accounts []domain.Account
	if args.Get(0) != nil {
		accounts = args.Get(0).([]domain.Account)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return accounts, token, args.Error(2)
}

func (m *MockAccountRepository) Save(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) Update(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

var _ portsrepo.TransactionRepositoryFacade = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountNumber string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, accountNumber, limit, nextToken)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return txns, token, args.Error(2)
}

func (m *MockTransactionRepository) SumAmountByType(ctx context.Context, accountNumber string, txType domain.TransactionType) (decimal.Decimal, error) {
	args := m.Called(ctx, accountNumber, txType)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) ExistsOnDate(ctx context.Context, accountNumber string, txType domain.TransactionType, date time.Time) (bool, error) {
	args := m.Called(ctx, accountNumber, txType, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) Append(ctx context.Context, tx domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) MarkReversed(ctx context.Context, reference string, reversalReference string, reason string, reversedAt time.Time) error {
	args := m.Called(ctx, reference, reversalReference, reason, reversedAt)
	return args.Error(0)
}

// --- Mock BalanceRepository ---
type MockBalanceRepository struct {
	mock.Mock
}

var _ portsrepo.BalanceRepositoryFacade = (*MockBalanceRepository)(nil)

func (m *MockBalanceRepository) LatestAsOf(ctx context.Context, accountNumber string, kind domain.BalanceKind, asOf time.Time) (*domain.BalanceSnapshot, error) {
	args := m.Called(ctx, accountNumber, kind, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSnapshot), args.Error(1)
}

func (m *MockBalanceRepository) AppendSnapshot(ctx context.Context, snapshot domain.BalanceSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

// --- Mock ScheduleMarkerRepository ---
type MockScheduleRepository struct {
	mock.Mock
}

var _ portsrepo.ScheduleMarkerRepository = (*MockScheduleRepository)(nil)

func (m *MockScheduleRepository) LastProcessed(ctx context.Context, accountNumber string, kind portsrepo.ScheduleKind) (*time.Time, error) {
	args := m.Called(ctx, accountNumber, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockScheduleRepository) MarkProcessed(ctx context.Context, accountNumber string, kind portsrepo.ScheduleKind, day time.Time) error {
	args := m.Called(ctx, accountNumber, kind, day)
	return args.Error(0)
}

// --- Mock JournalEntrySvc ---
type MockJournalEntry struct {
	mock.Mock
}

var _ portssvc.JournalEntrySvc = (*MockJournalEntry)(nil)

func (m *MockJournalEntry) AppendEntry(ctx context.Context, r portsrepo.RepositoryProvider, spec portssvc.EntrySpec) (*domain.Transaction, error) {
	args := m.Called(ctx, r, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockJournalEntry) AppendEntryWithBalances(ctx context.Context, r portsrepo.RepositoryProvider, spec portssvc.EntrySpec, after domain.BalanceSet) (*domain.Transaction, error) {
	args := m.Called(ctx, r, spec, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

// --- Mock ProductCatalog ---
type MockProductCatalog struct {
	mock.Mock
}

var _ portssvc.ProductSvcFacade = (*MockProductCatalog)(nil)

func (m *MockProductCatalog) GetProduct(ctx context.Context, productCode string) (*domain.Product, error) {
	args := m.Called(ctx, productCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductCatalog) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

// --- In-memory test doubles ---

// fakeUnitOfWork runs the function against the suite's mock-backed
// repositories with no real transaction underneath.
type fakeUnitOfWork struct {
	repos portsrepo.RepositoryProvider
}

var _ portsrepo.UnitOfWork = (*fakeUnitOfWork)(nil)

func (u *fakeUnitOfWork) WithinTx(ctx context.Context, fn func(r portsrepo.RepositoryProvider) error) error {
	return fn(u.repos)
}

// noopLocker hands out the lock immediately.
type noopLocker struct{}

var _ portsrepo.AccountLocker = noopLocker{}

func (noopLocker) Acquire(ctx context.Context, accountNumber string) (func(), error) {
	return func() {}, nil
}

// recordingEventSink captures published events for assertions.
type recordingEventSink struct {
	events []domain.Event
}

var _ portssvc.EventSink = (*recordingEventSink)(nil)

func (s *recordingEventSink) Publish(ctx context.Context, event domain.Event) error {
	s.events = append(s.events, event)
	return nil
}

func (s *recordingEventSink) Close() error { return nil }

// recordingNotifier counts delivered notifications.
type recordingNotifier struct {
	maturities int
	closures   int
}

var _ portssvc.NotificationSink = (*recordingNotifier)(nil)

func (n *recordingNotifier) NotifyMaturity(ctx context.Context, account *domain.Account, maturityAmount decimal.Decimal) error {
	n.maturities++
	return nil
}

func (n *recordingNotifier) NotifyClosure(ctx context.Context, account *domain.Account, netPaid decimal.Decimal) error {
	n.closures++
	return nil
}
