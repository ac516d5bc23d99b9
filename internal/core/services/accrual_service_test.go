package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fdlabs/fd_deposit_core/internal/apperrors"
	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
	"github.com/fdlabs/fd_deposit_core/internal/core/services"
)

type AccrualServiceTestSuite struct {
	suite.Suite
	mockAccounts  *MockAccountRepository
	mockTxns      *MockTransactionRepository
	mockBalances  *MockBalanceRepository
	mockSchedules *MockScheduleRepository
	mockJournal   *MockJournalEntry
	repos         portsrepo.RepositoryProvider
	sink          *recordingEventSink
	service       portssvc.AccrualSvcFacade
	runDate       time.Time
}

func (suite *AccrualServiceTestSuite) SetupTest() {
	suite.mockAccounts = new(MockAccountRepository)
	suite.mockTxns = new(MockTransactionRepository)
	suite.mockBalances = new(MockBalanceRepository)
	suite.mockSchedules = new(MockScheduleRepository)
	suite.mockJournal = new(MockJournalEntry)
	suite.repos = portsrepo.RepositoryProvider{
		Accounts:     suite.mockAccounts,
		Transactions: suite.mockTxns,
		Balances:     suite.mockBalances,
		Schedules:    suite.mockSchedules,
	}
	suite.sink = &recordingEventSink{}
	suite.service = services.NewAccrualService(
		suite.repos,
		&fakeUnitOfWork{repos: suite.repos},
		noopLocker{},
		suite.mockJournal,
		services.NewInterestService(decimal.NewFromInt(40000)),
		suite.sink,
		2,
	)
	suite.runDate = time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
}

func (suite *AccrualServiceTestSuite) accruableAccount(number string) *domain.Account {
	return &domain.Account{
		AccountNumber:   number,
		Status:          domain.StatusActive,
		PrincipalAmount: decimal.NewFromInt(100000),
		InterestRate:    decimal.NewFromInt(8),
		EffectiveDate:   time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		MaturityDate:    time.Date(2027, 2, 15, 0, 0, 0, 0, time.UTC),
	}
}

func (suite *AccrualServiceTestSuite) expectAccrualFlow(account *domain.Account) {
	number := account.AccountNumber
	suite.mockAccounts.On("FindByNumber", mock.Anything, number).Return(account, nil).Once()
	suite.mockSchedules.On("LastProcessed", mock.Anything, number, portsrepo.ScheduleAccrual).
		Return(nil, nil).Once()
	suite.mockTxns.On("ExistsOnDate", mock.Anything, number, domain.TxnInterestAccrual, suite.runDate).
		Return(false, nil).Once()
	suite.mockBalances.On("LatestAsOf", mock.Anything, number, domain.BalancePrincipal, suite.runDate).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockBalances.On("LatestAsOf", mock.Anything, number, domain.BalanceInterestAccrued, suite.runDate).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockJournal.On("AppendEntry", mock.Anything, mock.Anything, mock.MatchedBy(func(spec portssvc.EntrySpec) bool {
		// One day at 8% on 100000: 100000*8*1/36500.
		return spec.AccountNumber == number &&
			spec.Type == domain.TxnInterestAccrual &&
			spec.Amount.Equal(decimal.RequireFromString("21.92")) &&
			spec.ValueDate.Equal(suite.runDate)
	})).Return(&domain.Transaction{
		Reference:     "TXN-20260815-AA11BB22",
		AccountNumber: number,
		Type:          domain.TxnInterestAccrual,
		Amount:        decimal.RequireFromString("21.92"),
	}, nil).Once()
	suite.mockSchedules.On("MarkProcessed", mock.Anything, number, portsrepo.ScheduleAccrual, suite.runDate).
		Return(nil).Once()
}

func (suite *AccrualServiceTestSuite) TestAccrueDaily_Success() {
	ctx := context.Background()
	account := suite.accruableAccount("FD0000000001")
	suite.expectAccrualFlow(account)

	entry, err := suite.service.AccrueDaily(ctx, account.AccountNumber, suite.runDate)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.True(entry.Amount.Equal(decimal.RequireFromString("21.92")))
	suite.Len(suite.sink.events, 1)
	suite.Equal(domain.EventInterestAccrued, suite.sink.events[0].EventType)
	suite.mockJournal.AssertExpectations(suite.T())
	suite.mockSchedules.AssertExpectations(suite.T())
}

func (suite *AccrualServiceTestSuite) TestAccrueDaily_MarkerAlreadySet() {
	ctx := context.Background()
	account := suite.accruableAccount("FD0000000001")

	suite.mockAccounts.On("FindByNumber", mock.Anything, account.AccountNumber).Return(account, nil).Once()
	suite.mockSchedules.On("LastProcessed", mock.Anything, account.AccountNumber, portsrepo.ScheduleAccrual).
		Return(&suite.runDate, nil).Once()

	entry, err := suite.service.AccrueDaily(ctx, account.AccountNumber, suite.runDate)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockTxns.AssertNotCalled(suite.T(), "ExistsOnDate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockJournal.AssertNotCalled(suite.T(), "AppendEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccrualServiceTestSuite) TestAccrueDaily_JournalAlreadyHasEntry() {
	// The marker can lag the journal after a restore; the journal wins.
	ctx := context.Background()
	account := suite.accruableAccount("FD0000000001")

	suite.mockAccounts.On("FindByNumber", mock.Anything, account.AccountNumber).Return(account, nil).Once()
	suite.mockSchedules.On("LastProcessed", mock.Anything, account.AccountNumber, portsrepo.ScheduleAccrual).
		Return(nil, nil).Once()
	suite.mockTxns.On("ExistsOnDate", mock.Anything, account.AccountNumber, domain.TxnInterestAccrual, suite.runDate).
		Return(true, nil).Once()

	entry, err := suite.service.AccrueDaily(ctx, account.AccountNumber, suite.runDate)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockJournal.AssertNotCalled(suite.T(), "AppendEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccrualServiceTestSuite) TestAccrueDaily_MaturedAccount() {
	ctx := context.Background()
	account := suite.accruableAccount("FD0000000001")
	account.MaturityDate = suite.runDate

	suite.mockAccounts.On("FindByNumber", mock.Anything, account.AccountNumber).Return(account, nil).Once()

	entry, err := suite.service.AccrueDaily(ctx, account.AccountNumber, suite.runDate)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, services.ErrNotAccruable)
}

func (suite *AccrualServiceTestSuite) TestAccrueDaily_SuspendedAccount() {
	ctx := context.Background()
	account := suite.accruableAccount("FD0000000001")
	account.Status = domain.StatusSuspended

	suite.mockAccounts.On("FindByNumber", mock.Anything, account.AccountNumber).Return(account, nil).Once()

	entry, err := suite.service.AccrueDaily(ctx, account.AccountNumber, suite.runDate)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, services.ErrNotAccruable)
}

func (suite *AccrualServiceTestSuite) TestRunDailyAccrual_CountsOutcomes() {
	ctx := context.Background()
	accrued := suite.accruableAccount("FD0000000001")
	skipped := suite.accruableAccount("FD0000000002")

	suite.mockAccounts.On("ListActive", mock.Anything).Return([]domain.Account{*accrued, *skipped}, nil).Once()
	suite.expectAccrualFlow(accrued)
	suite.mockAccounts.On("FindByNumber", mock.Anything, skipped.AccountNumber).Return(skipped, nil).Once()
	suite.mockSchedules.On("LastProcessed", mock.Anything, skipped.AccountNumber, portsrepo.ScheduleAccrual).
		Return(&suite.runDate, nil).Once()

	result, err := suite.service.RunDailyAccrual(ctx, suite.runDate)

	suite.Require().NoError(err)
	suite.Equal(1, result.Processed)
	suite.Equal(1, result.Skipped)
	suite.Equal(0, result.Failed)
	suite.mockJournal.AssertExpectations(suite.T())
}

func TestAccrualServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccrualServiceTestSuite))
}
