package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
	"github.com/fdlabs/fd_deposit_core/internal/core/services"
)

type MaturityServiceTestSuite struct {
	suite.Suite
	mockAccounts *MockAccountRepository
	mockBalances *MockBalanceRepository
	mockJournal  *MockJournalEntry
	repos        portsrepo.RepositoryProvider
	sink         *recordingEventSink
	notifier     *recordingNotifier
	service      portssvc.MaturitySvcFacade
}

func (suite *MaturityServiceTestSuite) SetupTest() {
	suite.mockAccounts = new(MockAccountRepository)
	suite.mockBalances = new(MockBalanceRepository)
	suite.mockJournal = new(MockJournalEntry)
	suite.repos = portsrepo.RepositoryProvider{
		Accounts:     suite.mockAccounts,
		Transactions: new(MockTransactionRepository),
		Balances:     suite.mockBalances,
		Schedules:    new(MockScheduleRepository),
	}
	suite.sink = &recordingEventSink{}
	suite.notifier = &recordingNotifier{}
	suite.service = services.NewMaturityService(
		suite.repos,
		&fakeUnitOfWork{repos: suite.repos},
		noopLocker{},
		suite.mockJournal,
		suite.sink,
		suite.notifier,
	)
}

func (suite *MaturityServiceTestSuite) maturedAccount(number string) *domain.Account {
	maturity := domain.DateOnly(time.Now().UTC())
	return &domain.Account{
		AccountNumber:   number,
		Status:          domain.StatusActive,
		PrincipalAmount: decimal.NewFromInt(100000),
		InterestRate:    decimal.NewFromInt(8),
		EffectiveDate:   maturity.AddDate(-1, 0, 0),
		MaturityDate:    maturity,
	}
}

func (suite *MaturityServiceTestSuite) expectPositions(number string, principal, interest int64) {
	suite.mockBalances.On("LatestAsOf", mock.Anything, number, domain.BalancePrincipal, mock.Anything).
		Return(&domain.BalanceSnapshot{Balance: decimal.NewFromInt(principal)}, nil).Once()
	suite.mockBalances.On("LatestAsOf", mock.Anything, number, domain.BalanceInterestAccrued, mock.Anything).
		Return(&domain.BalanceSnapshot{Balance: decimal.NewFromInt(interest)}, nil).Once()
}

func (suite *MaturityServiceTestSuite) expectPayoutFlow(number string) {
	suite.expectPositions(number, 100000, 8000)
	suite.mockJournal.On("AppendEntryWithBalances", mock.Anything, mock.Anything,
		mock.MatchedBy(func(spec portssvc.EntrySpec) bool {
			return spec.AccountNumber == number &&
				spec.Type == domain.TxnMaturityPayout &&
				spec.Amount.Equal(decimal.NewFromInt(108000))
		}),
		mock.MatchedBy(func(after domain.BalanceSet) bool {
			return after.Principal.IsZero() && after.Interest.IsZero()
		}),
	).Return(&domain.Transaction{
		Reference:      "TXN-20260815-BEEF0001",
		AccountNumber:  number,
		Type:           domain.TxnMaturityPayout,
		Amount:         decimal.NewFromInt(108000),
		PrincipalAfter: decimal.Zero,
		InterestAfter:  decimal.Zero,
	}, nil).Once()
	suite.mockAccounts.On("Update", mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.AccountNumber == number &&
			a.Status == domain.StatusMatured &&
			a.PrincipalAmount.IsZero() &&
			a.ClosureDate != nil
	})).Return(nil).Once()
}

func (suite *MaturityServiceTestSuite) TestProcessMaturity_PaysOutAndMarksMatured() {
	ctx := context.Background()
	account := suite.maturedAccount("FD0000000001")

	suite.mockAccounts.On("FindByNumber", mock.Anything, account.AccountNumber).Return(account, nil).Once()
	suite.expectPayoutFlow(account.AccountNumber)

	result, err := suite.service.ProcessMaturity(ctx, account.AccountNumber, "system")

	suite.Require().NoError(err)
	suite.True(result.MaturityAmount.Equal(decimal.NewFromInt(108000)))
	suite.Equal("TXN-20260815-BEEF0001", result.Reference)
	suite.Equal(1, suite.notifier.maturities)
	suite.Len(suite.sink.events, 1)
	suite.Equal(domain.EventMaturityProcessed, suite.sink.events[0].EventType)
	suite.mockJournal.AssertExpectations(suite.T())
	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *MaturityServiceTestSuite) TestProcessMaturity_NotYetMatured() {
	ctx := context.Background()
	account := suite.maturedAccount("FD0000000001")
	account.MaturityDate = domain.DateOnly(time.Now().UTC()).AddDate(0, 1, 0)

	suite.mockAccounts.On("FindByNumber", mock.Anything, account.AccountNumber).Return(account, nil).Once()

	result, err := suite.service.ProcessMaturity(ctx, account.AccountNumber, "system")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, services.ErrNotMatured)
	suite.mockJournal.AssertNotCalled(suite.T(), "AppendEntryWithBalances", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.Equal(0, suite.notifier.maturities)
}

func (suite *MaturityServiceTestSuite) TestProcessMaturity_SuspendedAccount() {
	ctx := context.Background()
	account := suite.maturedAccount("FD0000000001")
	account.Status = domain.StatusSuspended

	suite.mockAccounts.On("FindByNumber", mock.Anything, account.AccountNumber).Return(account, nil).Once()

	result, err := suite.service.ProcessMaturity(ctx, account.AccountNumber, "system")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, services.ErrAccountNotActive)
}

func (suite *MaturityServiceTestSuite) TestRunMaturityBatch_SkipsUnmatured() {
	ctx := context.Background()
	due := suite.maturedAccount("FD0000000001")
	notDue := suite.maturedAccount("FD0000000002")
	notDue.MaturityDate = domain.DateOnly(time.Now().UTC()).AddDate(0, 3, 0)

	suite.mockAccounts.On("ListActive", mock.Anything).Return([]domain.Account{*due, *notDue}, nil).Once()
	suite.mockAccounts.On("FindByNumber", mock.Anything, due.AccountNumber).Return(due, nil).Once()
	suite.expectPayoutFlow(due.AccountNumber)

	result, err := suite.service.RunMaturityBatch(ctx, time.Now().UTC())

	suite.Require().NoError(err)
	suite.Equal(1, result.Processed)
	suite.Equal(1, result.Skipped)
	suite.Equal(0, result.Failed)
	suite.mockJournal.AssertExpectations(suite.T())
}

func TestMaturityServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MaturityServiceTestSuite))
}
