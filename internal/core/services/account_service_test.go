package services_test

import (
	"context"
	"strings"
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
	"github.com/fdlabs/fd_deposit_core/internal/dto"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccounts *MockAccountRepository
	mockJournal  *MockJournalEntry
	mockProducts *MockProductCatalog
	repos        portsrepo.RepositoryProvider
	sink         *recordingEventSink
	service      portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccounts = new(MockAccountRepository)
	suite.mockJournal = new(MockJournalEntry)
	suite.mockProducts = new(MockProductCatalog)
	suite.repos = portsrepo.RepositoryProvider{
		Accounts:     suite.mockAccounts,
		Transactions: new(MockTransactionRepository),
		Balances:     new(MockBalanceRepository),
		Schedules:    new(MockScheduleRepository),
	}
	suite.sink = &recordingEventSink{}
	suite.service = services.NewAccountService(
		suite.repos,
		&fakeUnitOfWork{repos: suite.repos},
		noopLocker{},
		suite.mockProducts,
		suite.mockJournal,
		suite.sink,
	)
}

func (suite *AccountServiceTestSuite) product() *domain.Product {
	return &domain.Product{
		ProductCode:   "FD-STD",
		ProductName:   "Standard Fixed Deposit",
		BaseRate:      decimal.RequireFromString("7.0"),
		MinAmount:     decimal.NewFromInt(1000),
		MaxAmount:     decimal.NewFromInt(1000000),
		MinTermMonths: 6,
		MaxTermMonths: 60,
		TDSApplicable: true,
		TDSRate:       decimal.NewFromInt(10),
	}
}

func (suite *AccountServiceTestSuite) openRequest() dto.OpenAccountRequest {
	effective := domain.DateOnly(time.Now().UTC()).AddDate(0, 0, -10)
	return dto.OpenAccountRequest{
		AccountName:       "Household savings",
		CustomerID:        "cust-1",
		ProductCode:       "FD-STD",
		PrincipalAmount:   decimal.NewFromInt(100000),
		TermMonths:        12,
		CalculationMethod: "SIMPLE",
		PayoutFrequency:   "ON_MATURITY",
		EffectiveDate:     &effective,
	}
}

func (suite *AccountServiceTestSuite) expectCatalog() {
	suite.mockProducts.On("GetProduct", mock.Anything, "FD-STD").Return(suite.product(), nil).Once()
	suite.mockProducts.On("GetCustomer", mock.Anything, "cust-1").
		Return(&domain.Customer{CustomerID: "cust-1", Status: "ACTIVE"}, nil).Once()
}

func (suite *AccountServiceTestSuite) TestOpenAccount_Success() {
	ctx := context.Background()
	req := suite.openRequest()
	effective := *req.EffectiveDate

	suite.expectCatalog()
	suite.mockAccounts.On("Save", mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return strings.HasPrefix(a.AccountNumber, "FD") &&
			a.Status == domain.StatusActive &&
			a.PrincipalAmount.Equal(req.PrincipalAmount) &&
			a.InterestRate.Equal(decimal.RequireFromString("7.0")) &&
			a.TDSApplicable &&
			a.MaturityDate.Equal(effective.AddDate(0, 12, 0))
	})).Return(nil).Once()
	suite.mockJournal.On("AppendEntry", mock.Anything, mock.Anything, mock.MatchedBy(func(spec portssvc.EntrySpec) bool {
		return spec.Type == domain.TxnInitialDeposit &&
			spec.Amount.Equal(req.PrincipalAmount) &&
			spec.ValueDate.Equal(effective)
	})).Return(&domain.Transaction{
		Reference: "TXN-20260801-0A0B0C0D",
		Type:      domain.TxnInitialDeposit,
		Amount:    req.PrincipalAmount,
	}, nil).Once()

	account, err := suite.service.OpenAccount(ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.Len(account.AccountNumber, 14)
	suite.Equal(domain.MethodSimple, account.CalculationMethod)
	suite.Equal(domain.FrequencyOnMaturity, account.PayoutFrequency)
	suite.Equal("user-1", account.CreatedBy)
	suite.Len(suite.sink.events, 1)
	suite.Equal(domain.EventAccountCreated, suite.sink.events[0].EventType)
	suite.mockAccounts.AssertExpectations(suite.T())
	suite.mockJournal.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestOpenAccount_UnknownProduct() {
	ctx := context.Background()
	req := suite.openRequest()

	suite.mockProducts.On("GetProduct", mock.Anything, "FD-STD").Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.OpenAccount(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, services.ErrUnknownProduct)
	suite.mockAccounts.AssertNotCalled(suite.T(), "Save", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestOpenAccount_UnknownCustomer() {
	ctx := context.Background()
	req := suite.openRequest()

	suite.mockProducts.On("GetProduct", mock.Anything, "FD-STD").Return(suite.product(), nil).Once()
	suite.mockProducts.On("GetCustomer", mock.Anything, "cust-1").Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.OpenAccount(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, services.ErrUnknownCustomer)
}

func (suite *AccountServiceTestSuite) TestOpenAccount_AmountBelowMinimum() {
	ctx := context.Background()
	req := suite.openRequest()
	req.PrincipalAmount = decimal.NewFromInt(500)

	suite.expectCatalog()

	account, err := suite.service.OpenAccount(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, services.ErrAmountOutOfRange)
}

func (suite *AccountServiceTestSuite) TestOpenAccount_TermTooLong() {
	ctx := context.Background()
	req := suite.openRequest()
	req.TermMonths = 120

	suite.expectCatalog()

	account, err := suite.service.OpenAccount(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, services.ErrTermOutOfRange)
}

func (suite *AccountServiceTestSuite) TestOpenAccount_UnknownMethod() {
	ctx := context.Background()
	req := suite.openRequest()
	req.CalculationMethod = "EXOTIC"

	suite.expectCatalog()

	account, err := suite.service.OpenAccount(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, services.ErrInvalidMethod)
}

func (suite *AccountServiceTestSuite) TestOpenAccount_UnknownFrequency() {
	ctx := context.Background()
	req := suite.openRequest()
	req.PayoutFrequency = "WEEKLY"

	suite.expectCatalog()

	account, err := suite.service.OpenAccount(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, services.ErrInvalidFrequency)
}

func (suite *AccountServiceTestSuite) TestOpenAccount_FutureEffectiveDate() {
	ctx := context.Background()
	req := suite.openRequest()
	future := time.Now().UTC().AddDate(0, 0, 7)
	req.EffectiveDate = &future

	suite.expectCatalog()

	account, err := suite.service.OpenAccount(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, services.ErrEffectiveDateFuture)
}

func (suite *AccountServiceTestSuite) TestSuspendAccount_Success() {
	ctx := context.Background()
	account := &domain.Account{
		AccountNumber: "FD0000000001",
		Status:        domain.StatusActive,
	}

	suite.mockAccounts.On("FindByNumber", mock.Anything, account.AccountNumber).Return(account, nil).Once()
	suite.mockAccounts.On("Update", mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.Status == domain.StatusSuspended && a.LastUpdatedBy == "user-1"
	})).Return(nil).Once()

	err := suite.service.SuspendAccount(ctx, account.AccountNumber, "user-1")

	suite.Require().NoError(err)
	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestSuspendAccount_TerminalStatus() {
	ctx := context.Background()
	account := &domain.Account{
		AccountNumber: "FD0000000001",
		Status:        domain.StatusMatured,
	}

	suite.mockAccounts.On("FindByNumber", mock.Anything, account.AccountNumber).Return(account, nil).Once()

	err := suite.service.SuspendAccount(ctx, account.AccountNumber, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidTransition)
	suite.mockAccounts.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestReactivateAccount_Success() {
	ctx := context.Background()
	account := &domain.Account{
		AccountNumber: "FD0000000001",
		Status:        domain.StatusSuspended,
	}

	suite.mockAccounts.On("FindByNumber", mock.Anything, account.AccountNumber).Return(account, nil).Once()
	suite.mockAccounts.On("Update", mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.Status == domain.StatusActive
	})).Return(nil).Once()

	err := suite.service.ReactivateAccount(ctx, account.AccountNumber, "user-1")

	suite.Require().NoError(err)
	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestReactivateAccount_AlreadyActive() {
	ctx := context.Background()
	account := &domain.Account{
		AccountNumber: "FD0000000001",
		Status:        domain.StatusActive,
	}

	suite.mockAccounts.On("FindByNumber", mock.Anything, account.AccountNumber).Return(account, nil).Once()

	err := suite.service.ReactivateAccount(ctx, account.AccountNumber, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidTransition)
}

func (suite *AccountServiceTestSuite) TestGetAccountByIBAN() {
	ctx := context.Background()
	account := &domain.Account{AccountNumber: "FD0000000001", IBAN: "DE89370400440532013000"}

	suite.mockAccounts.On("FindByIBAN", ctx, account.IBAN).Return(account, nil).Once()

	got, err := suite.service.GetAccountByIBAN(ctx, account.IBAN)

	suite.Require().NoError(err)
	suite.Equal(account, got)
}

func (suite *AccountServiceTestSuite) TestListAccountsByCustomer_PassesPageThrough() {
	ctx := context.Background()
	next := "token-9"
	accounts := []domain.Account{{AccountNumber: "FD0000000001", CustomerID: "cust-1"}}

	suite.mockAccounts.On("ListByCustomer", ctx, "cust-1", 20, (*string)(nil)).Return(accounts, &next, nil).Once()

	page, err := suite.service.ListAccountsByCustomer(ctx, "cust-1", dto.ListAccountsParams{Limit: 20})

	suite.Require().NoError(err)
	suite.Require().Len(page.Accounts, 1)
	suite.Equal("FD0000000001", page.Accounts[0].AccountNumber)
	suite.Require().NotNil(page.NextToken)
	suite.Equal(next, *page.NextToken)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
