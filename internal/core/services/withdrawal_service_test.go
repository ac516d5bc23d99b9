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
	"github.com/fdlabs/fd_deposit_core/internal/dto"
)

type WithdrawalServiceTestSuite struct {
	suite.Suite
	mockAccounts *MockAccountRepository
	mockBalances *MockBalanceRepository
	mockJournal  *MockJournalEntry
	mockProducts *MockProductCatalog
	repos        portsrepo.RepositoryProvider
	sink         *recordingEventSink
	notifier     *recordingNotifier
	service      portssvc.WithdrawalSvcFacade
}

func (suite *WithdrawalServiceTestSuite) SetupTest() {
	suite.mockAccounts = new(MockAccountRepository)
	suite.mockBalances = new(MockBalanceRepository)
	suite.mockJournal = new(MockJournalEntry)
	suite.mockProducts = new(MockProductCatalog)
	suite.repos = portsrepo.RepositoryProvider{
		Accounts:     suite.mockAccounts,
		Transactions: new(MockTransactionRepository),
		Balances:     suite.mockBalances,
		Schedules:    new(MockScheduleRepository),
	}
	suite.sink = &recordingEventSink{}
	suite.notifier = &recordingNotifier{}
	suite.service = services.NewWithdrawalService(
		suite.repos,
		&fakeUnitOfWork{repos: suite.repos},
		noopLocker{},
		suite.mockJournal,
		services.NewInterestService(decimal.NewFromInt(40000)),
		suite.mockProducts,
		suite.sink,
		suite.notifier,
		decimal.NewFromInt(2),
	)
}

// depositAccount is 180 days into a 365-day term at 8% with tax withheld
// at 10%.
func (suite *WithdrawalServiceTestSuite) depositAccount(asOf time.Time) *domain.Account {
	effective := domain.DateOnly(asOf).AddDate(0, 0, -180)
	return &domain.Account{
		AccountNumber:   "FD0000000001",
		Status:          domain.StatusActive,
		PrincipalAmount: decimal.NewFromInt(100000),
		InterestRate:    decimal.NewFromInt(8),
		TermMonths:      12,
		EffectiveDate:   effective,
		MaturityDate:    effective.AddDate(0, 0, 365),
		ProductCode:     "FD-STD",
		TDSApplicable:   true,
		TDSRate:         decimal.NewFromInt(10),
	}
}

func (suite *WithdrawalServiceTestSuite) standardProduct() *domain.Product {
	minBalance := decimal.NewFromInt(10000)
	return &domain.Product{
		ProductCode:                "FD-STD",
		BaseRate:                   decimal.NewFromInt(8),
		MinAmount:                  decimal.NewFromInt(1000),
		PrematureWithdrawalAllowed: true,
		PartialWithdrawalAllowed:   true,
		MinBalanceRequired:         &minBalance,
	}
}

func (suite *WithdrawalServiceTestSuite) expectPrincipalOnly(number string, principal int64) {
	suite.mockBalances.On("LatestAsOf", mock.Anything, number, domain.BalancePrincipal, mock.Anything).
		Return(&domain.BalanceSnapshot{Balance: decimal.NewFromInt(principal)}, nil).Once()
	suite.mockBalances.On("LatestAsOf", mock.Anything, number, domain.BalanceInterestAccrued, mock.Anything).
		Return(nil, apperrors.ErrNotFound).Once()
}

func (suite *WithdrawalServiceTestSuite) TestQuotePremature_PenaltyReducedFigures() {
	ctx := context.Background()
	asOf := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	account := suite.depositAccount(asOf)

	suite.mockAccounts.On("FindByNumber", ctx, account.AccountNumber).Return(account, nil).Once()
	suite.mockProducts.On("GetProduct", ctx, "FD-STD").Return(suite.standardProduct(), nil).Once()
	suite.expectPrincipalOnly(account.AccountNumber, 100000)

	quote, err := suite.service.QuotePremature(ctx, account.AccountNumber, asOf)

	suite.Require().NoError(err)
	suite.Equal(180, quote.DaysHeld)
	suite.True(quote.EffectiveRate.Equal(decimal.NewFromInt(8)))
	suite.True(quote.RevisedRate.Equal(decimal.NewFromInt(6)))
	suite.True(quote.InterestEarned.Equal(decimal.RequireFromString("2958.90")), "earned %s", quote.InterestEarned)
	suite.True(quote.NormalInterest.Equal(decimal.RequireFromString("3945.21")), "normal %s", quote.NormalInterest)
	suite.True(quote.PenaltyAmount.Equal(decimal.RequireFromString("986.30")), "penalty %s", quote.PenaltyAmount)
	// Withheld even though the earned interest sits far below the
	// standalone-projection exemption threshold.
	suite.True(quote.TDSAmount.Equal(decimal.RequireFromString("295.89")), "tds %s", quote.TDSAmount)
	// 100000 + 2958.90 - 295.89
	suite.True(quote.NetPayable.Equal(decimal.RequireFromString("102663.01")), "net %s", quote.NetPayable)
	suite.mockProducts.AssertExpectations(suite.T())
}

func (suite *WithdrawalServiceTestSuite) TestQuotePremature_RevisedRateFlooredAtZero() {
	ctx := context.Background()
	asOf := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	account := suite.depositAccount(asOf)
	account.InterestRate = decimal.RequireFromString("1.5")

	suite.mockAccounts.On("FindByNumber", ctx, account.AccountNumber).Return(account, nil).Once()
	suite.mockProducts.On("GetProduct", ctx, "FD-STD").Return(suite.standardProduct(), nil).Once()
	suite.expectPrincipalOnly(account.AccountNumber, 100000)

	quote, err := suite.service.QuotePremature(ctx, account.AccountNumber, asOf)

	suite.Require().NoError(err)
	suite.True(quote.RevisedRate.IsZero())
	suite.True(quote.InterestEarned.IsZero())
	suite.True(quote.PenaltyAmount.Equal(quote.NormalInterest))
	suite.False(quote.PenaltyAmount.IsNegative())
}

func (suite *WithdrawalServiceTestSuite) TestQuotePremature_ProductDisallows() {
	ctx := context.Background()
	asOf := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	account := suite.depositAccount(asOf)
	product := suite.standardProduct()
	product.PrematureWithdrawalAllowed = false

	suite.mockAccounts.On("FindByNumber", ctx, account.AccountNumber).Return(account, nil).Once()
	suite.mockProducts.On("GetProduct", ctx, "FD-STD").Return(product, nil).Once()

	quote, err := suite.service.QuotePremature(ctx, account.AccountNumber, asOf)

	suite.Require().Error(err)
	suite.Nil(quote)
	suite.ErrorIs(err, services.ErrPrematureNotAllowed)
}

func (suite *WithdrawalServiceTestSuite) TestQuotePremature_MaturedDeposit() {
	ctx := context.Background()
	asOf := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	account := suite.depositAccount(asOf)
	account.MaturityDate = asOf

	suite.mockAccounts.On("FindByNumber", ctx, account.AccountNumber).Return(account, nil).Once()

	quote, err := suite.service.QuotePremature(ctx, account.AccountNumber, asOf)

	suite.Require().Error(err)
	suite.Nil(quote)
	suite.ErrorIs(err, services.ErrDepositMatured)
	suite.mockProducts.AssertNotCalled(suite.T(), "GetProduct", mock.Anything, mock.Anything)
}

func (suite *WithdrawalServiceTestSuite) TestProcessPremature_ClosesAccount() {
	ctx := context.Background()
	account := suite.depositAccount(time.Now().UTC())

	suite.mockAccounts.On("FindByNumber", mock.Anything, account.AccountNumber).Return(account, nil).Once()
	suite.mockProducts.On("GetProduct", mock.Anything, "FD-STD").Return(suite.standardProduct(), nil).Once()
	suite.expectPrincipalOnly(account.AccountNumber, 100000)

	// Interest restated to the penalty-reduced figure.
	suite.mockJournal.On("AppendEntryWithBalances", mock.Anything, mock.Anything,
		mock.MatchedBy(func(spec portssvc.EntrySpec) bool {
			return spec.Type == domain.TxnInterestCredit &&
				spec.Amount.Equal(decimal.RequireFromString("2958.90"))
		}),
		mock.MatchedBy(func(after domain.BalanceSet) bool {
			return after.Principal.Equal(decimal.NewFromInt(100000)) &&
				after.Interest.Equal(decimal.RequireFromString("2958.90"))
		}),
	).Return(&domain.Transaction{
		Reference: "TXN-20260815-FEED0001",
		Type:      domain.TxnInterestCredit,
		Amount:    decimal.RequireFromString("2958.90"),
	}, nil).Once()

	suite.mockJournal.On("AppendEntry", mock.Anything, mock.Anything, mock.MatchedBy(func(spec portssvc.EntrySpec) bool {
		return spec.Type == domain.TxnTDSDeduction &&
			spec.Amount.Equal(decimal.RequireFromString("295.89"))
	})).Return(&domain.Transaction{
		Reference: "TXN-20260815-FEED0002",
		Type:      domain.TxnTDSDeduction,
		Amount:    decimal.RequireFromString("295.89"),
	}, nil).Once()

	suite.mockJournal.On("AppendEntryWithBalances", mock.Anything, mock.Anything,
		mock.MatchedBy(func(spec portssvc.EntrySpec) bool {
			return spec.Type == domain.TxnPrematureWithdrawal &&
				spec.Amount.Equal(decimal.RequireFromString("102663.01"))
		}),
		mock.MatchedBy(func(after domain.BalanceSet) bool {
			return after.Principal.IsZero() && after.Interest.IsZero()
		}),
	).Return(&domain.Transaction{
		Reference:      "TXN-20260815-FEED0003",
		AccountNumber:  account.AccountNumber,
		Type:           domain.TxnPrematureWithdrawal,
		Amount:         decimal.RequireFromString("102663.01"),
		PrincipalAfter: decimal.Zero,
		InterestAfter:  decimal.Zero,
	}, nil).Once()

	suite.mockAccounts.On("Update", mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.Status == domain.StatusClosed && a.PrincipalAmount.IsZero() && a.ClosureDate != nil
	})).Return(nil).Once()

	result, err := suite.service.ProcessPremature(ctx, account.AccountNumber, dto.PrematureWithdrawalRequest{}, "user-1")

	suite.Require().NoError(err)
	suite.True(result.AmountPaid.Equal(decimal.RequireFromString("102663.01")))
	suite.True(result.PrincipalAfter.IsZero())
	suite.Equal(string(domain.StatusClosed), result.AccountStatus)
	suite.Equal(1, suite.notifier.closures)
	suite.Len(suite.sink.events, 2)
	suite.mockJournal.AssertExpectations(suite.T())
	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *WithdrawalServiceTestSuite) TestProcessPremature_ExplicitWithdrawalDate() {
	ctx := context.Background()
	withdrawalDate := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	account := suite.depositAccount(withdrawalDate)

	suite.mockAccounts.On("FindByNumber", mock.Anything, account.AccountNumber).Return(account, nil).Once()
	suite.mockProducts.On("GetProduct", mock.Anything, "FD-STD").Return(suite.standardProduct(), nil).Once()
	suite.expectPrincipalOnly(account.AccountNumber, 100000)

	suite.mockJournal.On("AppendEntryWithBalances", mock.Anything, mock.Anything,
		mock.MatchedBy(func(spec portssvc.EntrySpec) bool {
			return spec.Type == domain.TxnInterestCredit &&
				spec.Amount.Equal(decimal.RequireFromString("2958.90")) &&
				spec.ValueDate.Equal(withdrawalDate)
		}),
		mock.Anything,
	).Return(&domain.Transaction{
		Reference: "TXN-20260815-FEED0005",
		Type:      domain.TxnInterestCredit,
		Amount:    decimal.RequireFromString("2958.90"),
	}, nil).Once()

	suite.mockJournal.On("AppendEntry", mock.Anything, mock.Anything, mock.MatchedBy(func(spec portssvc.EntrySpec) bool {
		return spec.Type == domain.TxnTDSDeduction && spec.ValueDate.Equal(withdrawalDate)
	})).Return(&domain.Transaction{
		Reference: "TXN-20260815-FEED0006",
		Type:      domain.TxnTDSDeduction,
		Amount:    decimal.RequireFromString("295.89"),
	}, nil).Once()

	suite.mockJournal.On("AppendEntryWithBalances", mock.Anything, mock.Anything,
		mock.MatchedBy(func(spec portssvc.EntrySpec) bool {
			return spec.Type == domain.TxnPrematureWithdrawal &&
				spec.Amount.Equal(decimal.RequireFromString("102663.01")) &&
				spec.ValueDate.Equal(withdrawalDate)
		}),
		mock.Anything,
	).Return(&domain.Transaction{
		Reference:      "TXN-20260815-FEED0007",
		AccountNumber:  account.AccountNumber,
		Type:           domain.TxnPrematureWithdrawal,
		Amount:         decimal.RequireFromString("102663.01"),
		PrincipalAfter: decimal.Zero,
		InterestAfter:  decimal.Zero,
	}, nil).Once()

	suite.mockAccounts.On("Update", mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.Status == domain.StatusClosed &&
			a.ClosureDate != nil &&
			a.ClosureDate.Equal(withdrawalDate)
	})).Return(nil).Once()

	result, err := suite.service.ProcessPremature(ctx, account.AccountNumber, dto.PrematureWithdrawalRequest{
		WithdrawalDate: &withdrawalDate,
	}, "user-1")

	suite.Require().NoError(err)
	suite.True(result.AmountPaid.Equal(decimal.RequireFromString("102663.01")))
	suite.mockJournal.AssertExpectations(suite.T())
	suite.mockAccounts.AssertExpectations(suite.T())
}

func (suite *WithdrawalServiceTestSuite) TestProcessPartial_Success() {
	ctx := context.Background()
	account := suite.depositAccount(time.Now().UTC())

	suite.mockAccounts.On("FindByNumber", mock.Anything, account.AccountNumber).Return(account, nil).Once()
	suite.mockProducts.On("GetProduct", mock.Anything, "FD-STD").Return(suite.standardProduct(), nil).Once()
	suite.expectPrincipalOnly(account.AccountNumber, 100000)
	suite.mockJournal.On("AppendEntry", mock.Anything, mock.Anything, mock.MatchedBy(func(spec portssvc.EntrySpec) bool {
		return spec.Type == domain.TxnPartialWithdrawal && spec.Amount.Equal(decimal.NewFromInt(20000))
	})).Return(&domain.Transaction{
		Reference:      "TXN-20260815-FEED0004",
		AccountNumber:  account.AccountNumber,
		Type:           domain.TxnPartialWithdrawal,
		Amount:         decimal.NewFromInt(20000),
		PrincipalAfter: decimal.NewFromInt(80000),
	}, nil).Once()
	suite.mockAccounts.On("Update", mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.PrincipalAmount.Equal(decimal.NewFromInt(80000))
	})).Return(nil).Once()

	result, err := suite.service.ProcessPartial(ctx, account.AccountNumber, dto.PartialWithdrawalRequest{
		Amount: decimal.NewFromInt(20000),
	}, "user-1")

	suite.Require().NoError(err)
	suite.True(result.AmountPaid.Equal(decimal.NewFromInt(20000)))
	suite.True(result.PrincipalAfter.Equal(decimal.NewFromInt(80000)))
	suite.Equal(string(domain.StatusActive), result.AccountStatus)
	suite.Len(suite.sink.events, 1)
	suite.mockJournal.AssertExpectations(suite.T())
}

func (suite *WithdrawalServiceTestSuite) TestProcessPartial_BelowMinimumBalance() {
	ctx := context.Background()
	account := suite.depositAccount(time.Now().UTC())

	suite.mockAccounts.On("FindByNumber", mock.Anything, account.AccountNumber).Return(account, nil).Once()
	suite.mockProducts.On("GetProduct", mock.Anything, "FD-STD").Return(suite.standardProduct(), nil).Once()
	suite.expectPrincipalOnly(account.AccountNumber, 100000)

	result, err := suite.service.ProcessPartial(ctx, account.AccountNumber, dto.PartialWithdrawalRequest{
		Amount: decimal.NewFromInt(95000),
	}, "user-1")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, services.ErrBelowMinBalance)
	suite.mockJournal.AssertNotCalled(suite.T(), "AppendEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WithdrawalServiceTestSuite) TestProcessPartial_ProductDisallows() {
	ctx := context.Background()
	account := suite.depositAccount(time.Now().UTC())
	product := suite.standardProduct()
	product.PartialWithdrawalAllowed = false

	suite.mockAccounts.On("FindByNumber", mock.Anything, account.AccountNumber).Return(account, nil).Once()
	suite.mockProducts.On("GetProduct", mock.Anything, "FD-STD").Return(product, nil).Once()

	result, err := suite.service.ProcessPartial(ctx, account.AccountNumber, dto.PartialWithdrawalRequest{
		Amount: decimal.NewFromInt(20000),
	}, "user-1")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, services.ErrPartialNotAllowed)
}

func (suite *WithdrawalServiceTestSuite) TestProcessPartial_NonPositiveAmount() {
	ctx := context.Background()

	result, err := suite.service.ProcessPartial(ctx, "FD0000000001", dto.PartialWithdrawalRequest{
		Amount: decimal.Zero,
	}, "user-1")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, services.ErrAmountNotPositive)
	suite.mockAccounts.AssertNotCalled(suite.T(), "FindByNumber", mock.Anything, mock.Anything)
}

func TestWithdrawalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WithdrawalServiceTestSuite))
}
