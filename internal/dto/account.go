package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
)

// OpenAccountRequest defines the data needed to open a new deposit account.
type OpenAccountRequest struct {
	AccountName        string           `json:"accountName" binding:"required"`
	CustomerID         string           `json:"customerID" binding:"required"`
	ProductCode        string           `json:"productCode" binding:"required"`
	PrincipalAmount    decimal.Decimal  `json:"principalAmount" binding:"required"`
	TermMonths         int              `json:"termMonths" binding:"required,gt=0"`
	CalculationMethod  string           `json:"calculationMethod" binding:"required,oneof=SIMPLE COMPOUND"`
	PayoutFrequency    string           `json:"payoutFrequency" binding:"required,oneof=MONTHLY QUARTERLY HALF_YEARLY YEARLY ON_MATURITY"`
	EffectiveDate      *time.Time       `json:"effectiveDate"`      // Optional, defaults to today
	CustomInterestRate *decimal.Decimal `json:"customInterestRate"` // Optional per-customer override
	IBAN               string           `json:"iban"`               // Optional
}

// AccountResponse defines the data returned for a deposit account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID          string           `json:"accountID"`
	AccountNumber      string           `json:"accountNumber"`
	IBAN               string           `json:"iban,omitempty"`
	AccountName        string           `json:"accountName"`
	CustomerID         string           `json:"customerID"`
	ProductCode        string           `json:"productCode"`
	Status             string           `json:"status"`
	PrincipalAmount    decimal.Decimal  `json:"principalAmount"`
	InterestRate       decimal.Decimal  `json:"interestRate"`
	CustomInterestRate *decimal.Decimal `json:"customInterestRate,omitempty"`
	TermMonths         int              `json:"termMonths"`
	EffectiveDate      time.Time        `json:"effectiveDate"`
	MaturityDate       time.Time        `json:"maturityDate"`
	ClosureDate        *time.Time       `json:"closureDate,omitempty"`
	CalculationMethod  string           `json:"calculationMethod"`
	PayoutFrequency    string           `json:"payoutFrequency"`
	TDSApplicable      bool             `json:"tdsApplicable"`
	CreatedAt          time.Time        `json:"createdAt"`
	CreatedBy          string           `json:"createdBy"`
	LastUpdatedAt      time.Time        `json:"lastUpdatedAt"`
	LastUpdatedBy      string           `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:          acc.AccountID,
		AccountNumber:      acc.AccountNumber,
		IBAN:               acc.IBAN,
		AccountName:        acc.AccountName,
		CustomerID:         acc.CustomerID,
		ProductCode:        acc.ProductCode,
		Status:             string(acc.Status),
		PrincipalAmount:    acc.PrincipalAmount,
		InterestRate:       acc.InterestRate,
		CustomInterestRate: acc.CustomInterestRate,
		TermMonths:         acc.TermMonths,
		EffectiveDate:      acc.EffectiveDate,
		MaturityDate:       acc.MaturityDate,
		ClosureDate:        acc.ClosureDate,
		CalculationMethod:  string(acc.CalculationMethod),
		PayoutFrequency:    string(acc.PayoutFrequency),
		TDSApplicable:      acc.TDSApplicable,
		CreatedAt:          acc.CreatedAt,
		CreatedBy:          acc.CreatedBy,
		LastUpdatedAt:      acc.LastUpdatedAt,
		LastUpdatedBy:      acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to response DTOs.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// ListAccountsParams defines query parameters for listing a customer's accounts.
type ListAccountsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListAccountsResponse wraps a page of accounts with the continuation token.
type ListAccountsResponse struct {
	Accounts  []AccountResponse `json:"accounts"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// BalanceResponse defines the data returned for a balance inquiry.
type BalanceResponse struct {
	AccountNumber   string          `json:"accountNumber"`
	Principal       decimal.Decimal `json:"principal"`
	InterestAccrued decimal.Decimal `json:"interestAccrued"`
	Total           decimal.Decimal `json:"total"`
	AsOfDate        time.Time       `json:"asOfDate"`
}
