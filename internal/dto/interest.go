package dto

import (
	"github.com/shopspring/decimal"
)

// InterestCalculationRequest defines the inputs for a standalone interest
// projection, independent of any stored account.
type InterestCalculationRequest struct {
	Principal  decimal.Decimal `json:"principal" binding:"required"`
	AnnualRate decimal.Decimal `json:"annualRate" binding:"required"`
	TermMonths int             `json:"termMonths" binding:"required,gt=0"`
	Method     string          `json:"method" binding:"required,oneof=SIMPLE COMPOUND"`
}

// InterestCalculationResponse carries the projected interest figures.
type InterestCalculationResponse struct {
	Principal       decimal.Decimal `json:"principal"`
	AnnualRate      decimal.Decimal `json:"annualRate"`
	TermMonths      int             `json:"termMonths"`
	Method          string          `json:"method"`
	InterestAmount  decimal.Decimal `json:"interestAmount"`
	MaturityAmount  decimal.Decimal `json:"maturityAmount"`
	MonthlyInterest decimal.Decimal `json:"monthlyInterest"`
	DailyInterest   decimal.Decimal `json:"dailyInterest"`
}
