package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PrematureWithdrawalQuote is the preview of an early full closure.
// Interest earned is recomputed at the penalty-reduced rate for the days
// actually held; the forfeited difference is reported as the penalty.
type PrematureWithdrawalQuote struct {
	AccountNumber  string          `json:"accountNumber"`
	DaysHeld       int             `json:"daysHeld"`
	EffectiveRate  decimal.Decimal `json:"effectiveRate"`
	RevisedRate    decimal.Decimal `json:"revisedRate"`
	InterestEarned decimal.Decimal `json:"interestEarned"`
	NormalInterest decimal.Decimal `json:"normalInterest"`
	PenaltyAmount  decimal.Decimal `json:"penaltyAmount"`
	TDSAmount      decimal.Decimal `json:"tdsAmount"`
	NetPayable     decimal.Decimal `json:"netPayable"`
}

// PrematureWithdrawalRequest confirms an early full closure.
type PrematureWithdrawalRequest struct {
	WithdrawalDate *time.Time `json:"withdrawalDate"` // Optional, defaults to today
	Remarks        string     `json:"remarks"`
}

// PartialWithdrawalRequest defines the data for withdrawing part of the principal.
type PartialWithdrawalRequest struct {
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Remarks string          `json:"remarks"`
}

// WithdrawalResult is the outcome of a committed withdrawal.
type WithdrawalResult struct {
	Reference      string          `json:"reference"`
	AccountNumber  string          `json:"accountNumber"`
	AmountPaid     decimal.Decimal `json:"amountPaid"`
	PrincipalAfter decimal.Decimal `json:"principalAfter"`
	AccountStatus  string          `json:"accountStatus"`
}
