package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementResult is the outcome of a capitalization or payout event on a
// single account. Settled is false when nothing had accrued and the
// settlement was a no-op; no journal entry is written in that case.
type SettlementResult struct {
	AccountNumber  string          `json:"accountNumber"`
	Reference      string          `json:"reference,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	PrincipalAfter decimal.Decimal `json:"principalAfter"`
	ProcessedOn    time.Time       `json:"processedOn"`
	Settled        bool            `json:"settled"`
}

// MaturityResult is the outcome of closing out a matured account.
type MaturityResult struct {
	AccountNumber  string          `json:"accountNumber"`
	Reference      string          `json:"reference"`
	MaturityAmount decimal.Decimal `json:"maturityAmount"`
	ProcessedOn    time.Time       `json:"processedOn"`
}

// BatchRunRequest selects the calendar date a batch job runs for.
// Defaults to today when absent.
type BatchRunRequest struct {
	Date *time.Time `json:"date" form:"date" time_format:"2006-01-02"`
}

// BatchResult aggregates the outcome of a batch run across accounts.
// Failed accounts are skipped and reported; they never abort the run.
type BatchResult struct {
	RunDate   time.Time `json:"runDate"`
	Processed int       `json:"processed"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
}
