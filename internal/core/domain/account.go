package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus is the lifecycle state of a fixed deposit account.
type AccountStatus string

const (
	StatusActive    AccountStatus = "ACTIVE"
	StatusSuspended AccountStatus = "SUSPENDED"
	StatusMatured   AccountStatus = "MATURED"
	StatusClosed    AccountStatus = "CLOSED"
)

// accountTransitions encodes the status state machine:
// ACTIVE -> {SUSPENDED, MATURED, CLOSED}; SUSPENDED -> ACTIVE;
// MATURED and CLOSED are terminal.
var accountTransitions = map[AccountStatus][]AccountStatus{
	StatusActive:    {StatusSuspended, StatusMatured, StatusClosed},
	StatusSuspended: {StatusActive},
	StatusMatured:   {},
	StatusClosed:    {},
}

// CanTransitionTo reports whether the status machine permits moving to next.
func (s AccountStatus) CanTransitionTo(next AccountStatus) bool {
	for _, allowed := range accountTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no outgoing transition exists for the status.
func (s AccountStatus) IsTerminal() bool {
	return len(accountTransitions[s]) == 0
}

// InterestMethod selects the interest calculation formula for an account.
type InterestMethod string

const (
	MethodSimple   InterestMethod = "SIMPLE"
	MethodCompound InterestMethod = "COMPOUND"
)

// PayoutFrequency controls when accrued interest is settled
// (capitalized into principal or paid out of the account).
type PayoutFrequency string

const (
	FrequencyMonthly    PayoutFrequency = "MONTHLY"
	FrequencyQuarterly  PayoutFrequency = "QUARTERLY"
	FrequencyHalfYearly PayoutFrequency = "HALF_YEARLY"
	FrequencyYearly     PayoutFrequency = "YEARLY"
	FrequencyOnMaturity PayoutFrequency = "ON_MATURITY"
)

// Account is a fixed deposit account within the core domain.
// Transactions and balance snapshots are stored separately, keyed by
// account number, and joined on read; the account itself carries no
// embedded collections.
type Account struct {
	AccountID          string           `json:"accountID"`     // Primary Key (UUID)
	AccountNumber      string           `json:"accountNumber"` // Business identifier (unique)
	IBAN               string           `json:"iban"`
	AccountName        string           `json:"accountName"`
	CustomerID         string           `json:"customerID"`
	ProductCode        string           `json:"productCode"`
	Status             AccountStatus    `json:"status"`
	PrincipalAmount    decimal.Decimal  `json:"principalAmount"`
	InterestRate       decimal.Decimal  `json:"interestRate"`       // Nominal annual rate, percent
	CustomInterestRate *decimal.Decimal `json:"customInterestRate"` // Customer-specific override, nullable
	TermMonths         int              `json:"termMonths"`
	EffectiveDate      time.Time        `json:"effectiveDate"`
	MaturityDate       time.Time        `json:"maturityDate"`
	ClosureDate        *time.Time       `json:"closureDate"` // Nullable until closed
	CalculationMethod  InterestMethod   `json:"calculationMethod"`
	PayoutFrequency    PayoutFrequency  `json:"payoutFrequency"`
	TDSApplicable      bool             `json:"tdsApplicable"`
	TDSRate            decimal.Decimal  `json:"tdsRate"` // Percent
	AuditFields
}

// EffectiveRate returns the customer-specific rate override when present,
// otherwise the nominal rate.
func (a *Account) EffectiveRate() decimal.Decimal {
	if a.CustomInterestRate != nil {
		return *a.CustomInterestRate
	}
	return a.InterestRate
}

// IsActive reports whether ledger-affecting operations are valid on the account.
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// IsMaturedAsOf reports whether the account's maturity date has been reached.
func (a *Account) IsMaturedAsOf(date time.Time) bool {
	return !DateOnly(date).Before(DateOnly(a.MaturityDate))
}
