package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceKind names a tracked balance dimension of an account.
type BalanceKind string

const (
	BalancePrincipal       BalanceKind = "PRINCIPAL"
	BalanceInterestAccrued BalanceKind = "INTEREST_ACCRUED"
	BalanceAvailable       BalanceKind = "AVAILABLE"
)

// BalanceSnapshot is an immutable, timestamped value of one balance kind.
// The current balance of a kind is the snapshot with the latest as-of date
// not after the query date; among snapshots on the same date the most
// recently recorded wins.
type BalanceSnapshot struct {
	SnapshotID    string          `json:"snapshotID"` // Primary key (UUID)
	AccountNumber string          `json:"accountNumber"`
	Kind          BalanceKind     `json:"kind"`
	Balance       decimal.Decimal `json:"balance"`
	AsOfDate      time.Time       `json:"asOfDate"`
	Description   string          `json:"description"`
	RecordedAt    time.Time       `json:"recordedAt"`
}

// BalanceSet is the principal/interest position of an account at a point in
// time. Available balance is derived, never stored independently of the sum.
type BalanceSet struct {
	Principal decimal.Decimal
	Interest  decimal.Decimal
}

// Total returns the available balance: principal plus accrued interest.
func (b BalanceSet) Total() decimal.Decimal {
	return b.Principal.Add(b.Interest)
}
