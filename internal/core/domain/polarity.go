package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Polarity classifies how a transaction type moves the total balance.
type Polarity int

const (
	// PolarityCredit increases the total balance by the amount.
	PolarityCredit Polarity = iota
	// PolarityDebit decreases the total balance by the amount.
	PolarityDebit
	// PolarityNeutral moves value between kinds without changing the total.
	PolarityNeutral
	// PolarityStructural entries (closure, payout, interest credit,
	// reversal) carry balance positions computed by the owning engine
	// rather than a generic rule.
	PolarityStructural
)

// PolarityOf returns the polarity class for a transaction type.
func PolarityOf(t TransactionType) Polarity {
	switch t {
	case TxnInitialDeposit, TxnAdditionalDeposit, TxnInterestAccrual, TxnAdjustment:
		return PolarityCredit
	case TxnWithdrawal, TxnPartialWithdrawal, TxnPrematureWithdrawal, TxnFeeDebit, TxnPenalty, TxnTDSDeduction:
		return PolarityDebit
	case TxnInterestCapitalization:
		return PolarityNeutral
	default:
		return PolarityStructural
	}
}

// Apply derives the balance position after a transaction of the given type.
// Debits deduct from accrued interest first, then principal; partial
// withdrawals deduct from principal only. Structural types have no generic
// rule and must be recorded with explicit balances.
func Apply(t TransactionType, cur BalanceSet, amount decimal.Decimal) (BalanceSet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return BalanceSet{}, fmt.Errorf("transaction amount must be positive, got %s", amount)
	}

	next := cur
	switch t {
	case TxnInitialDeposit, TxnAdditionalDeposit, TxnAdjustment:
		next.Principal = cur.Principal.Add(amount)

	case TxnInterestAccrual:
		next.Interest = cur.Interest.Add(amount)

	case TxnInterestCapitalization:
		if cur.Interest.LessThan(amount) {
			return BalanceSet{}, fmt.Errorf("cannot capitalize %s: accrued interest is %s", amount, cur.Interest)
		}
		next.Principal = cur.Principal.Add(amount)
		next.Interest = cur.Interest.Sub(amount)

	case TxnPartialWithdrawal:
		if cur.Principal.LessThan(amount) {
			return BalanceSet{}, fmt.Errorf("insufficient principal %s for partial withdrawal of %s", cur.Principal, amount)
		}
		next.Principal = cur.Principal.Sub(amount)

	case TxnWithdrawal, TxnPrematureWithdrawal, TxnFeeDebit, TxnPenalty, TxnTDSDeduction:
		if cur.Total().LessThan(amount) {
			return BalanceSet{}, fmt.Errorf("insufficient balance %s for debit of %s", cur.Total(), amount)
		}
		if cur.Interest.GreaterThanOrEqual(amount) {
			next.Interest = cur.Interest.Sub(amount)
		} else {
			remaining := amount.Sub(cur.Interest)
			next.Interest = decimal.Zero
			next.Principal = cur.Principal.Sub(remaining)
		}

	default:
		return BalanceSet{}, fmt.Errorf("no generic balance rule for transaction type %s", t)
	}
	return next, nil
}

// reversibleTypes is the set of plain credits and debits that may be undone
// by a compensating REVERSAL entry. Structural and neutral types are not
// reversible.
var reversibleTypes = map[TransactionType]bool{
	TxnAdditionalDeposit: true,
	TxnInterestAccrual:   true,
	TxnInterestCredit:    true,
	TxnWithdrawal:        true,
	TxnPartialWithdrawal: true,
	TxnFeeDebit:          true,
	TxnPenalty:           true,
	TxnTDSDeduction:      true,
}

// IsReversible reports whether a transaction type may be reversed.
func IsReversible(t TransactionType) bool {
	return reversibleTypes[t]
}

// ApplyReversal derives the balance position after compensating the original
// transaction: each kind moves by the opposite of the delta the original
// applied to it. The compensation is exact per kind, so reversing restores
// the balance a never-occurred original would have left.
func ApplyReversal(original Transaction, cur BalanceSet) BalanceSet {
	return BalanceSet{
		Principal: cur.Principal.Add(original.PrincipalBefore.Sub(original.PrincipalAfter)),
		Interest:  cur.Interest.Add(original.InterestBefore.Sub(original.InterestAfter)),
	}
}

// CheckConservation verifies the ledger invariant on a recorded entry:
// the total moves by exactly +/- amount per the type's polarity, and the
// per-kind positions sum to the recorded totals.
func CheckConservation(tx Transaction) error {
	if !tx.PrincipalBefore.Add(tx.InterestBefore).Equal(tx.TotalBefore) {
		return fmt.Errorf("transaction %s: balance-before kinds do not sum to total", tx.Reference)
	}
	if !tx.PrincipalAfter.Add(tx.InterestAfter).Equal(tx.TotalAfter) {
		return fmt.Errorf("transaction %s: balance-after kinds do not sum to total", tx.Reference)
	}

	delta := tx.TotalAfter.Sub(tx.TotalBefore)
	switch PolarityOf(tx.Type) {
	case PolarityCredit:
		if !delta.Equal(tx.Amount) {
			return fmt.Errorf("transaction %s: credit of %s moved total by %s", tx.Reference, tx.Amount, delta)
		}
	case PolarityDebit:
		if !delta.Equal(tx.Amount.Neg()) {
			return fmt.Errorf("transaction %s: debit of %s moved total by %s", tx.Reference, tx.Amount, delta)
		}
	case PolarityNeutral:
		if !delta.IsZero() {
			return fmt.Errorf("transaction %s: capitalization moved total by %s", tx.Reference, delta)
		}
	case PolarityStructural:
		if tx.TotalAfter.IsNegative() {
			return fmt.Errorf("transaction %s: negative total balance %s", tx.Reference, tx.TotalAfter)
		}
	}
	return nil
}
