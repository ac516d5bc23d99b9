package services

import (
	"github.com/shopspring/decimal"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
)

// InterestCalculatorSvc defines the pure interest arithmetic used across the
// engines. All returned amounts are rounded half-up to 2 decimal places;
// intermediate rates keep 10 places. Implementations must be deterministic
// and side-effect free. Every calculation validates its inputs (principal
// positive, rate non-negative, period positive) and fails with
// apperrors.ErrInvalidInterestInput otherwise.
type InterestCalculatorSvc interface {
	// SimpleInterest computes principal * rate * months / 1200.
	SimpleInterest(principal, annualRate decimal.Decimal, months int) (decimal.Decimal, error)

	// CompoundInterest computes monthly-compounded interest over the term.
	CompoundInterest(principal, annualRate decimal.Decimal, months int) (decimal.Decimal, error)

	// InterestFor dispatches to the method-specific formula.
	InterestFor(method domain.InterestMethod, principal, annualRate decimal.Decimal, months int) (decimal.Decimal, error)

	// MaturityAmount is principal plus the method-specific interest.
	MaturityAmount(method domain.InterestMethod, principal, annualRate decimal.Decimal, months int) (decimal.Decimal, error)

	// MonthlyInterest is the term interest spread evenly across the term.
	MonthlyInterest(method domain.InterestMethod, principal, annualRate decimal.Decimal, months int) (decimal.Decimal, error)

	// DailyInterest divides one month's interest by a 30-day month. The
	// basis is a single month regardless of the deposit's term.
	DailyInterest(method domain.InterestMethod, principal, annualRate decimal.Decimal) (decimal.Decimal, error)

	// InterestForDays is the daily interest times the day count.
	InterestForDays(method domain.InterestMethod, principal, annualRate decimal.Decimal, days int) (decimal.Decimal, error)

	// InterestForPeriod computes principal * rate/36500 * days, the exact
	// day-count convention used for accrual and early-closure settlement.
	// Distinct from InterestForDays; the two conventions are never mixed.
	InterestForPeriod(principal, annualRate decimal.Decimal, days int) (decimal.Decimal, error)

	// TDSAmount computes the tax withheld on an interest amount. Zero when
	// not applicable, when the interest is not positive, or when the
	// interest is below the exemption threshold.
	TDSAmount(interest, tdsRate decimal.Decimal, applicable bool) decimal.Decimal
}

// InterestSvcFacade is the full calculator surface.
type InterestSvcFacade interface {
	InterestCalculatorSvc
}
