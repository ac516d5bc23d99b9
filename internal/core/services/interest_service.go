package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fdlabs/fd_deposit_core/internal/apperrors"
	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
)

var (
	twelveHundred = decimal.NewFromInt(1200) // percent denominator times 12 months
	hundred       = decimal.NewFromInt(100)
	daysPerMonth  = decimal.NewFromInt(30)
	percentYear   = decimal.NewFromInt(36500) // percent denominator times 365 days
)

// ratePrecision is the scale kept on intermediate periodic rates before the
// final 2-decimal rounding of amounts.
const ratePrecision = 10

// interestService implements the deterministic interest arithmetic. Amounts
// round half-up to 2 decimal places at the end of each formula, never in the
// middle.
type interestService struct {
	tdsThreshold decimal.Decimal
}

// NewInterestService creates the interest calculator. tdsThreshold is the
// exemption limit below which no tax is withheld.
func NewInterestService(tdsThreshold decimal.Decimal) portssvc.InterestSvcFacade {
	return &interestService{tdsThreshold: tdsThreshold}
}

var _ portssvc.InterestSvcFacade = (*interestService)(nil)

// validateInterestInputs rejects unusable inputs before any arithmetic runs:
// principal must be positive, the rate non-negative, the period positive.
func validateInterestInputs(principal, annualRate decimal.Decimal, period int) error {
	if !principal.IsPositive() {
		return fmt.Errorf("%w: principal must be positive, got %s", apperrors.ErrInvalidInterestInput, principal)
	}
	if annualRate.IsNegative() {
		return fmt.Errorf("%w: rate must be non-negative, got %s", apperrors.ErrInvalidInterestInput, annualRate)
	}
	if period <= 0 {
		return fmt.Errorf("%w: period must be positive, got %d", apperrors.ErrInvalidInterestInput, period)
	}
	return nil
}

// SimpleInterest computes principal * rate * months / 1200.
func (s *interestService) SimpleInterest(principal, annualRate decimal.Decimal, months int) (decimal.Decimal, error) {
	if err := validateInterestInputs(principal, annualRate, months); err != nil {
		return decimal.Zero, err
	}
	return principal.
		Mul(annualRate).
		Mul(decimal.NewFromInt(int64(months))).
		DivRound(twelveHundred, 2), nil
}

// CompoundInterest compounds monthly: principal * (1 + rate/1200)^months - principal.
func (s *interestService) CompoundInterest(principal, annualRate decimal.Decimal, months int) (decimal.Decimal, error) {
	if err := validateInterestInputs(principal, annualRate, months); err != nil {
		return decimal.Zero, err
	}
	monthlyRate := annualRate.DivRound(twelveHundred, ratePrecision)
	factor := decimal.NewFromInt(1).Add(monthlyRate).Pow(decimal.NewFromInt(int64(months)))
	return principal.Mul(factor).Sub(principal).Round(2), nil
}

// InterestFor dispatches to the method-specific formula. An unknown method
// falls back to simple interest.
func (s *interestService) InterestFor(method domain.InterestMethod, principal, annualRate decimal.Decimal, months int) (decimal.Decimal, error) {
	if method == domain.MethodCompound {
		return s.CompoundInterest(principal, annualRate, months)
	}
	return s.SimpleInterest(principal, annualRate, months)
}

// MaturityAmount is principal plus the term interest.
func (s *interestService) MaturityAmount(method domain.InterestMethod, principal, annualRate decimal.Decimal, months int) (decimal.Decimal, error) {
	interest, err := s.InterestFor(method, principal, annualRate, months)
	if err != nil {
		return decimal.Zero, err
	}
	return principal.Add(interest), nil
}

// MonthlyInterest spreads the term interest evenly across the term months.
func (s *interestService) MonthlyInterest(method domain.InterestMethod, principal, annualRate decimal.Decimal, months int) (decimal.Decimal, error) {
	total, err := s.InterestFor(method, principal, annualRate, months)
	if err != nil {
		return decimal.Zero, err
	}
	return total.DivRound(decimal.NewFromInt(int64(months)), 2), nil
}

// DailyInterest divides one month's interest by a 30-day month. The basis is
// always a single month, regardless of the deposit's term.
func (s *interestService) DailyInterest(method domain.InterestMethod, principal, annualRate decimal.Decimal) (decimal.Decimal, error) {
	oneMonth, err := s.InterestFor(method, principal, annualRate, 1)
	if err != nil {
		return decimal.Zero, err
	}
	return oneMonth.DivRound(daysPerMonth, 2), nil
}

// InterestForDays is the daily interest times the day count.
func (s *interestService) InterestForDays(method domain.InterestMethod, principal, annualRate decimal.Decimal, days int) (decimal.Decimal, error) {
	if err := validateInterestInputs(principal, annualRate, days); err != nil {
		return decimal.Zero, err
	}
	daily, err := s.DailyInterest(method, principal, annualRate)
	if err != nil {
		return decimal.Zero, err
	}
	return daily.Mul(decimal.NewFromInt(int64(days))), nil
}

// InterestForPeriod computes principal * rate/36500 * days. This exact
// day-count convention settles accruals and early closures; it is not
// interchangeable with InterestForDays.
func (s *interestService) InterestForPeriod(principal, annualRate decimal.Decimal, days int) (decimal.Decimal, error) {
	if err := validateInterestInputs(principal, annualRate, days); err != nil {
		return decimal.Zero, err
	}
	return principal.
		Mul(annualRate).
		Mul(decimal.NewFromInt(int64(days))).
		DivRound(percentYear, 2), nil
}

// TDSAmount withholds tax on an interest amount. Interest below the
// exemption threshold is withheld at zero, not pro-rated.
func (s *interestService) TDSAmount(interest, tdsRate decimal.Decimal, applicable bool) decimal.Decimal {
	if !applicable || interest.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if interest.LessThan(s.tdsThreshold) {
		return decimal.Zero
	}
	return interest.Mul(tdsRate).DivRound(hundred, 2)
}
