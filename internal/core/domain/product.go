package domain

import "github.com/shopspring/decimal"

// Product is master data for a fixed deposit product, consumed from the
// product service. The core never defaults business terms: a failed product
// lookup fails the operation that needed it.
type Product struct {
	ProductCode                string           `json:"productCode"`
	ProductName                string           `json:"productName"`
	BaseRate                   decimal.Decimal  `json:"baseRate"` // Percent per annum
	MinAmount                  decimal.Decimal  `json:"minAmount"`
	MaxAmount                  decimal.Decimal  `json:"maxAmount"`
	MinTermMonths              int              `json:"minTermMonths"`
	MaxTermMonths              int              `json:"maxTermMonths"`
	TDSApplicable              bool             `json:"tdsApplicable"`
	TDSRate                    decimal.Decimal  `json:"tdsRate"` // Percent
	PrematureWithdrawalAllowed bool             `json:"prematureWithdrawalAllowed"`
	PartialWithdrawalAllowed   bool             `json:"partialWithdrawalAllowed"`
	MinBalanceRequired         *decimal.Decimal `json:"minBalanceRequired"` // Nullable; falls back to MinAmount
}

// MinBalance returns the minimum balance a partial withdrawal must leave,
// defaulting to the product minimum amount when unset.
func (p *Product) MinBalance() decimal.Decimal {
	if p.MinBalanceRequired != nil {
		return *p.MinBalanceRequired
	}
	return p.MinAmount
}

// Customer is the subset of customer master data the core consumes.
type Customer struct {
	CustomerID string `json:"customerID"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Status     string `json:"status"`
}
