package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fdlabs/fd_deposit_core/internal/apperrors"
	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
)

// staticCatalog is the built-in product catalog used when no product service
// is configured. Customer lookups accept any ID; product terms come from a
// fixed table.
type staticCatalog struct {
	products map[string]domain.Product
}

// NewStaticCatalog creates the built-in catalog.
func NewStaticCatalog() portssvc.ProductSvcFacade {
	minSenior := decimal.NewFromInt(5000)
	return &staticCatalog{
		products: map[string]domain.Product{
			"FD-STD": {
				ProductCode:                "FD-STD",
				ProductName:                "Standard Fixed Deposit",
				BaseRate:                   decimal.NewFromFloat(7.0),
				MinAmount:                  decimal.NewFromInt(1000),
				MaxAmount:                  decimal.NewFromInt(10000000),
				MinTermMonths:              3,
				MaxTermMonths:              120,
				TDSApplicable:              true,
				TDSRate:                    decimal.NewFromFloat(10.0),
				PrematureWithdrawalAllowed: true,
				PartialWithdrawalAllowed:   true,
			},
			"FD-SENIOR": {
				ProductCode:                "FD-SENIOR",
				ProductName:                "Senior Citizen Fixed Deposit",
				BaseRate:                   decimal.NewFromFloat(7.5),
				MinAmount:                  decimal.NewFromInt(1000),
				MaxAmount:                  decimal.NewFromInt(10000000),
				MinTermMonths:              3,
				MaxTermMonths:              120,
				TDSApplicable:              false,
				TDSRate:                    decimal.Zero,
				PrematureWithdrawalAllowed: true,
				PartialWithdrawalAllowed:   true,
				MinBalanceRequired:         &minSenior,
			},
			"FD-TAXSAVER": {
				ProductCode:                "FD-TAXSAVER",
				ProductName:                "Tax Saver Fixed Deposit",
				BaseRate:                   decimal.NewFromFloat(7.25),
				MinAmount:                  decimal.NewFromInt(10000),
				MaxAmount:                  decimal.NewFromInt(150000),
				MinTermMonths:              60,
				MaxTermMonths:              60,
				TDSApplicable:              true,
				TDSRate:                    decimal.NewFromFloat(10.0),
				PrematureWithdrawalAllowed: false,
				PartialWithdrawalAllowed:   false,
			},
		},
	}
}

var _ portssvc.ProductSvcFacade = (*staticCatalog)(nil)

func (c *staticCatalog) GetProduct(_ context.Context, productCode string) (*domain.Product, error) {
	product, ok := c.products[productCode]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, productCode)
	}
	return &product, nil
}

func (c *staticCatalog) GetCustomer(_ context.Context, customerID string) (*domain.Customer, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: empty customer ID", apperrors.ErrNotFound)
	}
	return &domain.Customer{CustomerID: customerID, Status: "ACTIVE"}, nil
}
