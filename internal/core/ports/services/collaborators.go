package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
)

// ProductSvcFacade resolves product terms and customer records from the
// product catalog. Product terms gate account opening and withdrawals.
type ProductSvcFacade interface {
	GetProduct(ctx context.Context, productCode string) (*domain.Product, error)
	GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error)
}

// EventSink publishes domain events after a state change commits. Publishing
// is best effort: a sink failure is logged and never rolls back the ledger.
type EventSink interface {
	Publish(ctx context.Context, event domain.Event) error
	Close() error
}

// NotificationSink delivers customer notifications. Best effort, same as
// the event sink.
type NotificationSink interface {
	NotifyMaturity(ctx context.Context, account *domain.Account, maturityAmount decimal.Decimal) error
	NotifyClosure(ctx context.Context, account *domain.Account, netPaid decimal.Decimal) error
}
