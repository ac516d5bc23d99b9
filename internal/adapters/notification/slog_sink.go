package notification

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
)

// slogSink records customer notifications in the structured log. A delivery
// channel (mail, SMS, push) can replace it behind the same interface.
type slogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates the log-backed notification sink.
func NewSlogSink(logger *slog.Logger) portssvc.NotificationSink {
	return &slogSink{logger: logger}
}

var _ portssvc.NotificationSink = (*slogSink)(nil)

func (s *slogSink) NotifyMaturity(_ context.Context, account *domain.Account, maturityAmount decimal.Decimal) error {
	s.logger.Info("maturity notification",
		slog.String("account_number", account.AccountNumber),
		slog.String("customer_id", account.CustomerID),
		slog.String("maturity_amount", maturityAmount.String()))
	return nil
}

func (s *slogSink) NotifyClosure(_ context.Context, account *domain.Account, netPaid decimal.Decimal) error {
	s.logger.Info("closure notification",
		slog.String("account_number", account.AccountNumber),
		slog.String("customer_id", account.CustomerID),
		slog.String("net_paid", netPaid.String()))
	return nil
}
