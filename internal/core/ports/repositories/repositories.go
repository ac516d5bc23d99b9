package repositories

import "context"

// RepositoryProvider bundles the store facades an engine operation works
// against. Inside a unit of work every facade is bound to the same database
// transaction.
type RepositoryProvider struct {
	Accounts     AccountRepositoryFacade
	Transactions TransactionRepositoryFacade
	Balances     BalanceRepositoryFacade
	Schedules    ScheduleMarkerRepository
}

// UnitOfWork executes a function against transactionally-bound repositories.
// The function's writes commit together or not at all; partial writes are
// never observable.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r RepositoryProvider) error) error
}
