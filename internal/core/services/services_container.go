package services

import (
	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"
	"github.com/fdlabs/fd_deposit_core/internal/platform/config"
)

// Dependencies bundles the infrastructure the engines are built on.
type Dependencies struct {
	Repos    portsrepo.RepositoryProvider
	UoW      portsrepo.UnitOfWork
	Locker   portsrepo.AccountLocker
	Products portssvc.ProductSvcFacade
	Events   portssvc.EventSink
	Notifier portssvc.NotificationSink
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, deps Dependencies) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The calculator and journal come first since every engine leans on them.
	container.Interest = NewInterestService(cfg.TDSThreshold)
	container.Journal = NewJournalService(deps.Repos, deps.UoW, deps.Locker, deps.Events)

	container.Ledger = NewLedgerService(deps.Repos)
	container.Account = NewAccountService(deps.Repos, deps.UoW, deps.Locker, deps.Products, container.Journal, deps.Events)
	container.Schedule = NewScheduleService(deps.Repos, deps.UoW, deps.Locker, container.Journal, deps.Events)
	container.Accrual = NewAccrualService(deps.Repos, deps.UoW, deps.Locker, container.Journal, container.Interest, deps.Events, cfg.AccrualWorkers)
	container.Withdrawal = NewWithdrawalService(deps.Repos, deps.UoW, deps.Locker, container.Journal, container.Interest, deps.Products, deps.Events, deps.Notifier, cfg.PrematurePenaltyRate)
	container.Redemption = NewRedemptionService(deps.Repos, deps.UoW, deps.Locker, container.Journal, deps.Events, deps.Notifier, cfg.RedemptionPenaltyRate)
	container.Maturity = NewMaturityService(deps.Repos, deps.UoW, deps.Locker, container.Journal, deps.Events, deps.Notifier)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.InterestSvcFacade   = (*interestService)(nil)
	_ portssvc.JournalSvcFacade    = (*journalService)(nil)
	_ portssvc.LedgerSvcFacade     = (*ledgerService)(nil)
	_ portssvc.AccountSvcFacade    = (*accountService)(nil)
	_ portssvc.ScheduleSvcFacade   = (*scheduleService)(nil)
	_ portssvc.AccrualSvcFacade    = (*accrualService)(nil)
	_ portssvc.WithdrawalSvcFacade = (*withdrawalService)(nil)
	_ portssvc.RedemptionSvcFacade = (*redemptionService)(nil)
	_ portssvc.MaturitySvcFacade   = (*maturityService)(nil)
)
