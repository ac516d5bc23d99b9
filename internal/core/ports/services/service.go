package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Interest   InterestSvcFacade
	Account    AccountSvcFacade
	Ledger     LedgerSvcFacade
	Journal    JournalSvcFacade
	Schedule   ScheduleSvcFacade
	Accrual    AccrualSvcFacade
	Withdrawal WithdrawalSvcFacade
	Redemption RedemptionSvcFacade
	Maturity   MaturitySvcFacade
}
