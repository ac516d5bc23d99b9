package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType identifies the ledger effect of a transaction.
type TransactionType string

const (
	TxnInitialDeposit         TransactionType = "INITIAL_DEPOSIT"
	TxnAdditionalDeposit      TransactionType = "ADDITIONAL_DEPOSIT"
	TxnInterestAccrual        TransactionType = "INTEREST_ACCRUAL"
	TxnInterestCredit         TransactionType = "INTEREST_CREDIT"
	TxnInterestCapitalization TransactionType = "INTEREST_CAPITALIZATION"
	TxnTDSDeduction           TransactionType = "TDS_DEDUCTION"
	TxnWithdrawal             TransactionType = "WITHDRAWAL"
	TxnPartialWithdrawal      TransactionType = "PARTIAL_WITHDRAWAL"
	TxnPrematureWithdrawal    TransactionType = "PREMATURE_WITHDRAWAL"
	TxnFeeDebit               TransactionType = "FEE_DEBIT"
	TxnPenalty                TransactionType = "PENALTY"
	TxnMaturityPayout         TransactionType = "MATURITY_PAYOUT"
	TxnClosure                TransactionType = "CLOSURE"
	TxnReversal               TransactionType = "REVERSAL"
	TxnAdjustment             TransactionType = "ADJUSTMENT"
)

// TransactionStatus is the processing state of a journal entry.
type TransactionStatus string

const (
	TxnCompleted TransactionStatus = "COMPLETED"
	TxnFailed    TransactionStatus = "FAILED"
)

// Transaction is a single ledger-affecting journal entry for an account.
// Entries are append-only: once recorded, only the reversal linkage fields
// may change, and only when the entry is later reversed.
type Transaction struct {
	TransactionID string          `json:"transactionID"` // Primary key (UUID)
	Reference     string          `json:"reference"`     // Business reference (unique, time-ordered)
	AccountNumber string          `json:"accountNumber"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"` // Always positive

	// Balance positions captured around the entry, per balance kind.
	PrincipalBefore decimal.Decimal `json:"principalBefore"`
	PrincipalAfter  decimal.Decimal `json:"principalAfter"`
	InterestBefore  decimal.Decimal `json:"interestBefore"`
	InterestAfter   decimal.Decimal `json:"interestAfter"`
	TotalBefore     decimal.Decimal `json:"totalBefore"`
	TotalAfter      decimal.Decimal `json:"totalAfter"`

	TransactionDate time.Time         `json:"transactionDate"`
	ValueDate       time.Time         `json:"valueDate"`
	Description     string            `json:"description"`
	PerformedBy     string            `json:"performedBy"`
	Status          TransactionStatus `json:"status"`

	// Reversal linkage. A reversed entry points at the compensating
	// REVERSAL entry and vice versa; the original is never deleted.
	IsReversed        bool       `json:"isReversed"`
	ReversalReference *string    `json:"reversalReference"`
	RelatedReference  *string    `json:"relatedReference"`
	ReversalReason    *string    `json:"reversalReason"`
	ReversedAt        *time.Time `json:"reversedAt"`

	CreatedAt time.Time `json:"createdAt"`
}
