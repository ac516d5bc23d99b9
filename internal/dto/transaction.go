package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
)

// TransactionResponse defines the data returned for a journal entry.
type TransactionResponse struct {
	Reference         string          `json:"reference"`
	AccountNumber     string          `json:"accountNumber"`
	Type              string          `json:"type"`
	Amount            decimal.Decimal `json:"amount"`
	PrincipalAfter    decimal.Decimal `json:"principalAfter"`
	InterestAfter     decimal.Decimal `json:"interestAfter"`
	TotalAfter        decimal.Decimal `json:"totalAfter"`
	TransactionDate   time.Time       `json:"transactionDate"`
	ValueDate         time.Time       `json:"valueDate"`
	Description       string          `json:"description"`
	PerformedBy       string          `json:"performedBy"`
	Status            string          `json:"status"`
	IsReversed        bool            `json:"isReversed"`
	ReversalReference *string         `json:"reversalReference,omitempty"`
	RelatedReference  *string         `json:"relatedReference,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		Reference:         txn.Reference,
		AccountNumber:     txn.AccountNumber,
		Type:              string(txn.Type),
		Amount:            txn.Amount,
		PrincipalAfter:    txn.PrincipalAfter,
		InterestAfter:     txn.InterestAfter,
		TotalAfter:        txn.TotalAfter,
		TransactionDate:   txn.TransactionDate,
		ValueDate:         txn.ValueDate,
		Description:       txn.Description,
		PerformedBy:       txn.PerformedBy,
		Status:            string(txn.Status),
		IsReversed:        txn.IsReversed,
		ReversalReference: txn.ReversalReference,
		RelatedReference:  txn.RelatedReference,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to DTOs.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = ToTransactionResponse(&txn)
	}
	return responses
}

// ListTransactionsParams defines query parameters for listing account history.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=50"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of journal entries.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// DepositRequest defines the data for an additional deposit into an account.
type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

// ReverseTransactionRequest carries the reason for reversing a journal entry.
type ReverseTransactionRequest struct {
	Reason string `json:"reason" binding:"required"`
}
