package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is a domain event published to the event bus after a committed
// operation. Events are built through explicit constructors; there is no
// runtime field enrichment.
type Event struct {
	EventID       string    `json:"eventID"`
	EventType     string    `json:"eventType"`
	AccountNumber string    `json:"accountNumber"`
	OccurredAt    time.Time `json:"occurredAt"`

	// Optional payload fields, populated per event type.
	TransactionReference string           `json:"transactionReference,omitempty"`
	TransactionType      TransactionType  `json:"transactionType,omitempty"`
	Amount               *decimal.Decimal `json:"amount,omitempty"`
	Status               AccountStatus    `json:"status,omitempty"`
	PerformedBy          string           `json:"performedBy,omitempty"`
}

const (
	EventAccountCreated      = "fd.account.created"
	EventAccountClosed       = "fd.account.closed"
	EventTransactionCreated  = "fd.transaction.created"
	EventInterestAccrued     = "fd.interest.accrued"
	EventWithdrawalProcessed = "fd.withdrawal.processed"
	EventMaturityProcessed   = "fd.maturity.processed"
)

// NewAccountEvent builds a status-bearing account lifecycle event.
func NewAccountEvent(eventID, eventType string, account *Account, performedBy string, at time.Time) Event {
	return Event{
		EventID:       eventID,
		EventType:     eventType,
		AccountNumber: account.AccountNumber,
		Status:        account.Status,
		PerformedBy:   performedBy,
		OccurredAt:    at,
	}
}

// NewTransactionEvent builds an event describing a recorded journal entry.
func NewTransactionEvent(eventID, eventType string, tx *Transaction, at time.Time) Event {
	amount := tx.Amount
	return Event{
		EventID:              eventID,
		EventType:            eventType,
		AccountNumber:        tx.AccountNumber,
		TransactionReference: tx.Reference,
		TransactionType:      tx.Type,
		Amount:               &amount,
		PerformedBy:          tx.PerformedBy,
		OccurredAt:           at,
	}
}
