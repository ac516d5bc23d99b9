package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fdlabs/fd_deposit_core/internal/core/domain"
	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
	"github.com/fdlabs/fd_deposit_core/internal/dto"
)

// EntrySpec describes a journal entry to be appended. Amount must be
// positive; the entry's balance positions are derived by the journal service.
type EntrySpec struct {
	AccountNumber    string
	Type             domain.TransactionType
	Amount           decimal.Decimal
	ValueDate        time.Time
	Description      string
	PerformedBy      string
	RelatedReference *string
}

// JournalReaderSvc defines read operations over the transaction journal.
type JournalReaderSvc interface {
	// GetTransaction retrieves a journal entry by its business reference.
	GetTransaction(ctx context.Context, reference string) (*domain.Transaction, error)

	// ListTransactions retrieves a page of an account's journal, newest first.
	ListTransactions(ctx context.Context, accountNumber string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// JournalWriterSvc defines the handler-facing mutations on the journal.
type JournalWriterSvc interface {
	// Deposit books an additional deposit into an active account.
	Deposit(ctx context.Context, accountNumber string, req dto.DepositRequest, performedBy string) (*domain.Transaction, error)

	// Reverse books a compensating entry for an existing journal entry and
	// links the two. Fails when the original is already reversed or its
	// type is not reversible.
	Reverse(ctx context.Context, reference string, reason string, performedBy string) (*domain.Transaction, error)
}

// JournalEntrySvc defines the in-transaction entry points the other engines
// use to append entries. The caller owns the unit of work and the account
// lock; the journal service derives positions, writes the entry and the
// balance snapshots, and leaves commit to the caller.
type JournalEntrySvc interface {
	// AppendEntry applies the type's standard balance rule to the current
	// positions and appends the resulting entry.
	AppendEntry(ctx context.Context, r portsrepo.RepositoryProvider, spec EntrySpec) (*domain.Transaction, error)

	// AppendEntryWithBalances appends an entry whose resulting positions
	// the engine supplies explicitly. Used by settlement and closure flows
	// whose balance movements are not expressible as a single-kind rule.
	AppendEntryWithBalances(ctx context.Context, r portsrepo.RepositoryProvider, spec EntrySpec, after domain.BalanceSet) (*domain.Transaction, error)
}

// JournalSvcFacade combines all journal-related service interfaces.
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	JournalEntrySvc
}
