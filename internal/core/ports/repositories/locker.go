package repositories

import "context"

// AccountLocker serializes mutations per account: an engine operation holds
// the account's exclusive lock for its whole read-modify-write sequence.
// Batch jobs parallelize across accounts but never within one.
type AccountLocker interface {
	// Acquire blocks until the account lock is held or ctx is done.
	// The returned release function must be called exactly once.
	Acquire(ctx context.Context, accountNumber string) (release func(), err error)
}
