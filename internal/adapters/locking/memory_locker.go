package locking

import (
	"context"
	"sync"

	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
)

// memoryLocker serializes per-account work within a single process using a
// keyed mutex. Sufficient for one instance; multi-instance deployments use
// the Redis locker.
type memoryLocker struct {
	mu    sync.Mutex
	locks map[string]*accountLock
}

type accountLock struct {
	mu   sync.Mutex
	refs int
}

// NewMemoryLocker creates the in-process account locker.
func NewMemoryLocker() portsrepo.AccountLocker {
	return &memoryLocker{locks: make(map[string]*accountLock)}
}

var _ portsrepo.AccountLocker = (*memoryLocker)(nil)

// Acquire blocks until the account's mutex is held. Lock entries are
// reference counted and removed once the last holder releases.
func (l *memoryLocker) Acquire(ctx context.Context, accountNumber string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	entry, ok := l.locks[accountNumber]
	if !ok {
		entry = &accountLock{}
		l.locks[accountNumber] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			entry.mu.Unlock()
			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.locks, accountNumber)
			}
			l.mu.Unlock()
		})
	}
	return release, nil
}
