package locking_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdlabs/fd_deposit_core/internal/adapters/locking"
)

func TestMemoryLocker_SerializesSameAccount(t *testing.T) {
	locker := locking.NewMemoryLocker()
	ctx := context.Background()

	var mu sync.Mutex
	inCritical := 0
	maxInCritical := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, "FD0000000001")
			require.NoError(t, err)
			defer release()

			mu.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInCritical)
}

func TestMemoryLocker_IndependentAccountsDoNotBlock(t *testing.T) {
	locker := locking.NewMemoryLocker()
	ctx := context.Background()

	releaseA, err := locker.Acquire(ctx, "FD0000000001")
	require.NoError(t, err)
	defer releaseA()

	done := make(chan struct{})
	go func() {
		releaseB, err := locker.Acquire(ctx, "FD0000000002")
		assert.NoError(t, err)
		releaseB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("acquiring a different account blocked behind an unrelated lock")
	}
}

func TestMemoryLocker_ReleaseIsIdempotent(t *testing.T) {
	locker := locking.NewMemoryLocker()
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "FD0000000001")
	require.NoError(t, err)
	release()
	release()

	again, err := locker.Acquire(ctx, "FD0000000001")
	require.NoError(t, err)
	again()
}

func TestMemoryLocker_CancelledContext(t *testing.T) {
	locker := locking.NewMemoryLocker()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := locker.Acquire(ctx, "FD0000000001")
	assert.Error(t, err)
}
