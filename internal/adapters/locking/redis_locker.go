package locking

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
)

const (
	lockKeyPrefix = "fdcore:lock:account:"
	lockTTL       = 30 * time.Second
	retryInterval = 50 * time.Millisecond
)

// unlockScript deletes the lock only when the caller still owns it, so an
// expired-and-reacquired lock is never released by the previous holder.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// redisLocker serializes per-account work across processes with a SET NX
// lock. The TTL bounds how long a crashed holder can block an account.
type redisLocker struct {
	client *redis.Client
}

// NewRedisLocker creates the distributed account locker.
func NewRedisLocker(client *redis.Client) portsrepo.AccountLocker {
	return &redisLocker{client: client}
}

var _ portsrepo.AccountLocker = (*redisLocker)(nil)

// Acquire polls SET NX until the lock is granted or ctx is done.
func (l *redisLocker) Acquire(ctx context.Context, accountNumber string) (func(), error) {
	key := lockKeyPrefix + accountNumber
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock for %s: %w", accountNumber, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	release := func() {
		// Release must not inherit a canceled request context.
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = unlockScript.Run(unlockCtx, l.client, []string{key}, token).Result()
	}
	return release, nil
}
