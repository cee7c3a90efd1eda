package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFileSuffix = ".lock"
	lockRetryDelay = 50 * time.Millisecond
)

// withSessionLock runs fn while holding the lock file next to the session
// database, so two processes never replace the session at the same time.
func (d *DB) withSessionLock(ctx context.Context, fn func() error) error {
	lock := flock.New(d.path + lockFileSuffix)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock on %s", lock.Path())
	}
	defer lock.Unlock()
	return fn()
}
