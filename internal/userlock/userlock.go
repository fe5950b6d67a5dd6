package userlock

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrLockTimeout is returned when the context ends before the lock is acquired.
var ErrLockTimeout = errors.New("timed out waiting for user lock")

// Locker serialises mutations per user. Unlock must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, userID uuid.UUID) (unlock func(), err error)
}
