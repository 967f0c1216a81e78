package ports

import (
	"context"
	"time"
)

// UnlockFunc hands a session back once its command has been saved.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker lets several server replicas share one store: while a
// replica holds a session's lock, no other replica loads or saves that robot,
// so two concurrent MOVEs cannot both start from the same pose.
type DistributedLocker interface {
	// Lock waits until this caller owns the session key or ctx is done.
	// Ownership lapses after ttl, so a crashed replica cannot strand a robot.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
