// Package lock serialises work on a payroll period across requests and api instances.
package lock

import (
	"context"
	"errors"
	"time"
)

var ErrLocked = errors.New("lock: key is held by another request")

// Release frees a held key. It is safe to call more than once.
type Release func()

type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}
