// Package lease provides short-lived exclusive leases keyed by string.
//
// The scheduler takes a lease per schedule for the duration of a firing so that two
// overlapping ticks, in the same process or in different replicas, never dispatch the
// same schedule concurrently.
package lease

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Locker grants and releases leases.
type Locker interface {
	// Acquire takes the lease for key if nobody holds it. The returned token identifies the holder.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	// Release gives the lease back if token still holds it.
	Release(ctx context.Context, key, token string) error
}

func newToken() string {
	return uuid.NewString()
}
