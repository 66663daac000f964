package ports

import (
	"context"
	"time"
)

// SweepLease is a best-effort distributed lease so that only one worker
// instance runs the periodic session sweep per interval. Losing the lease race
// is not an error; the loser simply skips the iteration.
type SweepLease interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name string) error
}
