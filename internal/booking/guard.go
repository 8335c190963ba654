package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrInProgress = errors.New("a booking for this stall is already being processed")

// Locker is the lease primitive the guard needs. Both session stores
// implement it.
type Locker interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	DeleteIfValue(ctx context.Context, key, value string) error
}

// Guard rejects a second submission for the same session and stall while the
// first is still running. The lease expires after ttl in case the holder dies.
type Guard struct {
	locker Locker
	ttl    time.Duration
}

func NewGuard(locker Locker, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Guard{locker: locker, ttl: ttl}
}

func guardKey(sessionID, stallNumber string) string {
	return fmt.Sprintf("expo:booking_lock:%s:%s", sessionID, stallNumber)
}

// Acquire takes the lease. The returned release only deletes the key while
// this caller still owns it.
func (g *Guard) Acquire(ctx context.Context, sessionID, stallNumber string) (func(), error) {
	key := guardKey(sessionID, stallNumber)
	owner := uuid.New().String()

	ok, err := g.locker.SetNX(ctx, key, owner, g.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire booking lock: %w", err)
	}
	if !ok {
		return nil, ErrInProgress
	}

	return func() {
		// the request context may already be done
		_ = g.locker.DeleteIfValue(context.Background(), key, owner)
	}, nil
}
