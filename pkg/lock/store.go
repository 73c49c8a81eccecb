package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"laluna/pkg/logger"
	"laluna/pkg/model"

	"github.com/google/uuid"
)

const (
	lockIDPrefix   = "room_lock_"
	releaseTimeout = 5 * time.Second
)

// Store persists advisory room locks. Acquire must fail with ErrLockBusy when
// an unexpired lock with the same id exists.
type Store interface {
	Acquire(ctx context.Context, lock *model.RoomLock) error
	Release(ctx context.Context, id, owner string) error
}

type StoreConfig struct {
	TTL           time.Duration
	WaitTimeout   time.Duration
	RetryInterval time.Duration
}

// StoreGuard is a cross-process guard backed by a shared Store. Lock
// documents expire after TTL so a crashed holder cannot block a room forever.
type StoreGuard struct {
	store Store
	cfg   StoreConfig
	log   *logger.Logger
	now   func() time.Time
}

func NewStoreGuard(store Store, cfg StoreConfig, log *logger.Logger) *StoreGuard {
	return &StoreGuard{
		store: store,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
}

func LockID(roomID string) string {
	return lockIDPrefix + roomID
}

func (g *StoreGuard) WithRoomLock(ctx context.Context, roomID string, fn func(ctx context.Context) error) error {
	id := LockID(roomID)
	owner := uuid.NewString()

	if err := g.acquire(ctx, id, owner); err != nil {
		return err
	}
	defer g.release(ctx, id, owner)

	return fn(ctx)
}

func (g *StoreGuard) acquire(ctx context.Context, id, owner string) error {
	deadline := g.now().Add(g.cfg.WaitTimeout)

	for attempt := 1; ; attempt++ {
		now := g.now()
		err := g.store.Acquire(ctx, &model.RoomLock{
			ID:        id,
			Owner:     owner,
			ExpiresAt: now.Add(g.cfg.TTL),
			CreatedAt: now,
		})
		if err == nil {
			if attempt > 1 {
				g.log.WithContext(ctx).Debug("Room lock acquired after retry", "lock_id", id, "attempts", attempt)
			}
			return nil
		}
		if !errors.Is(err, ErrLockBusy) {
			return fmt.Errorf("acquire %s: %w", id, err)
		}
		if !g.now().Add(g.cfg.RetryInterval).Before(deadline) {
			return fmt.Errorf("%w: %s held after %d attempts", ErrLockBusy, id, attempt)
		}

		timer := time.NewTimer(g.cfg.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (g *StoreGuard) release(ctx context.Context, id, owner string) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := g.store.Release(releaseCtx, id, owner); err != nil {
		g.log.WithContext(ctx).Warn("Failed to release room lock, it will expire", "lock_id", id, "error", err)
	}
}
