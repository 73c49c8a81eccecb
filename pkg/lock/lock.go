// Package lock serializes booking creation per room.
//
// A Guard runs a function while holding the lock for one room. Different rooms
// never block each other. Locks are released on every exit path, including
// panics inside the guarded function.
package lock

import (
	"context"
	"errors"
)

// ErrLockBusy is returned when the room lock could not be acquired before the
// caller's wait budget ran out.
var ErrLockBusy = errors.New("room lock busy")

type Guard interface {
	WithRoomLock(ctx context.Context, roomID string, fn func(ctx context.Context) error) error
}

type chain []Guard

// Chain nests guards in order: the first guard is acquired first and
// released last.
func Chain(guards ...Guard) Guard {
	if len(guards) == 1 {
		return guards[0]
	}
	return chain(guards)
}

func (c chain) WithRoomLock(ctx context.Context, roomID string, fn func(ctx context.Context) error) error {
	if len(c) == 0 {
		return fn(ctx)
	}
	return c[0].WithRoomLock(ctx, roomID, func(ctx context.Context) error {
		return c[1:].WithRoomLock(ctx, roomID, fn)
	})
}
