package lock

import (
	"context"
	"sync"
)

type roomSlot struct {
	sem  chan struct{}
	refs int
}

// LocalGuard is an in-process per-room mutex table. Slots are reference
// counted and dropped once no caller holds or waits for them.
type LocalGuard struct {
	mu    sync.Mutex
	rooms map[string]*roomSlot
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{rooms: make(map[string]*roomSlot)}
}

func (g *LocalGuard) WithRoomLock(ctx context.Context, roomID string, fn func(ctx context.Context) error) error {
	slot := g.acquireSlot(roomID)
	defer g.releaseSlot(roomID, slot)

	select {
	case slot.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-slot.sem }()

	return fn(ctx)
}

func (g *LocalGuard) acquireSlot(roomID string) *roomSlot {
	g.mu.Lock()
	defer g.mu.Unlock()

	slot, ok := g.rooms[roomID]
	if !ok {
		slot = &roomSlot{sem: make(chan struct{}, 1)}
		g.rooms[roomID] = slot
	}
	slot.refs++
	return slot
}

func (g *LocalGuard) releaseSlot(roomID string, slot *roomSlot) {
	g.mu.Lock()
	defer g.mu.Unlock()

	slot.refs--
	if slot.refs == 0 {
		delete(g.rooms, roomID)
	}
}

// Len reports how many rooms currently have a slot.
func (g *LocalGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}
