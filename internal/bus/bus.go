// Package bus provides the in-process publish/subscribe channel that keeps
// room viewers consistent.
//
// The bus is an explicitly constructed object with its own lifetime; there
// is no module-level listener registry. Publishes deliver the full room
// snapshot, not a diff.
package bus

import (
	"sync"

	"github.com/congsh/haigui-soup/internal/room"
)

// Handler receives the full room snapshot after each mutation.
type Handler func(r room.Room)

type subscriber struct {
	id      int
	handler Handler
}

// Bus fans room snapshots out to subscribers keyed by room ID.
type Bus struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[string][]subscriber
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subscribers: make(map[string][]subscriber)}
}

// Subscribe registers a handler for a room ID and returns a cancel func.
// Handlers are invoked in subscription order. Cancel is idempotent; it stops
// further callbacks but has no effect on already-started publishes.
func (b *Bus) Subscribe(roomID string, handler Handler) func() {
	if handler == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subscribers[roomID] = append(b.subscribers[roomID], subscriber{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subscribers[roomID]
		for i, sub := range subs {
			if sub.id == id {
				b.subscribers[roomID] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(b.subscribers[roomID]) == 0 {
			delete(b.subscribers, roomID)
		}
	}
}

// Publish invokes every handler currently registered for the room ID,
// synchronously and in subscription order, each receiving the snapshot.
// The handler list is captured before delivery, so a handler added during a
// publish is not invoked for that same publish.
func (b *Bus) Publish(roomID string, r room.Room) {
	b.mu.Lock()
	subs := b.subscribers[roomID]
	snapshot := make([]subscriber, len(subs))
	copy(snapshot, subs)
	b.mu.Unlock()

	for _, sub := range snapshot {
		sub.handler(r)
	}
}
