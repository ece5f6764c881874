package services

import (
	"sync"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
)

// Event notifies subscribers of one committed mutation. It carries the
// activity item recorded for it.
type Event struct {
	Kind           entities.ActivityKind
	WorldID        string
	ElementID      string
	RelationshipID string
	Activity       entities.ActivityItem
}

func newEvent(item entities.ActivityItem) Event {
	return Event{
		Kind:           item.Kind,
		WorldID:        item.WorldID,
		ElementID:      item.ElementID,
		RelationshipID: item.RelationshipID,
		Activity:       item,
	}
}

// eventBus fans committed events out to subscribers in registration order.
type eventBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Event)
	order  []int
}

func (b *eventBus) subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = make(map[int]func(Event))
	}
	b.nextID++
	id := b.nextID
	b.subs[id] = fn
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			for i, sid := range b.order {
				if sid == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (b *eventBus) publish(events []Event) {
	if len(events) == 0 {
		return
	}

	b.mu.RLock()
	subs := make([]func(Event), 0, len(b.order))
	for _, id := range b.order {
		subs = append(subs, b.subs[id])
	}
	b.mu.RUnlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}
