package events

import (
	"context"
	"sync"
)

// memoryFeed is an in-process feed for single-node runs and tests.
type memoryFeed struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan ChangeEvent
}

// NewMemoryFeed creates an in-process feed.
func NewMemoryFeed() Feed {
	return &memoryFeed{subs: make(map[int]chan ChangeEvent)}
}

// Publish delivers the event to every open subscription in order. The read
// lock is held across the sends so a concurrent Close cannot close a channel
// mid-delivery.
func (f *memoryFeed) Publish(ctx context.Context, event ChangeEvent) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, ch := range f.subs {
		select {
		case ch <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe registers a new subscription.
func (f *memoryFeed) Subscribe(ctx context.Context) (*Subscription, error) {
	ch := make(chan ChangeEvent, subscriptionBuffer)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			close(ch)
			f.mu.Unlock()
		})
	}
	return &Subscription{C: ch, cancel: cancel}, nil
}
