package sync

import (
	"sync"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
)

// Broker fans sync status transitions out to any number of subscribers.
// The original design supported a single registered callback; multiple UI
// surfaces want the same signal concurrently, so this is a small
// publish/subscribe hub instead.
type Broker struct {
	mu      sync.Mutex
	subs    map[int]chan model.SyncStatus
	nextID  int
	current model.SyncStatus
}

// NewBroker creates a broker reporting the optimistic initial state:
// online until the first cycle proves otherwise.
func NewBroker() *Broker {
	return &Broker{
		subs:    make(map[int]chan model.SyncStatus),
		current: model.StatusOnline,
	}
}

// Current returns the last published status.
func (b *Broker) Current() model.SyncStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Publish records the new status and delivers it to every subscriber.
// Delivery never blocks the publisher: when a subscriber's buffer is full
// the oldest pending transition is dropped in favor of the newest.
func (b *Broker) Publish(status model.SyncStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if status == b.current {
		return
	}
	b.current = status

	for _, ch := range b.subs {
		select {
		case ch <- status:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- status
		}
	}
}

// Subscribe registers a new listener. The returned cancel func must be
// called to release the subscription; the channel is closed by it.
func (b *Broker) Subscribe() (<-chan model.SyncStatus, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan model.SyncStatus, 8)
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}
