// Package events fans topology change notifications out to in-process
// subscribers. Publishing never blocks the publisher: a subscriber whose
// buffer is full misses the event and the drop is counted.
package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// TopicTopology carries TopologyChanged events.
const TopicTopology = "topology"

// ErrClosed is returned by Subscribe after Close.
var ErrClosed = errors.New("event bus closed")

// TopologyChanged is published after every operation that rewrote the live
// topology.
type TopologyChanged struct {
	Generation uuid.UUID `json:"generation"`
	Operation  string    `json:"operation"`
	Switches   []string  `json:"switches"`
	LiveBuses  int       `json:"live_buses"`
	At         time.Time `json:"at"`
}

// Bus provides publish/subscribe of topology events
type Bus struct {
	subscribers map[string]map[*Subscription]struct{}
	mu          sync.RWMutex
	done        chan struct{}
	closeOnce   sync.Once
	closed      atomic.Bool
	dropped     atomic.Uint64
	bufferSize  int
}

// Subscription represents a subscription to a topic
type Subscription struct {
	topic     string
	channel   chan TopologyChanged
	bus       *Bus
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewBus creates an event bus whose subscriptions buffer up to bufferSize events
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Bus{
		subscribers: make(map[string]map[*Subscription]struct{}),
		done:        make(chan struct{}),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription that ends when ctx is cancelled, when
// Unsubscribe is called, or when the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		topic:   topic,
		channel: make(chan TopologyChanged, b.bufferSize),
		bus:     b,
		cancel:  cancel,
	}

	b.mu.Lock()
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[*Subscription]struct{})
	}
	b.subscribers[topic][sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-b.done:
			sub.close()
		}
	}()

	return sub, nil
}

// Publish delivers ev to every subscriber of topic and returns how many
// received it.
func (b *Bus) Publish(topic string, ev TopologyChanged) int {
	if b.closed.Load() {
		return 0
	}

	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subscribers[topic]))
	for sub := range b.subscribers[topic] {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	delivered := 0
	for _, sub := range subs {
		if sub.send(ev) {
			delivered++
		} else {
			b.dropped.Add(1)
		}
	}
	return delivered
}

// Dropped returns the number of events lost to full subscriber buffers
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// SubscriberCount returns the number of subscribers for a topic
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

// Close ends all subscriptions
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		close(b.done)

		b.mu.Lock()
		for topic, subs := range b.subscribers {
			for sub := range subs {
				sub.close()
			}
			delete(b.subscribers, topic)
		}
		b.mu.Unlock()
	})
}

// Events returns the subscription's channel. It is closed when the
// subscription ends.
func (s *Subscription) Events() <-chan TopologyChanged {
	return s.channel
}

// Unsubscribe removes the subscription
func (s *Subscription) Unsubscribe() {
	s.cancel()

	s.bus.mu.Lock()
	if subs := s.bus.subscribers[s.topic]; subs != nil {
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.bus.subscribers, s.topic)
		}
	}
	s.bus.mu.Unlock()

	s.close()
}

// send reports false when the buffer is full or the subscription was
// closed after Publish took its snapshot.
func (s *Subscription) send(ev TopologyChanged) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case s.channel <- ev:
		return true
	default:
		return false
	}
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
