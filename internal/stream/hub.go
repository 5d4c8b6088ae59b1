// Package stream paces transaction generation and fans events out to live
// subscribers.
package stream

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/FraudStream/models"
)

// DefaultSubscriberBuffer is the per-subscriber queue length
const DefaultSubscriberBuffer = 32

// Hub broadcasts events to every subscriber. A subscriber whose queue is
// full misses the event instead of stalling the others.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	closed bool
	logger zerolog.Logger
}

// Subscription is one consumer's view of the hub
type Subscription struct {
	ch      chan models.TransactionEvent
	hub     *Hub
	once    sync.Once
	dropped atomic.Int64
}

// NewHub creates a hub with the given per-subscriber buffer
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
		logger: log.With().Str("component", "stream_hub").Logger(),
	}
}

// Subscribe registers a new subscriber. On a closed hub the returned
// subscription's channel is already closed.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		ch:  make(chan models.TransactionEvent, h.buffer),
		hub: h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subs[sub] = struct{}{}
	h.logger.Debug().Int("subscribers", len(h.subs)).Msg("Subscriber added")
	return sub
}

// Events returns the channel the subscriber reads from. It is closed when
// the subscription or the hub is closed.
func (s *Subscription) Events() <-chan models.TransactionEvent {
	return s.ch
}

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	s.once.Do(func() { close(s.ch) })
	h.logger.Debug().
		Int("subscribers", len(h.subs)).
		Int64("dropped", s.dropped.Load()).
		Msg("Subscriber removed")
}

// Publish delivers ev to every subscriber with room in its queue and
// returns how many received it.
func (h *Hub) Publish(ev models.TransactionEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for sub := range h.subs {
		select {
		case sub.ch <- ev:
			delivered++
		default:
			sub.dropped.Add(1)
		}
	}
	return delivered
}

// Subscribers returns the current subscriber count
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		sub.once.Do(func() { close(sub.ch) })
	}
	h.subs = make(map[*Subscription]struct{})
}
