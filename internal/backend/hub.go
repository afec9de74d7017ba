package backend

import (
	"sync"

	"spysignal/internal/domain"
	"spysignal/internal/metrics"
)

// subscriberBuffer bounds how far a live client may fall behind before it
// is dropped.
const subscriberBuffer = 64

type subscriber struct {
	user domain.UserID
	ch   chan domain.WireRecord
	once sync.Once
}

func (s *subscriber) close() { s.once.Do(func() { close(s.ch) }) }

// Hub fans new records out to the live connections of their recipient.
type Hub struct {
	metrics *metrics.Collector

	mu   sync.RWMutex
	subs map[domain.UserID]map[*subscriber]struct{}
}

// NewHub returns an empty Hub.
func NewHub(m *metrics.Collector) *Hub {
	return &Hub{metrics: m, subs: make(map[domain.UserID]map[*subscriber]struct{})}
}

// Subscribe registers a live connection for user. The returned channel is
// closed by cancel, or by the hub when the subscriber falls behind.
func (h *Hub) Subscribe(user domain.UserID) (<-chan domain.WireRecord, func()) {
	s := &subscriber{user: user, ch: make(chan domain.WireRecord, subscriberBuffer)}

	h.mu.Lock()
	set, ok := h.subs[user]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[user] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()
	h.metrics.LiveSubscribers(1)

	return s.ch, func() { h.remove(s) }
}

// Publish delivers rec to every live connection of its recipient.
func (h *Hub) Publish(rec domain.WireRecord) {
	var slow []*subscriber

	h.mu.RLock()
	for s := range h.subs[rec.ToID] {
		select {
		case s.ch <- rec:
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range slow {
		h.remove(s)
	}
}

// Len reports the number of live connections for user.
func (h *Hub) Len(user domain.UserID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[user])
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	set := h.subs[s.user]
	_, ok := set[s]
	if ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.user)
		}
	}
	h.mu.Unlock()

	if ok {
		h.metrics.LiveSubscribers(-1)
		s.close()
	}
}
