package broadcast

import (
	"sync"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/fatflowers/gymgate/pkg/config"
	"github.com/fatflowers/gymgate/pkg/metrics"
)

const subscriberBuffer = 32

// Subscriber is one live streaming connection, scoped to a tenant and
// optionally a single location (nil LocationID means all locations).
type Subscriber struct {
	ID          string
	CompanyID   string
	LocationID  *string
	ConnectedAt time.Time

	ch       chan Event
	closed   bool
	lastPing time.Time
}

// Events is the channel the transport drains. It is closed when the
// subscriber is removed from the hub.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// Hub is the in-process publish/subscribe fan-out. One instance is owned by
// the composition root and injected into the streaming endpoint; there is no
// package-level singleton so independent instances can coexist in tests.
//
// Delivery is at-most-once and best-effort: a slow or dead subscriber has the
// event dropped for it, never buffered or replayed.
type Hub struct {
	log *zap.SugaredLogger
	cfg cfgpkg.BroadcastConfig

	mu   sync.RWMutex
	subs map[string]*Subscriber

	stop chan struct{}
	done chan struct{}
}

func NewHub(log *zap.SugaredLogger, cfg *cfgpkg.Config) *Hub {
	bc := cfg.Broadcast
	if bc.HeartbeatInterval <= 0 {
		bc.HeartbeatInterval = 15 * time.Second
	}
	if bc.ReapInterval <= 0 {
		bc.ReapInterval = 5 * time.Minute
	}
	if bc.SubscriberTTL <= 0 {
		bc.SubscriberTTL = 5 * time.Minute
	}
	return &Hub{
		log:  log,
		cfg:  bc,
		subs: make(map[string]*Subscriber),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Subscribe registers a streaming connection and immediately queues a
// connection.established event so the client can confirm liveness before any
// real event arrives.
func (h *Hub) Subscribe(id, companyID string, locationID *string) *Subscriber {
	now := time.Now()
	sub := &Subscriber{
		ID:          id,
		CompanyID:   companyID,
		LocationID:  locationID,
		ConnectedAt: now,
		ch:          make(chan Event, subscriberBuffer),
		lastPing:    now,
	}

	h.mu.Lock()
	if prev, ok := h.subs[id]; ok {
		h.closeLocked(prev)
	}
	h.subs[id] = sub
	n := len(h.subs)
	h.mu.Unlock()
	metrics.LiveSubscribers.Set(float64(n))

	h.deliver(sub, NewEvent(EventTypeConnectionEstablished, companyID, locationID, map[string]any{
		"subscriber_id": id,
	}))
	h.log.Infow("subscriber registered", "subscriber_id", id, "company_id", companyID)
	return sub
}

// Unsubscribe removes a subscriber. It is idempotent and safe to call on an
// id that was already removed.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
		h.closeLocked(sub)
	}
	n := len(h.subs)
	h.mu.Unlock()
	if ok {
		metrics.LiveSubscribers.Set(float64(n))
		h.log.Infow("subscriber removed", "subscriber_id", id)
	}
}

// Publish fans the event out to every live subscriber whose tenant matches,
// honoring location narrowing. It never blocks on a slow consumer; zero
// matching subscribers is the common case, not an error.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, sub := range h.subs {
		if !matches(&ev, sub) {
			continue
		}
		if h.deliverLocked(sub, ev) {
			delivered++
		}
	}
	metrics.EventsPublished.WithLabelValues(string(ev.Type)).Inc()
	if delivered == 0 {
		h.log.Debugw("event had no subscribers", "event_id", ev.ID, "type", ev.Type, "org_id", ev.OrgID)
	}
}

// Touch records delivery progress for a subscriber. The streaming transport
// calls it after each successful write so the reaper can tell live
// connections from ones whose transport died without a close.
func (h *Hub) Touch(id string) {
	h.mu.Lock()
	if sub, ok := h.subs[id]; ok {
		sub.lastPing = time.Now()
	}
	h.mu.Unlock()
}

// Count returns the number of registered subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Start launches the heartbeat and reaper timers. Stop must be called to
// release them.
func (h *Hub) Start() {
	go h.run()
}

// Stop halts the timers and drops every subscriber.
func (h *Hub) Stop() {
	close(h.stop)
	<-h.done

	h.mu.Lock()
	for id, sub := range h.subs {
		delete(h.subs, id)
		h.closeLocked(sub)
	}
	h.mu.Unlock()
	metrics.LiveSubscribers.Set(0)
}

func (h *Hub) run() {
	defer close(h.done)
	heartbeat := time.NewTicker(h.cfg.HeartbeatInterval)
	defer heartbeat.Stop()
	reap := time.NewTicker(h.cfg.ReapInterval)
	defer reap.Stop()

	for {
		select {
		case <-heartbeat.C:
			h.sendHeartbeats()
		case <-reap.C:
			h.reapStale()
		case <-h.stop:
			return
		}
	}
}

// sendHeartbeats pushes a heartbeat to every subscriber. The timer is global
// but each event is stamped with the subscriber's own tenant and location.
func (h *Hub) sendHeartbeats() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		h.deliverLocked(sub, NewEvent(EventTypeHeartbeat, sub.CompanyID, sub.LocationID, map[string]any{
			"subscriber_id": sub.ID,
		}))
	}
}

// reapStale drops subscribers whose transport died without a clean close.
func (h *Hub) reapStale() {
	cutoff := time.Now().Add(-h.cfg.SubscriberTTL)

	h.mu.RLock()
	var stale []string
	for id, sub := range h.subs {
		if sub.lastPing.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range stale {
		h.log.Warnw("reaping stale subscriber", "subscriber_id", id)
		h.Unsubscribe(id)
	}
}

func (h *Hub) deliver(sub *Subscriber, ev Event) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.deliverLocked(sub, ev)
}

// deliverLocked enqueues without blocking; a full buffer means the consumer
// is too slow and the event is dropped for that subscriber only.
func (h *Hub) deliverLocked(sub *Subscriber, ev Event) bool {
	if sub.closed {
		return false
	}
	select {
	case sub.ch <- ev:
		return true
	default:
		metrics.EventsDropped.Inc()
		h.log.Warnw("dropping event for slow subscriber", "subscriber_id", sub.ID, "event_id", ev.ID)
		return false
	}
}

// closeLocked marks the subscriber closed and closes its channel. Caller
// holds the write lock.
func (h *Hub) closeLocked(sub *Subscriber) {
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
}

// matches applies tenant isolation and location narrowing: the company must
// match exactly; a located event reaches all-location subscribers and exact
// matches only.
func matches(ev *Event, sub *Subscriber) bool {
	if ev.OrgID != sub.CompanyID {
		return false
	}
	if ev.LocationID == nil {
		return true
	}
	return sub.LocationID == nil || *sub.LocationID == *ev.LocationID
}
