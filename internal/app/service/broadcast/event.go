package broadcast

import (
	"fmt"
	"sync/atomic"
	"time"
)

type EventType string

const (
	EventTypeVisitCheckin           EventType = "visit.checkin"
	EventTypeVisitCheckout          EventType = "visit.checkout"
	EventTypeMembershipExpiring     EventType = "membership.expiring"
	EventTypePaymentFailed          EventType = "payment.failed"
	EventTypeHeartbeat              EventType = "heartbeat"
	EventTypeConnectionEstablished  EventType = "connection.established"
)

// Event is one transient notification fanned out to matching subscribers.
// Events are never persisted; clients that miss one reconcile through the
// recent-activity query after reconnecting.
type Event struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	At         time.Time      `json:"at"`
	OrgID      string         `json:"org_id"`
	LocationID *string        `json:"location_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
}

var eventSeq atomic.Uint64

// nextEventID returns a process-unique id composed of a nanosecond timestamp
// and a process-local counter. The counter gives strict per-process ordering
// so clients can detect gaps.
func nextEventID(now time.Time) string {
	return fmt.Sprintf("%d-%d", now.UnixNano(), eventSeq.Add(1))
}

// NewEvent stamps an event with id and timestamp.
func NewEvent(t EventType, orgID string, locationID *string, payload map[string]any) Event {
	now := time.Now().UTC()
	return Event{
		ID:         nextEventID(now),
		Type:       t,
		At:         now,
		OrgID:      orgID,
		LocationID: locationID,
		Payload:    payload,
	}
}
