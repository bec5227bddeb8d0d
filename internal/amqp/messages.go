package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind discriminates ledger mutation events on the wire.
type EventKind string

const (
	EventRecordCreated EventKind = "record.created"
	EventRecordDeleted EventKind = "record.deleted"
)

// RecordEvent is the lightweight message published after each ledger
// mutation. It carries only the record id; the worker reads the current
// snapshot for the full record, so a stale queue never resurrects data.
type RecordEvent struct {
	Kind      EventKind `json:"kind"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordCreated(id int64) *RecordEvent {
	return &RecordEvent{Kind: EventRecordCreated, ID: id, Timestamp: time.Now()}
}

func NewRecordDeleted(id int64) *RecordEvent {
	return &RecordEvent{Kind: EventRecordDeleted, ID: id, Timestamp: time.Now()}
}

// ToJSON converts the event to its wire form.
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON parses an event off the wire, rejecting unknown
// kinds so a handler never sees an event it cannot act on.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var ev RecordEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Kind {
	case EventRecordCreated, EventRecordDeleted:
		return &ev, nil
	default:
		return nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}
