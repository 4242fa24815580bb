package domain

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope every domain event travels in. The payload is typed
// per event kind and read back with PayloadAs.
//
// Event is a value: fields are unexported and there are no setters, so once
// constructed an event cannot change.
type Event struct {
	aggregateID string
	eventName   string
	eventID     string
	occurredOn  time.Time
	payload     any
}

// EventOption overrides a generated envelope field. Tests use these to get
// deterministic IDs and timestamps.
type EventOption func(*Event)

// WithEventID sets the event ID instead of generating a UUID.
func WithEventID(id string) EventOption {
	return func(e *Event) { e.eventID = id }
}

// WithOccurredOn sets the occurrence time instead of using the current time.
func WithOccurredOn(t time.Time) EventOption {
	return func(e *Event) { e.occurredOn = t }
}

// NewEvent builds an event for aggregateID. EventID defaults to a random UUID
// and OccurredOn to time.Now in UTC.
func NewEvent(aggregateID, eventName string, payload any, opts ...EventOption) Event {
	e := Event{
		aggregateID: aggregateID,
		eventName:   eventName,
		payload:     payload,
	}
	for _, opt := range opts {
		opt(&e)
	}
	if e.eventID == "" {
		e.eventID = uuid.NewString()
	}
	if e.occurredOn.IsZero() {
		e.occurredOn = time.Now().UTC()
	}
	return e
}

func (e Event) AggregateID() string   { return e.aggregateID }
func (e Event) EventName() string     { return e.eventName }
func (e Event) EventID() string       { return e.eventID }
func (e Event) OccurredOn() time.Time { return e.occurredOn }
func (e Event) Payload() any          { return e.payload }

// PayloadAs returns the payload as T when it holds one.
func PayloadAs[T any](e Event) (T, bool) {
	p, ok := e.payload.(T)
	return p, ok
}

// EventsEqual compares envelopes and payloads.
func EventsEqual(a, b Event) bool {
	return a.aggregateID == b.aggregateID &&
		a.eventName == b.eventName &&
		a.eventID == b.eventID &&
		a.occurredOn.Equal(b.occurredOn) &&
		reflect.DeepEqual(a.payload, b.payload)
}

type eventJSON struct {
	EventID     string    `json:"event_id"`
	EventName   string    `json:"event_name"`
	AggregateID string    `json:"aggregate_id"`
	OccurredOn  time.Time `json:"occurred_on"`
	Payload     any       `json:"payload,omitempty"`
}

// MarshalJSON encodes the envelope for transports that leave the process.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		EventID:     e.eventID,
		EventName:   e.eventName,
		AggregateID: e.aggregateID,
		OccurredOn:  e.occurredOn,
		Payload:     e.payload,
	})
}
