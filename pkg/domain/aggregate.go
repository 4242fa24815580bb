package domain

import "sync"

// AggregateRoot is embedded by aggregates to buffer the events they raise
// until the application layer publishes them.
//
// Aggregates embedding AggregateRoot must be handled by pointer.
type AggregateRoot struct {
	mu     sync.Mutex
	events []Event
}

// Record appends an event to the pending buffer.
func (a *AggregateRoot) Record(e Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

// PullDomainEvents drains the pending buffer. A second call returns nothing
// until new events are recorded, so callers must publish what they pull.
func (a *AggregateRoot) PullDomainEvents() []Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	events := a.events
	a.events = nil
	return events
}
