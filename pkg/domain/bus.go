package domain

import "context"

// EventHandler reacts to domain events. SubscribedTo lists the event names the
// handler wants delivered.
type EventHandler interface {
	SubscribedTo() []string
	On(ctx context.Context, event Event) error
}

// EventBus is the only way application code announces state changes.
type EventBus interface {
	AddHandlers(handlers ...EventHandler)
	Publish(ctx context.Context, events ...Event) error
}
