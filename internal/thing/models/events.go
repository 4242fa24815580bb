package models

import "scaffold/pkg/domain"

// ThingCreatedEvent is the wire name of ThingCreated.
const ThingCreatedEvent = "core.thing.thing_created"

// ThingCreated is the payload of ThingCreatedEvent.
type ThingCreated struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewThingCreated(s Snapshot, opts ...domain.EventOption) domain.Event {
	return domain.NewEvent(s.ID.String(), ThingCreatedEvent, ThingCreated{
		ID:   s.ID.String(),
		Name: s.Name.String(),
	}, opts...)
}
