package models

import (
	"context"
	"regexp"

	"github.com/google/uuid"

	"scaffold/pkg/domain"
	dErrors "scaffold/pkg/domain-errors"
)

const (
	maxThingIDLength   = 64
	maxThingNameLength = 128
)

var thingIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ThingID identifies a Thing. Any slug of up to 64 characters is accepted so
// callers can choose their own identifiers; NewThingID generates a UUID.
type ThingID string

func NewThingID() ThingID { return ThingID(uuid.NewString()) }

// ParseThingID validates an identifier received at a trust boundary.
func ParseThingID(s string) (ThingID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "thing id is required")
	}
	if len(s) > maxThingIDLength || !thingIDPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid thing id")
	}
	return ThingID(s), nil
}

func (id ThingID) String() string { return string(id) }

// ThingName is a trimmed, non-empty display name.
type ThingName string

func ParseThingName(s string) (ThingName, error) {
	v, err := domain.ParseText(s, "thing name", maxThingNameLength)
	if err != nil {
		return "", err
	}
	return ThingName(v), nil
}

func (n ThingName) String() string { return string(n) }

// Thing is the aggregate root of the sample context.
//
// Invariants:
//   - ID and Name are valid value objects
//   - Create records exactly one ThingCreated event
type Thing struct {
	domain.AggregateRoot

	id   ThingID
	name ThingName
}

// Create builds a new Thing and records ThingCreated. opts are applied to the
// recorded event.
func Create(id ThingID, name ThingName, opts ...domain.EventOption) *Thing {
	t := &Thing{id: id, name: name}
	t.Record(NewThingCreated(t.Snapshot(), opts...))
	return t
}

// Reconstitute rebuilds a persisted Thing without raising events.
func Reconstitute(s Snapshot) *Thing {
	return &Thing{id: s.ID, name: s.Name}
}

func (t *Thing) ID() ThingID     { return t.id }
func (t *Thing) Name() ThingName { return t.name }

// Snapshot is the persistable, comparable state of a Thing.
type Snapshot struct {
	ID   ThingID   `json:"id"`
	Name ThingName `json:"name"`
}

func (t *Thing) Snapshot() Snapshot {
	return Snapshot{ID: t.id, Name: t.name}
}

// Repository is the persistence abstraction for Things. Save is an upsert.
// Find returns sentinel.ErrNotFound when no Thing has the given id.
type Repository interface {
	Save(ctx context.Context, thing *Thing) error
	Find(ctx context.Context, id ThingID) (*Thing, error)
}
