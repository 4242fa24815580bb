package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scaffold/pkg/domain"
	dErrors "scaffold/pkg/domain-errors"
)

func TestParseThingID(t *testing.T) {
	valid := []string{"t1", "550e8400-e29b-41d4-a716-446655440000", "a.b_c-d"}
	for _, s := range valid {
		id, err := ParseThingID(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, id.String())
	}

	invalid := []string{"", "has space", "slash/inside", strings.Repeat("a", 65)}
	for _, s := range invalid {
		_, err := ParseThingID(s)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "%q", s)
	}
}

func TestNewThingIDIsValid(t *testing.T) {
	_, err := ParseThingID(NewThingID().String())
	require.NoError(t, err)
}

func TestParseThingName(t *testing.T) {
	name, err := ParseThingName("  widget  ")
	require.NoError(t, err)
	assert.Equal(t, ThingName("widget"), name)

	_, err = ParseThingName("   ")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = ParseThingName(strings.Repeat("x", 129))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestCreateRecordsThingCreated(t *testing.T) {
	thing := Create("t1", "widget")

	events := thing.PullDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, ThingCreatedEvent, events[0].EventName())
	assert.Equal(t, "t1", events[0].AggregateID())

	payload, ok := domain.PayloadAs[ThingCreated](events[0])
	require.True(t, ok)
	assert.Equal(t, ThingCreated{ID: "t1", Name: "widget"}, payload)

	assert.Empty(t, thing.PullDomainEvents(), "events drain once")
}

func TestReconstituteRaisesNoEvents(t *testing.T) {
	thing := Reconstitute(Snapshot{ID: "t1", Name: "widget"})

	assert.Equal(t, ThingID("t1"), thing.ID())
	assert.Equal(t, ThingName("widget"), thing.Name())
	assert.Empty(t, thing.PullDomainEvents())
}
