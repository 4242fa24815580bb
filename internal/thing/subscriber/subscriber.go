// Package subscriber reacts to thing domain events.
package subscriber

import (
	"context"
	"fmt"
	"log/slog"

	"scaffold/internal/platform/metrics"
	"scaffold/internal/thing/models"
	"scaffold/pkg/domain"
)

type thingCounter interface {
	IncrementThingsCreated()
}

// OnThingCreated logs new things and counts them.
type OnThingCreated struct {
	logger  *slog.Logger
	counter thingCounter
}

var _ domain.EventHandler = (*OnThingCreated)(nil)

func NewOnThingCreated(logger *slog.Logger, m *metrics.Metrics) *OnThingCreated {
	return &OnThingCreated{logger: logger, counter: m}
}

func (h *OnThingCreated) SubscribedTo() []string {
	return []string{models.ThingCreatedEvent}
}

func (h *OnThingCreated) On(ctx context.Context, e domain.Event) error {
	payload, ok := domain.PayloadAs[models.ThingCreated](e)
	if !ok {
		return fmt.Errorf("%s: unexpected payload %T", e.EventName(), e.Payload())
	}
	h.counter.IncrementThingsCreated()
	h.logger.InfoContext(ctx, "thing created event received",
		"event_id", e.EventID(),
		"thing_id", payload.ID,
		"thing_name", payload.Name,
	)
	return nil
}
