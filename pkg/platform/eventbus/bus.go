// Package eventbus provides the in-process implementation of domain.EventBus.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"scaffold/pkg/domain"
)

const tracerName = "scaffold/eventbus"

// Observer receives dispatch measurements. A nil Observer disables them.
type Observer interface {
	EventPublished(eventName string)
	HandlerFailed(eventName string)
	ObserveDispatch(eventName string, d time.Duration)
}

// InMemorySync dispatches events synchronously to handlers registered in the
// same process. Events of one Publish call are handled strictly in order; the
// handlers of a single event run concurrently and are all joined before the
// next event starts.
type InMemorySync struct {
	mu       sync.RWMutex
	handlers map[string][]domain.EventHandler

	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer
}

var _ domain.EventBus = (*InMemorySync)(nil)

// NewInMemorySync creates an empty bus.
func NewInMemorySync(logger *slog.Logger, observer Observer) *InMemorySync {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &InMemorySync{
		handlers: make(map[string][]domain.EventHandler),
		logger:   logger,
		observer: observer,
		tracer:   otel.Tracer(tracerName),
	}
}

// AddHandlers subscribes each handler to every event name it reports.
func (b *InMemorySync) AddHandlers(handlers ...domain.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, h := range handlers {
		if h == nil {
			continue
		}
		for _, name := range h.SubscribedTo() {
			b.handlers[name] = append(b.handlers[name], h)
		}
	}
}

// Subscribers returns the handlers registered for eventName in addition order.
func (b *InMemorySync) Subscribers(eventName string) []domain.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.EventHandler(nil), b.handlers[eventName]...)
}

// Publish dispatches events in order. The first event with a failing handler
// stops the batch and its failures are returned as *HandlerDispatchError.
func (b *InMemorySync) Publish(ctx context.Context, events ...domain.Event) error {
	for _, event := range events {
		if err := b.dispatch(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (b *InMemorySync) dispatch(ctx context.Context, event domain.Event) error {
	name := event.EventName()
	subscribers := b.Subscribers(name)
	if b.observer != nil {
		b.observer.EventPublished(name)
	}
	if len(subscribers) == 0 {
		return nil
	}

	ctx, span := b.tracer.Start(ctx, "eventbus.dispatch "+name, trace.WithAttributes(
		attribute.String("event.name", name),
		attribute.String("event.id", event.EventID()),
		attribute.String("event.aggregate_id", event.AggregateID()),
		attribute.Int("event.subscribers", len(subscribers)),
	))
	defer span.End()

	start := time.Now()
	errs := make([]error, len(subscribers))

	var g errgroup.Group
	for i, h := range subscribers {
		g.Go(func() error {
			errs[i] = invoke(ctx, h, event)
			return nil
		})
	}
	_ = g.Wait()

	elapsed := time.Since(start)
	if b.observer != nil {
		b.observer.ObserveDispatch(name, elapsed)
	}

	var failed []error
	for _, err := range errs {
		if err == nil {
			continue
		}
		failed = append(failed, err)
		if b.observer != nil {
			b.observer.HandlerFailed(name)
		}
	}

	if len(failed) > 0 {
		dispatchErr := &HandlerDispatchError{EventName: name, EventID: event.EventID(), Errs: failed}
		span.RecordError(dispatchErr)
		span.SetStatus(codes.Error, "handler failed")
		b.logger.ErrorContext(ctx, "event dispatch failed",
			"event_name", name,
			"event_id", event.EventID(),
			"failures", len(failed),
			"error", dispatchErr,
		)
		return dispatchErr
	}

	b.logger.DebugContext(ctx, "event dispatched",
		"event_name", name,
		"event_id", event.EventID(),
		"subscribers", len(subscribers),
		"duration", elapsed,
	)
	return nil
}

func invoke(ctx context.Context, h domain.EventHandler, event domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Handler: fmt.Sprintf("%T", h), Value: r}
		}
	}()
	return h.On(ctx, event)
}
