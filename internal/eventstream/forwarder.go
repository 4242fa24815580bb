// Package eventstream forwards selected domain events to a Kafka topic.
package eventstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"scaffold/internal/platform/config"
	"scaffold/pkg/domain"
	"scaffold/pkg/platform/registry"
)

// ModuleName is the discovery name of the forwarder.
const ModuleName = "eventstream"

const headerEventName = "event_name"

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Forwarder publishes every subscribed event as a JSON envelope keyed by
// aggregate ID, so one aggregate's events stay ordered within a partition.
type Forwarder struct {
	producer producer
	topic    string
	events   []string
	logger   *slog.Logger
}

var _ domain.EventHandler = (*Forwarder)(nil)

func NewForwarder(client *kgo.Client, cfg config.Config, logger *slog.Logger) *Forwarder {
	return &Forwarder{
		producer: client,
		topic:    cfg.Kafka.Topic,
		events:   append([]string(nil), cfg.Kafka.Events...),
		logger:   logger,
	}
}

func (f *Forwarder) SubscribedTo() []string { return f.events }

func (f *Forwarder) On(ctx context.Context, e domain.Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.EventName(), err)
	}
	record := &kgo.Record{
		Topic: f.topic,
		Key:   []byte(e.AggregateID()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: headerEventName, Value: []byte(e.EventName())},
		},
		Timestamp: e.OccurredOn(),
	}
	if err := f.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("forward %s to %s: %w", e.EventName(), f.topic, err)
	}
	f.logger.DebugContext(ctx, "event forwarded",
		"event_name", e.EventName(),
		"event_id", e.EventID(),
		"topic", f.topic,
	)
	return nil
}

// Module declares the forwarder. Only add it to the manifest when Kafka is configured.
type Module struct{}

func (Module) Name() string { return ModuleName }

func (Module) Declare(r *registry.Registry) error {
	return r.DeclareEventHandler(registry.EventHandler{Constructor: NewForwarder})
}
