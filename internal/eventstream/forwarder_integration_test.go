//go:build integration

package eventstream

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"scaffold/internal/platform/config"
	"scaffold/internal/platform/kafka"
	"scaffold/pkg/domain"
	"scaffold/pkg/testutil/containers"
)

func TestForwarderAgainstBroker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	broker := containers.GetManager().GetRedpanda(t).Broker
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg := config.Default()
	cfg.Kafka.Brokers = []string{broker}
	cfg.Kafka.Topic = "forwarder-test"
	cfg.Kafka.Events = []string{"core.thing.thing_created"}

	client, err := kafka.New(ctx, cfg.Kafka)
	require.NoError(t, err)
	defer client.Close()

	f := NewForwarder(client, cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, f.On(ctx, domain.NewEvent("t1", "core.thing.thing_created", nil)))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(cfg.Kafka.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.NotEmpty(t, records)
	assert.Equal(t, []byte("t1"), records[0].Key)
}
