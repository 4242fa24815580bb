package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scaffold/pkg/domain"
)

type recordingHandler struct {
	name   string
	events []string
	log    *callLog
	err    error
}

func (h *recordingHandler) SubscribedTo() []string { return h.events }

func (h *recordingHandler) On(_ context.Context, e domain.Event) error {
	h.log.add(h.name + ":" + e.EventName())
	return h.err
}

type callLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *callLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, s)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

type funcHandler struct {
	events []string
	fn     func(ctx context.Context, e domain.Event) error
}

func (h funcHandler) SubscribedTo() []string { return h.events }

func (h funcHandler) On(ctx context.Context, e domain.Event) error { return h.fn(ctx, e) }

type countingObserver struct {
	mu        sync.Mutex
	published map[string]int
	failed    map[string]int
	observed  int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{published: map[string]int{}, failed: map[string]int{}}
}

func (o *countingObserver) EventPublished(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.published[name]++
}

func (o *countingObserver) HandlerFailed(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed[name]++
}

func (o *countingObserver) ObserveDispatch(string, time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observed++
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewInMemorySync(nil, nil)

	err := bus.Publish(context.Background(), domain.NewEvent("a1", "core.thing.thing_created", nil))

	require.NoError(t, err)
}

func TestPublishDeliversEventsInOrder(t *testing.T) {
	log := &callLog{}
	bus := NewInMemorySync(nil, nil)
	bus.AddHandlers(
		&recordingHandler{name: "h1", events: []string{"e1", "e2"}, log: log},
		&recordingHandler{name: "h2", events: []string{"e2"}, log: log},
	)

	err := bus.Publish(context.Background(),
		domain.NewEvent("a", "e1", nil),
		domain.NewEvent("a", "e2", nil),
		domain.NewEvent("a", "e3", nil),
	)
	require.NoError(t, err)

	entries := log.snapshot()
	require.Len(t, entries, 3)
	assert.Equal(t, "h1:e1", entries[0], "every handler of e1 completes before e2 starts")
	assert.ElementsMatch(t, []string{"h1:e2", "h2:e2"}, entries[1:])
}

func TestHandlersOfOneEventRunConcurrently(t *testing.T) {
	const n = 3
	var arrived sync.WaitGroup
	arrived.Add(n)
	release := make(chan struct{})

	bus := NewInMemorySync(nil, nil)
	for range n {
		bus.AddHandlers(funcHandler{events: []string{"e"}, fn: func(ctx context.Context, _ domain.Event) error {
			arrived.Done()
			select {
			case <-release:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}})
	}

	go func() {
		arrived.Wait()
		close(release)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, bus.Publish(ctx, domain.NewEvent("a", "e", nil)))
}

func TestFailureAbortsRemainingEvents(t *testing.T) {
	log := &callLog{}
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	obs := newCountingObserver()

	bus := NewInMemorySync(nil, obs)
	bus.AddHandlers(
		&recordingHandler{name: "ok", events: []string{"e1", "e2"}, log: log},
		&recordingHandler{name: "a", events: []string{"e1"}, log: log, err: errA},
		&recordingHandler{name: "b", events: []string{"e1"}, log: log, err: errB},
	)

	first := domain.NewEvent("agg", "e1", nil)
	err := bus.Publish(context.Background(), first, domain.NewEvent("agg", "e2", nil))

	var dispatchErr *HandlerDispatchError
	require.ErrorAs(t, err, &dispatchErr)
	assert.Equal(t, "e1", dispatchErr.EventName)
	assert.Equal(t, first.EventID(), dispatchErr.EventID)
	assert.Len(t, dispatchErr.Errs, 2)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	assert.NotContains(t, log.snapshot(), "ok:e2")
	assert.Equal(t, 2, obs.failed["e1"])
	assert.Zero(t, obs.published["e2"])
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	bus := NewInMemorySync(nil, nil)
	bus.AddHandlers(funcHandler{events: []string{"e"}, fn: func(context.Context, domain.Event) error {
		panic("boom")
	}})

	err := bus.Publish(context.Background(), domain.NewEvent("a", "e", nil))

	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "boom", panicErr.Value)
}

func TestAddHandlersKeepsOrderPerEvent(t *testing.T) {
	log := &callLog{}
	h1 := &recordingHandler{name: "h1", events: []string{"e"}, log: log}
	h2 := &recordingHandler{name: "h2", events: []string{"e", "f"}, log: log}

	bus := NewInMemorySync(nil, nil)
	bus.AddHandlers(h1, nil, h2)

	assert.Equal(t, []domain.EventHandler{h1, h2}, bus.Subscribers("e"))
	assert.Equal(t, []domain.EventHandler{h2}, bus.Subscribers("f"))
	assert.Empty(t, bus.Subscribers("g"))
}

func TestHandlersReceiveTypedPayload(t *testing.T) {
	type created struct{ Name string }
	var got created

	bus := NewInMemorySync(nil, newCountingObserver())
	bus.AddHandlers(funcHandler{events: []string{"e"}, fn: func(_ context.Context, e domain.Event) error {
		p, ok := domain.PayloadAs[created](e)
		if !ok {
			return errors.New("unexpected payload")
		}
		got = p
		return nil
	}})

	require.NoError(t, bus.Publish(context.Background(), domain.NewEvent("a", "e", created{Name: "widget"})))
	assert.Equal(t, "widget", got.Name)
}
