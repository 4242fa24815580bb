package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	AggregateRoot
	id string
}

func createWidget(id string) *widget {
	w := &widget{id: id}
	w.Record(NewEvent(id, "test.widget_created", widgetCreated{ID: id}))
	return w
}

func TestPullDomainEvents(t *testing.T) {
	t.Run("drains the buffer", func(t *testing.T) {
		w := createWidget("t1")

		events := w.PullDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "test.widget_created", events[0].EventName())
		assert.Equal(t, "t1", events[0].AggregateID())

		assert.Empty(t, w.PullDomainEvents())
	})

	t.Run("keeps recording order", func(t *testing.T) {
		w := createWidget("t1")
		w.Record(NewEvent("t1", "test.widget_renamed", nil))

		events := w.PullDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, "test.widget_created", events[0].EventName())
		assert.Equal(t, "test.widget_renamed", events[1].EventName())
	})

	t.Run("concurrent record and pull lose nothing", func(t *testing.T) {
		w := &widget{id: "t1"}
		const writers = 50

		var wg sync.WaitGroup
		var mu sync.Mutex
		pulled := 0
		for range writers {
			wg.Add(2)
			go func() {
				defer wg.Done()
				w.Record(NewEvent("t1", "test.widget_touched", nil))
			}()
			go func() {
				defer wg.Done()
				n := len(w.PullDomainEvents())
				mu.Lock()
				pulled += n
				mu.Unlock()
			}()
		}
		wg.Wait()

		assert.Equal(t, writers, pulled+len(w.PullDomainEvents()))
	})
}
