package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishInSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var got []string

	bus.Subscribe(func(e Event) { got = append(got, "first:"+e.Message) })
	bus.Subscribe(func(e Event) { got = append(got, "second:"+e.Message) })

	bus.Publish(Event{Kind: KindInfo, Message: "hi"})

	assert.Equal(t, []string{"first:hi", "second:hi"}, got)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	count := 0

	unsubscribe := bus.Subscribe(func(Event) { count++ })
	bus.Publish(Event{Message: "one"})
	unsubscribe()
	unsubscribe()
	bus.Publish(Event{Message: "two"})

	assert.Equal(t, 1, count)
}

func TestBus_StampsTime(t *testing.T) {
	bus := NewBus()
	var got Event
	bus.Subscribe(func(e Event) { got = e })

	bus.Publish(Event{Kind: KindError, Message: "boom"})
	assert.False(t, got.At.IsZero())

	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	bus.Publish(Event{Kind: KindError, Message: "boom", At: fixed})
	assert.Equal(t, fixed, got.At)
}

func TestBus_HandlerMaySubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.Subscribe(func(Event) {
		calls++
		bus.Subscribe(func(Event) {})
	})

	require.NotPanics(t, func() { bus.Publish(Event{Message: "x"}) })
	assert.Equal(t, 1, calls)
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	count := 0
	bus.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(Event{Kind: KindInfo})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, count)
}
