package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressHub_PublishSubscribe(t *testing.T) {
	hub := NewProgressHub()

	ch, cancel := hub.Subscribe()
	defer cancel()
	assert.Equal(t, 1, hub.SubscriberCount())

	hub.Publish(BatchProgress{BatchID: "b1", Current: 5, Total: 5, Done: true})

	select {
	case p := <-ch:
		assert.Equal(t, "b1", p.BatchID)
		assert.Equal(t, 5, p.Current)
		assert.False(t, p.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no progress event received")
	}
}

func TestProgressHub_Unsubscribe(t *testing.T) {
	hub := NewProgressHub()

	_, cancel := hub.Subscribe()
	cancel()
	assert.Equal(t, 0, hub.SubscriberCount())
}

func TestProgressHub_Throttle(t *testing.T) {
	hub := NewProgressHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	// Rapid intermediate events are throttled to the first one.
	hub.Publish(BatchProgress{Current: 1, Total: 10})
	hub.Publish(BatchProgress{Current: 2, Total: 10})
	hub.Publish(BatchProgress{Current: 3, Total: 10})

	// The final event always gets through.
	hub.Publish(BatchProgress{Current: 10, Total: 10, Done: true})

	var events []BatchProgress
	for {
		select {
		case p := <-ch:
			events = append(events, p)
			continue
		default:
		}
		break
	}

	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].Current)
	assert.Equal(t, 10, events[1].Current)
}

func TestProgressHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewProgressHub()
	_, cancel := hub.Subscribe() // never drained
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(BatchProgress{Current: 10, Total: 10, Done: true})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
