package analysis

import (
	"sync"
	"time"
)

// BatchProgress is one progress event for a running batch.
type BatchProgress struct {
	BatchID   string    `json:"batch_id"`
	Current   int       `json:"current"`
	Total     int       `json:"total"`
	Ticker    string    `json:"ticker"`
	Done      bool      `json:"done"`
	Timestamp time.Time `json:"timestamp"`
}

// ProgressHub fans batch progress events out to stream subscribers.
// Publishing never blocks: slow subscribers drop events instead of
// stalling the batch.
type ProgressHub struct {
	mu          sync.Mutex
	subscribers map[chan BatchProgress]struct{}

	lastPublish time.Time
	minInterval time.Duration
}

// NewProgressHub creates a hub throttled to at most 10 events/second.
// Final events (current == total) always bypass the throttle.
func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		subscribers: make(map[chan BatchProgress]struct{}),
		minInterval: 100 * time.Millisecond,
	}
}

// Subscribe registers a new subscriber. The returned channel is buffered;
// call the cancel function to unsubscribe.
func (h *ProgressHub) Subscribe() (<-chan BatchProgress, func()) {
	ch := make(chan BatchProgress, 16)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subscribers, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish sends a progress event to all subscribers, throttled to
// prevent flooding.
func (h *ProgressHub) Publish(p BatchProgress) {
	p.Timestamp = time.Now().UTC()

	h.mu.Lock()
	defer h.mu.Unlock()

	if !p.Done && p.Current != p.Total && p.Timestamp.Sub(h.lastPublish) < h.minInterval {
		return
	}
	h.lastPublish = p.Timestamp

	for ch := range h.subscribers {
		select {
		case ch <- p:
		default:
			// Subscriber is not keeping up, drop the event.
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (h *ProgressHub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
