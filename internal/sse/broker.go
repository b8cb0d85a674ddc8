// Package sse implements a Server-Sent Events broker for article change updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Broker fans article change events out to connected SSE clients.
//
// All mutable state lives in a single loop goroutine; public methods hand it
// closures over a channel, so the broker needs no locks. Slow clients never
// stall the loop: a frame that does not fit a client's buffer is dropped.
type Broker struct {
	feedMin time.Duration

	ops chan func(*brokerState)

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

type brokerState struct {
	clients  map[chan []byte]struct{}
	lastFeed time.Time
}

// NewBroker creates a broker whose feed.updated events are emitted at most
// once per feedThrottle. A non-positive throttle defaults to two seconds.
func NewBroker(feedThrottle time.Duration) *Broker {
	if feedThrottle <= 0 {
		feedThrottle = 2 * time.Second
	}

	b := &Broker{
		feedMin: feedThrottle,
		ops:     make(chan func(*brokerState), 256),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	st := &brokerState{clients: make(map[chan []byte]struct{})}
	for {
		select {
		case <-b.stopCh:
			for ch := range st.clients {
				close(ch)
			}
			return
		case op := <-b.ops:
			op(st)
		}
	}
}

// do hands op to the loop goroutine. It reports false when the broker has
// been closed and the op was never run.
func (b *Broker) do(op func(*brokerState)) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case b.ops <- op:
		return true
	case <-b.stopped:
		return false
	}
}

func (st *brokerState) broadcast(event Event) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return
	}
	frame := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))
	for ch := range st.clients {
		select {
		case ch <- frame:
		default:
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if !b.do(func(st *brokerState) { st.clients[ch] = struct{}{} }) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.do(func(st *brokerState) {
		if _, ok := st.clients[ch]; ok {
			delete(st.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	if !b.do(func(st *brokerState) { resp <- len(st.clients) }) {
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	b.do(func(st *brokerState) { st.broadcast(event) })
}

// PublishArticleEvent publishes an article change and a throttled feed.updated event.
func (b *Broker) PublishArticleEvent(kind, path string) {
	b.do(func(st *brokerState) {
		data := map[string]string{"path": path}
		switch kind {
		case "created":
			st.broadcast(Event{Type: "article.created", Data: data})
		case "updated":
			st.broadcast(Event{Type: "article.updated", Data: data})
		case "deleted":
			st.broadcast(Event{Type: "article.deleted", Data: data})
		}

		now := time.Now()
		if now.Sub(st.lastFeed) >= b.feedMin {
			st.lastFeed = now
			st.broadcast(Event{Type: "feed.updated", Data: map[string]string{}})
		}
	})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		}
	}
}
