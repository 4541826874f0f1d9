// Package sse implements a Server-Sent Events broker that fans events out to
// the browser tabs subscribed to a topic.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event represents an SSE event to deliver.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type subscription struct {
	topic string
	ch    chan []byte
}

type publishReq struct {
	topic string
	event Event
	resp  chan int
}

type countReq struct {
	topic string
	resp  chan int
}

// Broker manages SSE client connections grouped by topic.
//
// Concurrency model: a single internal event loop (goroutine) owns the client
// table. Public methods communicate with this loop through channels, so no
// mutexes are required.
type Broker struct {
	keepAlive time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan subscription
	publishCh     chan publishReq
	countReqCh    chan countReq

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that sends a comment line to idle streams every keepAlive.
func NewBroker(keepAlive time.Duration) *Broker {
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}

	b := &Broker{
		keepAlive:     keepAlive,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan subscription),
		publishCh:     make(chan publishReq, 256),
		countReqCh:    make(chan countReq),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)), nil
}

func (b *Broker) run() {
	defer close(b.stopped)

	topics := make(map[string]map[chan []byte]struct{})

	for {
		select {
		case <-b.stopCh:
			for _, clients := range topics {
				for ch := range clients {
					close(ch)
				}
			}
			return

		case sub := <-b.subscribeCh:
			clients, ok := topics[sub.topic]
			if !ok {
				clients = make(map[chan []byte]struct{})
				topics[sub.topic] = clients
			}
			clients[sub.ch] = struct{}{}

		case sub := <-b.unsubscribeCh:
			clients := topics[sub.topic]
			if _, ok := clients[sub.ch]; ok {
				delete(clients, sub.ch)
				close(sub.ch)
				if len(clients) == 0 {
					delete(topics, sub.topic)
				}
			}

		case req := <-b.publishCh:
			delivered := 0
			if raw, err := encode(req.event); err == nil {
				for ch := range topics[req.topic] {
					select {
					case ch <- raw:
						delivered++
					default:
						// Client buffer full; skip to avoid blocking broker loop.
					}
				}
			}
			if req.resp != nil {
				req.resp <- delivered
			}

		case req := <-b.countReqCh:
			req.resp <- len(topics[req.topic])
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

// Subscribe adds a client to topic and returns its channel.
func (b *Broker) Subscribe(topic string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscription{topic: topic, ch: ch}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(topic string, ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- subscription{topic: topic, ch: ch}:
	case <-b.stopped:
	}
}

// ClientCount returns the number of clients connected to topic.
func (b *Broker) ClientCount(topic string) int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- countReq{topic: topic, resp: resp}:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to every client of topic and returns how many received it.
func (b *Broker) Publish(topic string, event Event) int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.publishCh <- publishReq{topic: topic, event: event, resp: resp}:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// ServeTopic streams topic's events to the client until it disconnects.
func (b *Broker) ServeTopic(w http.ResponseWriter, r *http.Request, topic string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(topic)
	defer b.Unsubscribe(topic, ch)

	ticker := time.NewTicker(b.keepAlive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
