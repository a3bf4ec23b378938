// Package sse streams post change notifications to readers as Server-Sent
// Events.
//
// Two event families are sent. post.created, post.updated and post.deleted
// carry one PostEvent each and are delivered as they happen. catalog.updated
// carries a CatalogEvent naming every slug that changed since the previous
// catalog event; it is sent at most once per throttle window so listing views
// refetch once per burst of edits.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync/atomic"
	"time"
)

// Post change kinds.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

const (
	defaultCatalogThrottle = 2 * time.Second
	keepAliveInterval      = 25 * time.Second
	clientBuffer           = 64
)

// PostEvent is one change to a post file.
type PostEvent struct {
	Kind string `json:"kind"`
	Slug string `json:"slug"`
}

func (e PostEvent) valid() bool {
	switch e.Kind {
	case KindCreated, KindUpdated, KindDeleted:
		return e.Slug != ""
	}
	return false
}

// CatalogEvent tells listing views to refetch. Slugs is sorted.
type CatalogEvent struct {
	Slugs []string `json:"slugs"`
}

// Broker fans post changes out to connected readers.
//
// A single goroutine owns the subscriber set and the catalog window; public
// methods talk to it over channels.
type Broker struct {
	throttle time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	postCh        chan PostEvent
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker. catalogThrottle is the minimum gap between two
// catalog.updated events; non-positive selects 2s.
func NewBroker(catalogThrottle time.Duration) *Broker {
	if catalogThrottle <= 0 {
		catalogThrottle = defaultCatalogThrottle
	}

	b := &Broker{
		throttle:      catalogThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		postCh:        make(chan PostEvent, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

// fanout is the state owned by the broker goroutine.
type fanout struct {
	clients     map[chan []byte]struct{}
	seq         uint64
	changed     map[string]struct{}
	lastCatalog time.Time
}

// send frames v as event name and offers it to every client. A client whose
// buffer is full misses the frame.
func (f *fanout) send(name string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	f.seq++
	frame := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", f.seq, name, payload))
	for ch := range f.clients {
		select {
		case ch <- frame:
		default:
		}
	}
}

// flushCatalog sends the slugs gathered in the current window and opens the
// next one.
func (f *fanout) flushCatalog(now time.Time) {
	slugs := make([]string, 0, len(f.changed))
	for slug := range f.changed {
		slugs = append(slugs, slug)
	}
	slices.Sort(slugs)
	clear(f.changed)
	f.lastCatalog = now
	f.send("catalog.updated", CatalogEvent{Slugs: slugs})
}

func (b *Broker) run() {
	defer close(b.stopped)

	f := &fanout{
		clients: make(map[chan []byte]struct{}),
		changed: make(map[string]struct{}),
	}
	// trailing fires when a throttled window closes with changes pending.
	var trailing *time.Timer
	var trailingC <-chan time.Time

	for {
		select {
		case <-b.stopCh:
			if trailing != nil {
				trailing.Stop()
			}
			for ch := range f.clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			f.clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := f.clients[ch]; ok {
				delete(f.clients, ch)
				close(ch)
			}

		case ev := <-b.postCh:
			f.send("post."+ev.Kind, ev)
			f.changed[ev.Slug] = struct{}{}
			if trailingC != nil {
				continue
			}
			if wait := b.throttle - time.Since(f.lastCatalog); wait > 0 {
				trailing = time.NewTimer(wait)
				trailingC = trailing.C
				continue
			}
			f.flushCatalog(time.Now())

		case now := <-trailingC:
			trailingC = nil
			f.flushCatalog(now)

		case resp := <-b.countReqCh:
			resp <- len(f.clients)
		}
	}
}

// Close stops the broker and closes every client channel. It is safe to call
// more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel. After Close the
// channel is returned already closed.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
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

// PublishPost broadcasts a post change and records its slug for the next
// catalog.updated event. Events with an unknown kind or an empty slug are
// dropped.
func (b *Broker) PublishPost(ev PostEvent) {
	if b.closed.Load() || !ev.valid() {
		return
	}
	select {
	case b.postCh <- ev:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
// A ": connected" comment is written first so clients see the stream open,
// and a comment line is repeated while idle to keep proxies from timing out.
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
	_, _ = w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
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
