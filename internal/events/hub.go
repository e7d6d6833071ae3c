// Package events fans one-way notifications out to the UI listeners currently attached.
package events

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrNoListener is returned by Emit when nobody is subscribed.
	ErrNoListener = errors.New("no listener attached")
	// ErrListenerBehind is returned by Emit when at least one listener's buffer was full.
	ErrListenerBehind = errors.New("listener buffer full, event dropped")
)

// DefaultBuffer is the per-listener queue length.
const DefaultBuffer = 32

// Event is a single notification. Payload is encoded as JSON by the transport.
type Event struct {
	ID      string
	Name    string
	Payload any
}

// Hub delivers events to subscribers without blocking the emitter.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]chan Event
	nextID uint64
	buffer int

	ready     chan struct{}
	readyOnce sync.Once
}

// NewHub creates a hub whose listeners buffer up to buffer events each.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[uint64]chan Event),
		buffer: buffer,
		ready:  make(chan struct{}),
	}
}

// Subscribe attaches a listener. The returned cancel func detaches it and closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.buffer)
	h.subs[id] = ch
	h.mu.Unlock()

	h.readyOnce.Do(func() { close(h.ready) })

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Ready is closed once the first listener subscribes.
func (h *Hub) Ready() <-chan struct{} {
	return h.ready
}

// Listeners returns the number of attached listeners.
func (h *Hub) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Emit sends an event to every listener. It never blocks and never retries.
func (h *Hub) Emit(name string, payload any) error {
	ev := Event{ID: uuid.NewString(), Name: name, Payload: payload}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.subs) == 0 {
		return ErrNoListener
	}

	var err error
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			err = ErrListenerBehind
		}
	}
	return err
}
