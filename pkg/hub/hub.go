// Package hub implements the broadcast hub: a registry of live subscriber
// connections and a best-effort multicast of typed JSON messages to all of
// them.
//
// Delivery is fire-and-forget, at-most-once per live subscriber. There is no
// acknowledgment, retry, or backpressure; a subscriber that cannot keep up
// has frames dropped, and a subscriber whose connection is gone is pruned
// from the registry during the next broadcast (or immediately when its
// handler unsubscribes).
package hub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Message types understood by current viewers. The set is open: a Message
// with an unknown type is still delivered verbatim.
const (
	TypeNormal    = "normal"
	TypePlayback  = "playback"
	TypeAnimation = "animation"
)

// Message is one broadcast notification. Data is type-specific: a string for
// normal and animation messages, a duration in milliseconds for playback.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// subscriberBuffer is the per-subscriber frame queue depth. Frames beyond
// this are dropped for that subscriber.
const subscriberBuffer = 64

// Subscriber is one live streaming connection registered with the hub.
type Subscriber struct {
	id     string
	frames chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

// ID returns the subscriber's opaque identity, used only for logging.
func (s *Subscriber) ID() string { return s.id }

// Frames returns the channel of serialized message frames for this
// subscriber. The channel is never closed; readers must also watch Done.
func (s *Subscriber) Frames() <-chan []byte { return s.frames }

// Done is closed when the subscriber is no longer registered.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// Close marks the subscriber as gone. It is idempotent and safe to call
// from any goroutine. The hub prunes closed subscribers on the next
// broadcast; Unsubscribe removes them immediately.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Hub tracks the set of active subscribers and multicasts messages to them.
// All methods are safe for concurrent use.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscriber]struct{}
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{subs: make(map[*Subscriber]struct{})}
}

// Subscribe registers a new subscriber and returns its handle. The caller
// owns the handle and must eventually pass it to Unsubscribe.
func (h *Hub) Subscribe() *Subscriber {
	s := &Subscriber{
		id:     uuid.NewString(),
		frames: make(chan []byte, subscriberBuffer),
		done:   make(chan struct{}),
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Unsubscribe removes s from the registry and closes it. Removing an
// already-absent subscriber is a no-op.
func (h *Hub) Unsubscribe(s *Subscriber) {
	if s == nil {
		return
	}
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	s.Close()
}

// Len returns the number of registered subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Broadcast serializes msg once and delivers the frame to every registered
// subscriber. A subscriber that has been closed is unregistered as a side
// effect instead of receiving the frame; a subscriber with a full queue has
// this frame dropped. Failure to reach one subscriber never affects the
// others.
func (h *Hub) Broadcast(msg Message) error {
	frame, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("hub: marshal message: %w", err)
	}

	h.mu.RLock()
	subs := make([]*Subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	var dead []*Subscriber
	for _, s := range subs {
		// A closed subscriber must never receive the frame; check before
		// the send so the two cases cannot race.
		select {
		case <-s.done:
			dead = append(dead, s)
			continue
		default:
		}
		select {
		case s.frames <- frame:
		default:
			// Drop the frame if the subscriber is slow.
			slog.Debug("hub: subscriber queue full, frame dropped", "subscriber", s.id, "type", msg.Type)
		}
	}
	for _, s := range dead {
		h.Unsubscribe(s)
	}
	return nil
}
