package hub_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/animahq/anima/pkg/hub"
)

func TestBroadcastDeliversToAll(t *testing.T) {
	h := hub.New()

	s1 := h.Subscribe()
	s2 := h.Subscribe()
	s3 := h.Subscribe()
	t.Cleanup(func() {
		h.Unsubscribe(s1)
		h.Unsubscribe(s2)
		h.Unsubscribe(s3)
	})

	if err := h.Broadcast(hub.Message{Type: hub.TypePlayback, Data: 10000}); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}

	want := `{"type":"playback","data":10000}`
	for i, s := range []*hub.Subscriber{s1, s2, s3} {
		select {
		case frame := <-s.Frames():
			if string(frame) != want {
				t.Fatalf("subscriber %d frame = %s, want %s", i, frame, want)
			}
		default:
			t.Fatalf("subscriber %d received no frame", i)
		}
	}
}

func TestBroadcastPrunesClosedSubscriber(t *testing.T) {
	h := hub.New()

	s1 := h.Subscribe()
	s2 := h.Subscribe()
	dead := h.Subscribe()
	t.Cleanup(func() {
		h.Unsubscribe(s1)
		h.Unsubscribe(s2)
	})

	// Simulate a peer that disconnected before the broadcast.
	dead.Close()

	if err := h.Broadcast(hub.Message{Type: hub.TypeNormal, Data: "hi"}); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}

	// The two live subscribers still receive the frame.
	for i, s := range []*hub.Subscriber{s1, s2} {
		select {
		case <-s.Frames():
		default:
			t.Fatalf("subscriber %d received no frame", i)
		}
	}

	// The closed one is gone from the registry.
	if h.Len() != 2 {
		t.Fatalf("Len = %d after pruning, want 2", h.Len())
	}

	// And it never got the frame queued.
	select {
	case frame := <-dead.Frames():
		t.Fatalf("closed subscriber received frame %s", frame)
	default:
	}
}

func TestBroadcastPruneIsDeterministic(t *testing.T) {
	h := hub.New()
	alive := h.Subscribe()
	t.Cleanup(func() { h.Unsubscribe(alive) })

	// Pruning must not depend on select ordering: a subscriber closed
	// before the broadcast is removed every time, even with buffer space.
	for i := range 200 {
		dead := h.Subscribe()
		dead.Close()

		if err := h.Broadcast(hub.Message{Type: hub.TypeNormal, Data: "x"}); err != nil {
			t.Fatalf("round %d: Broadcast: %v", i, err)
		}
		if h.Len() != 1 {
			t.Fatalf("round %d: Len = %d, closed subscriber not pruned", i, h.Len())
		}
		select {
		case frame := <-dead.Frames():
			t.Fatalf("round %d: closed subscriber received frame %s", i, frame)
		default:
		}

		// Keep the live subscriber's queue empty across rounds.
		select {
		case <-alive.Frames():
		default:
			t.Fatalf("round %d: live subscriber received no frame", i)
		}
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	h := hub.New()
	s := h.Subscribe()

	h.Unsubscribe(s)
	h.Unsubscribe(s) // no-op
	h.Unsubscribe(nil)

	if h.Len() != 0 {
		t.Fatalf("Len = %d, want 0", h.Len())
	}

	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed after Unsubscribe")
	}
}

func TestSlowSubscriberDropsFramesOnly(t *testing.T) {
	h := hub.New()
	slow := h.Subscribe()
	t.Cleanup(func() { h.Unsubscribe(slow) })

	// Fill the queue well past its depth; Broadcast must not block and the
	// subscriber must stay registered.
	for i := range 200 {
		if err := h.Broadcast(hub.Message{Type: hub.TypeAnimation, Data: "wave"}); err != nil {
			t.Fatalf("Broadcast %d: %v", i, err)
		}
	}
	if h.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (slow subscriber must not be dropped)", h.Len())
	}
}

func TestServeSSE(t *testing.T) {
	h := hub.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := httptest.NewRequest("GET", "/api/events", nil).WithContext(ctx)
	w := newSSERecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeSSE(w, r)
	}()

	// Wait for the subscriber to register and the ready frame to arrive.
	waitFor(t, func() bool { return h.Len() == 1 })
	waitFor(t, func() bool { return strings.Contains(w.String(), `"connected"`) })

	if err := h.Broadcast(hub.Message{Type: hub.TypeNormal, Data: "hello"}); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	waitFor(t, func() bool {
		return strings.Contains(w.String(), `data: {"type":"normal","data":"hello"}`)
	})

	// Client disconnect releases the registry entry.
	cancel()
	<-done
	waitFor(t, func() bool { return h.Len() == 0 })

	// Frames are parseable JSON after the "data: " prefix.
	sc := bufio.NewScanner(strings.NewReader(w.String()))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			t.Fatalf("frame line without data prefix: %q", line)
		}
		var msg hub.Message
		if err := json.Unmarshal([]byte(payload), &msg); err != nil {
			t.Fatalf("frame %q is not valid JSON: %v", payload, err)
		}
	}
}

// sseRecorder is an httptest.ResponseRecorder that synchronizes reads of the
// body with the handler goroutine's writes.
type sseRecorder struct {
	*httptest.ResponseRecorder
	mu chan struct{}
}

func newSSERecorder() *sseRecorder {
	rec := &sseRecorder{ResponseRecorder: httptest.NewRecorder(), mu: make(chan struct{}, 1)}
	rec.mu <- struct{}{}
	return rec
}

func (r *sseRecorder) Write(p []byte) (int, error) {
	<-r.mu
	defer func() { r.mu <- struct{}{} }()
	return r.ResponseRecorder.Write(p)
}

func (r *sseRecorder) String() string {
	<-r.mu
	defer func() { r.mu <- struct{}{} }()
	return r.Body.String()
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}
