package hub

import (
	"fmt"
	"log/slog"
	"net/http"
)

// ServeSSE subscribes the caller to the hub over a Server-Sent Events
// stream. The connection stays open until the client disconnects or the
// subscriber is unsubscribed; either way the registry entry is released
// exactly once.
//
// Each broadcast message is written as one line-prefixed JSON frame:
//
//	data: {"type":"playback","data":10000}
func (h *Hub) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	s := h.Subscribe()
	defer h.Unsubscribe(s)

	slog.Info("sse subscriber connected", "subscriber", s.ID())
	defer slog.Info("sse subscriber disconnected", "subscriber", s.ID())

	// Stream-ready acknowledgment.
	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.Done():
			return
		case frame := <-s.Frames():
			if _, err := fmt.Fprintf(w, "data: %s\n\n", frame); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
