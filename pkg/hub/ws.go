package hub

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Viewers connect from the companion front end on a different origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeWS subscribes the caller to the hub over a WebSocket connection.
// Frames carry the same JSON payload as the SSE stream, one message per
// frame. The subscriber is released when the peer closes the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s := h.Subscribe()
	defer h.Unsubscribe(s)

	slog.Info("websocket subscriber connected", "subscriber", s.ID())
	defer slog.Info("websocket subscriber disconnected", "subscriber", s.ID())

	// The read loop exists only to observe the peer's close.
	go func() {
		defer s.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(Message{Type: "connected"}); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.Done():
			return
		case frame := <-s.Frames():
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}
}
