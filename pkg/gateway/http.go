package gateway

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/animahq/anima/pkg/configdoc"
	"github.com/animahq/anima/pkg/subconscious"
)

// Server exposes the gateway over HTTP:
//
//	POST /api/dispatch      dispatch one input event
//	GET  /api/events        subscribe over Server-Sent Events
//	GET  /api/ws            subscribe over WebSocket
//	GET  /api/data          read the config or subconscious document
//	POST /api/data          update the config or subconscious document
//
// Every route is behind the feature gate; when the gateway is disabled all
// requests, subscriptions included, fail with 503.
type Server struct {
	gw     *Gateway
	config *configdoc.Store
}

// NewServer creates an HTTP server around gw. The configdoc store may be nil
// when the data endpoint is not served.
func NewServer(gw *Gateway, config *configdoc.Store) *Server {
	return &Server{gw: gw, config: config}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/dispatch", s.handleDispatch)
	mux.HandleFunc("GET /api/events", s.gated(s.gw.hub.ServeSSE))
	mux.HandleFunc("GET /api/ws", s.gated(s.gw.hub.ServeWS))
	mux.HandleFunc("/api/data", s.gated(s.handleData))
	return mux
}

// gated short-circuits a handler with 503 while the feature is disabled.
func (s *Server) gated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.gw.Enabled() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "feature disabled"})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	start := time.Now()
	resp, err := s.gw.Dispatch(r.Context(), req)
	logDispatch(req, resp, err, time.Since(start))

	writeJSON(w, dispatchStatus(err), resp)
}

func dispatchStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrFeatureDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrUnknownInputType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func logDispatch(req Request, resp Response, err error, elapsed time.Duration) {
	if err != nil {
		slog.Warn("dispatch rejected",
			"session", resp.SessionID, "inputType", req.InputType,
			"err", err, "elapsed", elapsed)
		return
	}
	slog.Info("dispatch complete",
		"session", resp.SessionID, "inputType", req.InputType,
		"outputType", resp.OutputType, "elapsed", elapsed)
}

// handleData serves the original whole-document data surface: the JSON
// config document and the subconscious memory sequence, selected by the
// type query parameter.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("type") {
	case "config":
		s.handleConfigData(w, r)
	case "subconscious":
		s.handleSubconsciousData(w, r)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown data type"})
	}
}

func (s *Server) handleConfigData(w http.ResponseWriter, r *http.Request) {
	if s.config == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "config store not configured"})
		return
	}
	switch r.Method {
	case http.MethodGet:
		doc, err := s.config.All()
		if err != nil {
			slog.Error("config read failed", "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "config read failed"})
			return
		}
		writeJSON(w, http.StatusOK, doc)
	case http.MethodPost:
		var update struct {
			Key   string `json:"key"`
			Value any    `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil || update.Key == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "update needs key and value"})
			return
		}
		if err := s.config.Set(update.Key, update.Value); err != nil {
			var unknown *configdoc.ErrUnknownKey
			if errors.As(err, &unknown) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": unknown.Error()})
				return
			}
			slog.Error("config update failed", "key", update.Key, "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "config update failed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSubconsciousData(w http.ResponseWriter, r *http.Request) {
	if s.gw.memory == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "memory store not configured"})
		return
	}
	switch r.Method {
	case http.MethodGet:
		entries, err := s.gw.memory.All(r.Context())
		if err != nil {
			slog.Error("subconscious read failed", "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "memory read failed"})
			return
		}
		if entries == nil {
			entries = []subconscious.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	case http.MethodPost:
		var entries []subconscious.Entry
		if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "update needs an entry array"})
			return
		}
		if err := s.gw.memory.Replace(r.Context(), entries); err != nil {
			slog.Error("subconscious update failed", "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "memory update failed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response failed", "err", err)
	}
}
