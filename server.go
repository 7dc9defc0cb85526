package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scanworks.io/rfid/tslgw/reader"
)

// Server handles incoming HTTP requests for interacting with the
// configured reader instance
type Server struct {
	Logger *slog.Logger
	Reader *reader.Reader
	Hub    *Hub
}

// The gateway serves LAN dashboards on other origins.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /send", s.handleSend)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /version", s.handleVersion)
	mux.HandleFunc("GET /battery", s.handleBattery)
	mux.HandleFunc("GET /tags", s.handleTags)
	mux.HandleFunc("DELETE /tags", s.handleClearTags)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)

}

func (s *Server) sendJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// handleSend processes incoming HTTP POST requests to send reader commands
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	type SendRequest struct {
		Command string `json:"command"`
		Silent  bool   `json:"silent"`
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Command == "" {
		s.sendError(w, "the 'command' field is required", http.StatusBadRequest)
		return
	}

	if err := s.Reader.Send(r.Context(), req.Command, req.Silent); err != nil {
		s.Logger.Error("Failed to send command", "error", err, "command", req.Command)
		status := http.StatusInternalServerError
		if errors.Is(err, reader.ErrNotConnected) {
			status = http.StatusServiceUnavailable
		}
		s.sendError(w, err.Error(), status)
		return
	}

	s.Logger.Info("Command sent", "command", req.Command, "silent", req.Silent)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, map[string]any{
		"connected":   s.Reader.Connected(),
		"unique_tags": s.Reader.State().Tags.Len(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, s.Reader.State().Version())
}

func (s *Server) handleBattery(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, s.Reader.State().Battery())
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, s.Reader.State().Tags.Snapshot())
}

func (s *Server) handleClearTags(w http.ResponseWriter, r *http.Request) {
	s.Reader.State().Tags.Clear()
	metricUniqueTags.Set(0)
	s.Logger.Info("Tag store cleared")
	w.WriteHeader(http.StatusNoContent)
}

// handleWS upgrades the connection and subscribes it to the event stream
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Error("Websocket upgrade failed", "error", err)
		return
	}
	c := &wsConn{ws: ws, send: make(chan reader.Event, 32)}
	s.Hub.register <- c
	go c.writer()
	go c.reader(s.Hub)
}
