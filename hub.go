package main

import (
	"log/slog"

	"github.com/gorilla/websocket"

	"scanworks.io/rfid/tslgw/reader"
)

// wsConn is one connected websocket client.
type wsConn struct {
	ws   *websocket.Conn
	send chan reader.Event
}

func (c *wsConn) writer() {
	for ev := range c.send {
		if err := c.ws.WriteJSON(ev); err != nil {
			break
		}
	}
	c.ws.Close()
}

func (c *wsConn) reader(h *Hub) {
	for {
		// Clients only listen; reads just detect the close.
		if _, _, err := c.ws.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister <- c
}

// Hub fans reader events out to all connected websocket clients.
type Hub struct {
	logger      *slog.Logger
	connections map[*wsConn]bool
	register    chan *wsConn
	unregister  chan *wsConn
	broadcast   chan reader.Event
}

func newHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger,
		connections: make(map[*wsConn]bool),
		register:    make(chan *wsConn),
		unregister:  make(chan *wsConn),
		broadcast:   make(chan reader.Event, 32),
	}
}

// run starts the Hub. Meant to be run in its own goroutine.
func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.connections[c] = true
			h.logger.Info("Websocket client connected", "clients", len(h.connections))
			metricWSClients.Set(float64(len(h.connections)))
		case c := <-h.unregister:
			if _, ok := h.connections[c]; !ok {
				break
			}
			delete(h.connections, c)
			close(c.send)
			h.logger.Info("Websocket client disconnected", "clients", len(h.connections))
			metricWSClients.Set(float64(len(h.connections)))
		case ev := <-h.broadcast:
			for c := range h.connections {
				select {
				case c.send <- ev:
				default:
					// Slow client; drop it rather than stall the rest.
					delete(h.connections, c)
					close(c.send)
					metricWSClients.Set(float64(len(h.connections)))
				}
			}
		}
	}
}

// Broadcast queues an event for delivery to every client. It never
// blocks the caller.
func (h *Hub) Broadcast(ev reader.Event) {
	select {
	case h.broadcast <- ev:
	default:
	}
}
