package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
)

// Event announces a change to a quote, RFQ or supplier.
type Event struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	RFQID  string `json:"rfq_id,omitempty"`
	Action string `json:"action"`
}

// client wraps a WebSocket connection with a mutex for thread-safe writes.
type client struct {
	conn *ws.Conn
	mu   sync.Mutex
}

// Hub maintains connected WebSocket clients and broadcasts events.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

func (h *Hub) register(c *client) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	return len(h.clients)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		_ = c.conn.Close()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to all connected clients. Clients that cannot be
// written to are dropped.
func (h *Hub) Broadcast(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		slog.Error("ws: marshal event", "error", err)
		return
	}
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.mu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		err := c.conn.WriteMessage(ws.TextMessage, data)
		c.mu.Unlock()
		if err != nil {
			slog.Debug("ws: dropping client", "error", err)
			h.unregister(c)
		}
	}
}

// BroadcastChange broadcasts "<kind>_<action>d", e.g. quote_created.
func (h *Hub) BroadcastChange(kind, action, id, rfqID string) {
	h.Broadcast(Event{
		Type:   kind + "_" + action + "d",
		ID:     id,
		RFQID:  rfqID,
		Action: action,
	})
}

var upgrader = ws.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades the connection and keeps it alive with pings until the
// peer goes away.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("ws: upgrade failed", "error", err)
			return
		}

		c := &client{conn: conn}
		slog.Info("ws: client connected", "clients", h.register(c))

		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		})

		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					c.mu.Lock()
					err := conn.WriteControl(ws.PingMessage, nil, time.Now().Add(5*time.Second))
					c.mu.Unlock()
					if err != nil {
						return
					}
				}
			}
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.unregister(c)
		slog.Info("ws: client disconnected")
	}
}

// URLFor maps an HTTP base URL to the event stream's ws:// or wss:// URL.
func URLFor(baseURL string) string {
	u := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}

// Listen connects to url and calls fn for each event until ctx is done or
// the connection fails.
func Listen(ctx context.Context, url string, fn func(Event)) error {
	conn, _, err := ws.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("ws: dial %s: %w", url, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("ws: read: %w", err)
		}
		var evt Event
		if err := json.Unmarshal(data, &evt); err != nil {
			slog.Warn("ws: ignoring malformed event", "error", err)
			continue
		}
		fn(evt)
	}
}
