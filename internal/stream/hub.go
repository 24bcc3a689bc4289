// Package stream pushes live workflow events (job updates, chat messages,
// notifications) to connected clients over WebSocket, one subscription per
// authenticated user.
package stream

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event kinds pushed to clients.
const (
	EventJobUpdate    = "job_update"
	EventMessage      = "message"
	EventNotification = "notification"
)

// Event is a single push to a user's live stream.
type Event struct {
	Kind      string    `json:"kind"`
	JobID     string    `json:"jobId,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub tracks connected clients per user and fans events out to them. A user
// may hold several connections (multiple tabs); events go to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{} // user id -> connections
	logger  *slog.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: map[string]map[*client]struct{}{},
		logger:  logger,
	}
}

// Subscribe registers a connection for userID and blocks until the peer
// disconnects. The caller owns the upgrade; the hub owns the connection from
// here on.
func (h *Hub) Subscribe(userID string, conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, 64)}

	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = map[*client]struct{}{}
	}
	h.clients[userID][c] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("stream subscribed", slog.String("user_id", userID))

	done := make(chan struct{})
	go c.writePump(done)

	// Read loop drains control frames and detects disconnect. Clients do
	// not send data over this socket.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients[userID], c)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
	h.mu.Unlock()

	close(c.send)
	<-done
	conn.Close()
	h.logger.Debug("stream unsubscribed", slog.String("user_id", userID))
}

// Publish sends an event to every connection userID currently holds. Slow
// clients whose buffer is full miss the event rather than blocking the
// workflow.
func (h *Hub) Publish(userID string, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("stream buffer full, dropping event",
				slog.String("user_id", userID),
				slog.String("kind", event.Kind),
			)
		}
	}
}

// Connections reports how many connections userID currently holds.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (c *client) writePump(done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		}
	}
}
