// Package realtime fans out change events to connected browsers over
// WebSocket. Clients subscribe with their JWT; events are scoped to the
// company in the token, so one company never sees another's payroll.
package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"nomina/internal/domain/auth"
	"nomina/internal/domain/notifications"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Event change kinds, mirroring the row operation that produced them.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// Event is one table-level change. Old and New carry the row payloads
// where available; consumers treat events as triggers to refetch, not
// as authoritative state.
type Event struct {
	EventType string `json:"eventType"`
	Table     string `json:"table"`
	Old       any    `json:"old,omitempty"`
	New       any    `json:"new,omitempty"`
}

type client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	companyID string
	userID    string
}

// Hub keeps active connections grouped by company.
type Hub struct {
	mu         sync.RWMutex
	conns      map[string]map[*client]bool
	register   chan *client
	unregister chan *client
	closed     chan struct{}
	once       sync.Once
}

func NewHub() *Hub {
	return &Hub{
		conns:      make(map[string]map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		closed:     make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if _, ok := h.conns[c.companyID]; !ok {
				h.conns[c.companyID] = make(map[*client]bool)
			}
			h.conns[c.companyID][c] = true
			h.mu.Unlock()
			slog.Debug("ws client connected", "company_id", c.companyID, "user_id", c.userID)
		case c := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.conns[c.companyID]; ok {
				if _, exists := set[c]; exists {
					delete(set, c)
					close(c.send)
					if len(set) == 0 {
						delete(h.conns, c.companyID)
					}
				}
			}
			h.mu.Unlock()
			slog.Debug("ws client disconnected", "company_id", c.companyID, "user_id", c.userID)
		case <-h.closed:
			h.mu.Lock()
			for _, set := range h.conns {
				for c := range set {
					if c.conn != nil {
						c.conn.Close()
					}
					close(c.send)
				}
			}
			h.conns = make(map[string]map[*client]bool)
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) Stop() {
	h.once.Do(func() { close(h.closed) })
}

// Publish sends one change event to every connection of the company.
// A client whose buffer is full gets disconnected rather than blocking
// the publisher.
func (h *Hub) Publish(companyID string, evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		slog.Error("ws marshal failed", "table", evt.Table, "error", err)
		return
	}
	h.broadcast(companyID, data)
}

// PublishNotification satisfies the notifications publisher.
func (h *Hub) PublishNotification(companyID string, n notifications.Notification) {
	h.Publish(companyID, Event{EventType: EventInsert, Table: "notifications", New: n})
}

func (h *Hub) broadcast(companyID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.conns[companyID] {
		select {
		case c.send <- data:
		default:
			go func(cl *client) {
				h.unregister <- cl
				if cl.conn != nil {
					cl.conn.Close()
				}
			}(c)
		}
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(msg)

			// Drain whatever queued up while writing.
			n := len(c.send)
			for i := 0; i < n; i++ {
				_, _ = w.Write([]byte{'\n'})
				_, _ = w.Write(<-c.send)
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS authenticates the request with the same JWT used by the REST
// API (Authorization header or ?token query param) and registers the
// connection under the token's company.
func ServeWS(hub *Hub, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			token = auth.BearerToken(r.Header.Get("Authorization"))
		}
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ParseToken(jwtSecret, token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("ws upgrade failed", "error", err)
			return
		}

		c := &client{
			hub:       hub,
			conn:      conn,
			send:      make(chan []byte, 256),
			companyID: claims.CompanyID,
			userID:    claims.UserID,
		}
		hub.register <- c

		go c.writePump()
		go c.readPump()
	}
}
