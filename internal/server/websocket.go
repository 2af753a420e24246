package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/sitepress/internal/logging"
)

const (
	// Time allowed to write a message to a peer.
	writeWait = 10 * time.Second

	// Ping period for connection keepalive.
	pingPeriod = 30 * time.Second
)

// reloadMessage tells a connected page to reload itself.
const reloadMessage = "reload"

// Hub tracks live-reload websocket clients and broadcasts reload messages to
// them after each completed build.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	logger  logging.Logger
	origins []string
}

// NewHub creates a Hub accepting connections from the given origin patterns.
func NewHub(logger logging.Logger, origins []string) *Hub {
	if len(origins) == 0 {
		origins = []string{"localhost:*", "127.0.0.1:*"}
	}
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger.WithComponent("livereload"),
		origins: origins,
	}
}

// Handle upgrades a request to a websocket client connection. The connection
// lives until the peer disconnects or the server shuts down.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	go h.readLoop(r.Context(), conn)
}

// readLoop drains incoming frames so control messages are processed, and
// unregisters the client when the connection drops.
func (h *Hub) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer h.drop(conn)
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}

// Broadcast sends the reload message to every connected client. Clients that
// cannot be written to are dropped.
func (h *Hub) Broadcast(ctx context.Context) {
	for _, conn := range h.snapshot() {
		writeCtx, cancel := context.WithTimeout(ctx, writeWait)
		err := conn.Write(writeCtx, websocket.MessageText, []byte(reloadMessage))
		cancel()
		if err != nil {
			h.drop(conn)
		}
	}
}

// Run pings clients periodically until ctx is cancelled, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			for _, conn := range h.snapshot() {
				pingCtx, cancel := context.WithTimeout(ctx, writeWait)
				err := conn.Ping(pingCtx)
				cancel()
				if err != nil {
					h.drop(conn)
				}
			}
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) snapshot() []*websocket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	return conns
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		_ = conn.CloseNow()
	}
}

func (h *Hub) closeAll() {
	for _, conn := range h.snapshot() {
		_ = conn.Close(websocket.StatusNormalClosure, "server shutting down")
		h.drop(conn)
	}
}
