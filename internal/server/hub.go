// internal/server/hub.go
package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// upgrader is used to upgrade HTTP connections to WebSocket connections.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Live reload only runs on a local dev server.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub maintains the set of live-reload clients and broadcasts messages to them.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	log     logrus.FieldLogger
}

func newHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		log:     log,
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	h.log.Debug("Live-reload client connected")
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
		h.log.Debug("Live-reload client disconnected")
	}
}

// count returns the number of connected clients.
func (h *Hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcastMessage sends a message to all registered clients.
func (h *Hub) broadcastMessage(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
			h.log.WithError(err).Warn("Error writing to live-reload client")
			client.Close()
			delete(h.clients, client)
		}
	}
}

// closeAll disconnects every client. Hijacked connections are not closed by
// http.Server.Shutdown.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}

// serveWs handles WebSocket requests from the peer.
func serveWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	hub.register(conn)

	// Clients never send; reading only detects the close.
	defer hub.unregister(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
