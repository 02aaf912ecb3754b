package inspect

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single frame write to a client.
	writeWait = 5 * time.Second

	// sendBuffer is the number of frames queued per client. A client that
	// falls further behind is dropped.
	sendBuffer = 16
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub manages the websocket clients that receive snapshots. Each client
// has its own send queue drained by a writer goroutine, so Broadcast never
// waits on the network.
type Hub struct {
	clients  map[*client]struct{}
	mu       sync.RWMutex
	upgrader websocket.Upgrader
}

// NewHub creates a hub. Cross-origin upgrades are allowed because the
// inspector is a local debugging tool.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket upgrades the connection and keeps it registered until
// the client goes away. greeting, if non-nil, is sent first.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request, greeting []byte) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if greeting != nil {
		c.send <- greeting
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	go h.writeLoop(c)

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
	conn.Close()
}

// writeLoop writes queued frames until the queue is closed or a write
// fails.
func (h *Hub) writeLoop(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			h.remove(c)
			c.conn.Close()
			return
		}
	}
}

// remove unregisters c and closes its queue. It is a no-op for a client
// that is already gone.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Broadcast queues a binary frame for every client. A client whose queue
// is full is disconnected.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropLocked(c)
			c.conn.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		h.dropLocked(c)
		c.conn.Close()
	}
}
