package ws

import (
	"sync"

	"go.uber.org/zap"
)

const sendBufferSize = 16

// Conn is the transport side of a live connection. *websocket.Conn satisfies
// it; tests substitute fakes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client is one live connection owned by the Hub. Outbound messages flow
// through a buffered channel drained by a single writer goroutine, so delivery
// to a single client preserves broadcast order.
type Client struct {
	conn Conn
	send chan interface{}
	done chan struct{}
	once sync.Once
}

// Hub tracks live connections and fans out messages to all of them. The
// client set is the only state shared across request goroutines; every
// add/remove/iterate happens under the mutex.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a connection to the live set and starts its writer.
func (h *Hub) Register(conn Conn) *Client {
	client := &Client{
		conn: conn,
		send: make(chan interface{}, sendBufferSize),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	go h.writePump(client)

	h.logger.Info("websocket connected", zap.Int("total_connections", total))
	return client
}

// Unregister removes a client from the live set and closes its transport.
// Safe to call more than once; removing an absent client is a no-op.
func (h *Hub) Unregister(client *Client) {
	if client == nil {
		return
	}
	client.once.Do(func() {
		h.mu.Lock()
		delete(h.clients, client)
		total := len(h.clients)
		h.mu.Unlock()

		close(client.done)
		_ = client.conn.Close()

		h.logger.Info("websocket disconnected", zap.Int("total_connections", total))
	})
}

// Broadcast delivers a message to every live connection. Delivery is
// best-effort and independent per connection: a client that cannot accept the
// message is unregistered without affecting the others.
func (h *Hub) Broadcast(message interface{}) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.enqueue(client, message)
	}
}

// SendDirect queues a message for a single connection.
func (h *Hub) SendDirect(client *Client, message interface{}) {
	h.enqueue(client, message)
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) enqueue(client *Client, message interface{}) {
	select {
	case <-client.done:
	case client.send <- message:
	default:
		// Writer cannot keep up; treat as a failed connection.
		h.logger.Warn("websocket send buffer full, dropping connection")
		h.Unregister(client)
	}
}

func (h *Hub) writePump(client *Client) {
	for {
		select {
		case <-client.done:
			return
		case message := <-client.send:
			if err := client.conn.WriteJSON(message); err != nil {
				h.logger.Warn("websocket write failed", zap.Error(err))
				h.Unregister(client)
				return
			}
		}
	}
}
