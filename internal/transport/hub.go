// Package transport is the WebSocket bridge between the session loop and
// attached UI processes: it streams View snapshots and individual
// StateEvents as newline-delimited JSON, and accepts Commands back from
// the client onto the same channel the daemon's own command producers use.
package transport

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/wiremix/mixerd/internal/metrics"
)

// Hub tracks every connected UI client and fans out broadcast messages to
// each one's send queue. Modeled on a simple subscriber-map pub/sub: there
// is no ring-buffer replay, since a freshly (re)connected client gets a
// full View on connect rather than a backlog of diffs.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uint64]*Client
	nextID   atomic.Uint64
	log      zerolog.Logger
}

// NewHub returns an empty Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[uint64]*Client),
		log:     log.With().Str("component", "transport").Logger(),
	}
}

// register adds a client and returns its id.
func (h *Hub) register(c *Client) uint64 {
	id := h.nextID.Add(1)
	h.mu.Lock()
	h.clients[id] = c
	h.mu.Unlock()
	metrics.TransportClientsConnected.Inc()
	return id
}

// unregister removes a client by id.
func (h *Hub) unregister(id uint64) {
	h.mu.Lock()
	_, existed := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()
	if existed {
		metrics.TransportClientsConnected.Dec()
	}
}

// Broadcast enqueues data onto every connected client's send queue,
// dropping it for any client whose queue is full rather than blocking the
// caller — a slow UI client must never stall the session loop.
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn().Uint64("client", c.id).Msg("send queue full, dropping message")
		}
	}
}

// ClientCount reports how many UI clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
