package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/transcriptledger/internal/ledger"
	"github.com/yigit/transcriptledger/internal/pkg/eventbus"
)

// Hub maintains the set of active clients and streams ledger events to them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Committed events waiting to be fanned out
	broadcast chan ledger.Event

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Guards clients for ClientCount
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan ledger.Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is cancelled, then
// disconnects every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case evt := <-h.broadcast:
			h.broadcastEvent(evt)
		}
	}
}

// Attach subscribes the hub to every event on bus
func (h *Hub) Attach(bus *eventbus.EventBus) eventbus.SubscriberID {
	return bus.SubscribeFunc(eventbus.Wildcard, h.Broadcast)
}

// Broadcast queues evt for delivery. It drops the event when the hub is
// backed up or stopped.
func (h *Hub) Broadcast(evt ledger.Event) {
	select {
	case h.broadcast <- evt:
	case <-h.done:
	default:
		h.logger.Warn().Str("type", string(evt.Type)).Uint64("seq", evt.Seq).Msg("WebSocket hub backed up, dropping event")
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	h.logger.Info().
		Str("addr", client.remoteAddr).
		Strs("types", client.typeNames()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops a client. The caller must hold h.mu.
func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	h.logger.Info().
		Str("addr", client.remoteAddr).
		Msg("Client unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		h.removeLocked(client)
	}
}

// broadcastEvent sends evt to every client interested in its type
func (h *Hub) broadcastEvent(evt ledger.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("type", string(evt.Type)).
			Msg("Failed to marshal event for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if !client.wants(evt.Type) {
			continue
		}
		select {
		case client.send <- data:
		default:
			// Slow consumer; drop the connection rather than the stream order
			h.logger.Warn().Str("addr", client.remoteAddr).Msg("Client send buffer full, disconnecting")
			h.removeLocked(client)
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
