// Package ws keeps track of open inbox connections and pushes inbox events to
// them.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/Vasu1712/hushgroup-backend/internal/models"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ErrHubBusy is returned when the delivery queue is full.
var ErrHubBusy = errors.New("ws hub busy")

const deliveryQueueSize = 256

type Client struct {
	UserID string
	Send   chan []byte
	Conn   *websocket.Conn // nil in tests
}

// NewClient returns a client with a buffered send queue.
func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Send:   make(chan []byte, 256),
		Conn:   conn,
	}
}

type delivery struct {
	UserID string
	Data   []byte
}

type Hub struct {
	clients    map[string]map[*Client]bool // userID -> clients
	Register   chan *Client
	Unregister chan *Client
	deliveries chan delivery
	done       chan struct{}
	mu         sync.RWMutex
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		deliveries: make(chan delivery, deliveryQueueSize),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run processes registrations and deliveries until ctx is done, then closes
// every client's send queue.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return
		case client := <-h.Register:
			h.mu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			h.mu.Unlock()
		case client := <-h.Unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
		case d := <-h.deliveries:
			h.mu.Lock()
			for client := range h.clients[d.UserID] {
				select {
				case client.Send <- d.Data:
				default:
					// slow consumer
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Add registers client. It reports false once the hub has stopped.
func (h *Hub) Add(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Remove unregisters client. It is a no-op once the hub has stopped.
func (h *Hub) Remove(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.clients, client.UserID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			close(client.Send)
		}
	}
	h.clients = make(map[string]map[*Client]bool)
}

// Connected reports how many live connections userID has.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Deliver queues an encoded event for userID's connections. It never blocks.
func (h *Hub) Deliver(userID string, data []byte) error {
	select {
	case h.deliveries <- delivery{UserID: userID, Data: data}:
		return nil
	default:
		return ErrHubBusy
	}
}

// Notify encodes event and queues it for the receiver's connections on this
// instance.
func (h *Hub) Notify(_ context.Context, receiverID string, event models.InboxEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.Deliver(receiverID, data)
}
