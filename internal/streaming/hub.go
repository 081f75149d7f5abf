// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package streaming implements a live feed of ranking-changed notifications
// over WebSocket, wired as the ingest manager's flush listener.
package streaming

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/hotlist/postpulse/internal/logging"
	"github.com/hotlist/postpulse/internal/metrics"
)

// Message types for the feed.
const (
	MessageTypeRankingChanged = "ranking_changed"
	MessageTypePing           = "ping"
	MessageTypePong           = "pong"
)

// Message is one JSON envelope sent to feed clients. ranking_changed
// messages carry hot_posts/most_played inline at the top level, matching
// the documented wire format; ping/pong carry neither and the fields are
// omitted from their JSON.
type Message struct {
	Type       string   `json:"type"`
	HotPosts   []string `json:"hot_posts,omitempty"`
	MostPlayed []string `json:"most_played,omitempty"`
}

// Hub maintains connected feed clients and broadcasts ranking updates to
// them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext runs the hub's event loop until ctx is canceled, at which
// point every connected client is closed and the method returns ctx.Err().
// Priority is given to client lifecycle events over broadcasts so that
// register/unregister effects are always visible before the next broadcast
// is processed.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.closeAllClients()
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	metrics.FeedClientsConnected.Set(float64(h.GetClientCount()))
	logging.Info().Int("total_clients", h.GetClientCount()).Msg("feed client connected")
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	metrics.FeedClientsConnected.Set(float64(h.GetClientCount()))
	logging.Info().Int("total_clients", h.GetClientCount()).Msg("feed client disconnected")
}

// broadcastToClients delivers msg to every connected client in a
// deterministic order (sorted by monotonic client ID) so tests and replayed
// logs see consistent delivery sequencing rather than Go's randomized map
// iteration order.
func (h *Hub) broadcastToClients(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	var stale []*Client
	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			stale = append(stale, c)
		}
	}
	for _, c := range stale {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	for _, c := range clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// BroadcastRankingChanged is the manager's flush-notification callback: it
// enqueues a ranking_changed message without blocking the flush worker,
// dropping the update if the broadcast channel is full.
func (h *Hub) BroadcastRankingChanged(hotPosts, mostPlayed []string) {
	msg := Message{
		Type:       MessageTypeRankingChanged,
		HotPosts:   hotPosts,
		MostPlayed: mostPlayed,
	}
	select {
	case h.broadcast <- msg:
	default:
		metrics.FeedBroadcastsDroppedTotal.Inc()
		logging.Warn().Msg("feed broadcast channel full, dropping ranking_changed message")
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage converts msg to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
