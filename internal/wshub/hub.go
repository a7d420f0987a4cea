package wshub

import (
	"context"
	"darkdungeon/internal/leaderboard"
	"encoding/json"
	"log"
	"sync"

	"github.com/coder/websocket"
)

// ClientMessage is the JSON structure received from clients.
type ClientMessage struct {
	Type string `json:"t"` // page, next, prev, retry, dismiss
	Page int    `json:"p,omitempty"`
}

// ServerMessage is the JSON structure sent to clients.
type ServerMessage struct {
	Type       string                 `json:"t"`
	Page       int                    `json:"page"`
	TotalPages int                    `json:"totalPages"`
	Loading    bool                   `json:"loading"`
	Error      string                 `json:"error,omitempty"`
	Entries    []leaderboard.Entry    `json:"entries"`
	Pagination leaderboard.Pagination `json:"pagination"`
	Highlight  *leaderboard.Entry     `json:"highlight,omitempty"`
}

// NewStateMessage snapshots a board state for the wire.
func NewStateMessage(st leaderboard.State) ServerMessage {
	entries := st.Entries
	if entries == nil {
		entries = []leaderboard.Entry{}
	}
	return ServerMessage{
		Type:       "state",
		Page:       st.CurrentPage,
		TotalPages: st.TotalPages,
		Loading:    st.Loading,
		Error:      st.Err,
		Entries:    entries,
		Pagination: st.Pagination,
		Highlight:  st.Highlight,
	}
}

// Client represents a single WebSocket connection in the hub.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub manages the WebSocket connections watching one board.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		close(c.Send)
		delete(h.clients, id)
	}
}

// CloseAll unregisters every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.Send)
		delete(h.clients, id)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to all clients. Non-blocking: drops if channel full.
func (h *Hub) Broadcast(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WSHub] Marshal error: %v\n", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.Send <- data:
		default:
			// Drop message if channel full
		}
	}
}

// SendTo sends a message to one client. Non-blocking: drops if channel full.
func (h *Hub) SendTo(id string, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WSHub] Marshal error: %v\n", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[id]
	if !ok {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}
