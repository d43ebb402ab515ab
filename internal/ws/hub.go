package ws

import (
	"sync"
)

// Event is one message on the wire, in either direction.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub tracks connected clients and their room membership. A room is one
// shared bucket; a client is in at most one room at a time.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: map[*Client]struct{}{},
		rooms:   map[string]map[*Client]struct{}{},
	}
}

// Add registers a connected client. The caller starts the client's write
// loop separately.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Remove unregisters the client, leaving its room and stopping its write
// loop. Safe to call more than once.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		h.leaveLocked(c)
	}
	h.mu.Unlock()

	c.stop()
}

// JoinRoom moves the client into the given room. A client sits in one room
// at a time: joining implicitly leaves the previous one.
func (h *Hub) JoinRoom(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(c)

	if h.rooms[room] == nil {
		h.rooms[room] = map[*Client]struct{}{}
	}
	h.rooms[room][c] = struct{}{}
	c.room = room
}

// Room returns the room the client is currently in, or "".
func (h *Hub) Room(c *Client) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.room
}

// RoomSize returns the number of clients in the room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Broadcast delivers the event to every client in the room, the sender
// included. A client whose send buffer is full misses the event rather than
// blocking the room.
func (h *Hub) Broadcast(room string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		c.enqueue(ev)
	}
}

// BroadcastExcept delivers the event to every client in the room except one.
func (h *Hub) BroadcastExcept(room string, except *Client, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		if c == except {
			continue
		}
		c.enqueue(ev)
	}
}

func (h *Hub) leaveLocked(c *Client) {
	if c.room == "" {
		return
	}
	if set, ok := h.rooms[c.room]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, c.room)
		}
	}
	c.room = ""
}
