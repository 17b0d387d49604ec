package ws

import (
	"log"
	"sync"

	"github.com/bdvbs4e/backtriviapp/internal/game"
)

// Hub fans events out over two kinds of channels: per-room channels joined
// by players, and one global dashboard channel for observers.
type Hub struct {
	mu        sync.RWMutex
	rooms     map[string]map[game.ClientConn]bool
	dashboard map[game.ClientConn]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms:     make(map[string]map[game.ClientConn]bool),
		dashboard: make(map[game.ClientConn]bool),
	}
}

func (h *Hub) JoinRoom(roomID string, c game.ClientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[game.ClientConn]bool)
	}
	h.rooms[roomID][c] = true
	log.Printf("ws: client %s joined room %s (total: %d)", c.SessionID(), roomID, len(h.rooms[roomID]))
}

func (h *Hub) LeaveRoom(roomID string, c game.ClientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.rooms[roomID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *Hub) AddDashboard(c game.ClientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dashboard[c] = true
	log.Printf("ws: dashboard client %s connected (total: %d)", c.SessionID(), len(h.dashboard))
}

// RemoveClient drops a client from every channel and closes it.
func (h *Hub) RemoveClient(c game.ClientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for roomID, conns := range h.rooms {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
	delete(h.dashboard, c)
	c.Close()
}

func (h *Hub) ToRoom(roomID string, event string, data interface{}) {
	h.mu.RLock()
	conns := make([]game.ClientConn, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	h.send(conns, event, data)
}

func (h *Hub) ToDashboard(event string, data interface{}) {
	h.mu.RLock()
	conns := make([]game.ClientConn, 0, len(h.dashboard))
	for c := range h.dashboard {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	h.send(conns, event, data)
}

func (h *Hub) send(conns []game.ClientConn, event string, data interface{}) {
	for _, c := range conns {
		if err := c.Send(event, data); err != nil {
			log.Printf("ws: write error to %s: %v", c.SessionID(), err)
			h.RemoveClient(c)
		}
	}
}
