package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/bdvbs4e/backtriviapp/internal/models"
)

// Registry owns the process-wide set of live rooms. The mutex serializes the
// find-or-create critical section so two concurrent joins never both create a
// room when one open room would do.
type Registry struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	capacity int
}

func NewRegistry(capacity int) *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		capacity: capacity,
	}
}

func (reg *Registry) Capacity() int {
	return reg.capacity
}

// FindOrCreateRoom returns an open waiting room with spare capacity, or
// atomically creates a fresh one. The second return reports creation.
func (reg *Registry) FindOrCreateRoom(forceNew bool) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if !forceNew {
		for _, room := range reg.rooms {
			room.mu.Lock()
			open := room.Status == models.GameStatusWaiting && len(room.Players) < reg.capacity
			room.mu.Unlock()
			if open {
				return room, false
			}
		}
	}

	room := newRoom(reg.nextRoomID())
	reg.rooms[room.RoomID] = room
	return room, true
}

// nextRoomID must be called with reg.mu held.
func (reg *Registry) nextRoomID() string {
	base := fmt.Sprintf("room-%d", time.Now().UnixMilli())
	id := base
	for n := 1; ; n++ {
		if _, taken := reg.rooms[id]; !taken {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

func (reg *Registry) Get(roomID string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.rooms[roomID]
}

// FindByPlayer locates the room holding a player with the given stable id.
func (reg *Registry) FindByPlayer(playerID string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, room := range reg.rooms {
		room.mu.Lock()
		found := room.findPlayer(playerID) != nil
		room.mu.Unlock()
		if found {
			return room
		}
	}
	return nil
}

// FindBySession locates the room holding the player bound to a transport
// session id.
func (reg *Registry) FindBySession(sessionID string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, room := range reg.rooms {
		room.mu.Lock()
		found := room.findBySession(sessionID) != nil
		room.mu.Unlock()
		if found {
			return room
		}
	}
	return nil
}

// RemoveIfEmpty deletes a room once its player set is empty; a room with
// players is never destroyed.
func (reg *Registry) RemoveIfEmpty(room *Room) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room.mu.Lock()
	empty := len(room.Players) == 0
	if empty {
		room.generation++
	}
	room.mu.Unlock()

	if !empty {
		return false
	}
	delete(reg.rooms, room.RoomID)
	return true
}

// Restore rebuilds live rooms from persisted snapshots of unfinished games.
// Restored players start disconnected until their owners rejoin.
func (reg *Registry) Restore(records []models.GameRecord) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, rec := range records {
		room := newRoom(rec.RoomID)
		room.Status = rec.Status
		room.Questions = rec.QuestionsLog
		room.CurrentQuestionIndex = rec.CurrentQuestionIndex
		room.StartedAt = rec.StartedAt
		for _, state := range rec.Players {
			state.Connected = false
			room.Players = append(room.Players, &Player{PlayerState: state})
		}
		reg.rooms[rec.RoomID] = room
	}
}

// Snapshot captures every live room for the dashboard channel.
func (reg *Registry) Snapshot() []RoomSnapshot {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	out := make([]RoomSnapshot, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		room.mu.Lock()
		out = append(out, room.snapshot())
		room.mu.Unlock()
	}
	return out
}
