package game

import (
	"fmt"
	"log"
	"time"

	"github.com/bdvbs4e/backtriviapp/internal/models"
)

// Handler maps transport-level events onto the registry and engine. Unknown
// room or player references are silently dropped; nothing here can crash the
// process.
type Handler struct {
	registry *Registry
	engine   *Engine
}

func NewHandler(registry *Registry, engine *Engine) *Handler {
	return &Handler{registry: registry, engine: engine}
}

type JoinRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ForceNew bool   `json:"forceNew"`
}

type ReadyRequest struct {
	PlayerID string `json:"playerId"`
}

type AnswerRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Answer   string `json:"answer"`
	// CorrectAnswer is accepted from legacy clients but never trusted;
	// correctness is resolved against the room's current question.
	CorrectAnswer string `json:"correctAnswer"`
}

type LeaveRequest struct {
	ID     string `json:"id"`
	RoomID string `json:"roomId"`
}

type ResultsRequest struct {
	RoomID string `json:"roomId"`
}

// HandleJoin places a player in a room: back into their existing room when
// the stable id is known (reconnect), otherwise into the first open waiting
// room, creating one if needed.
func (h *Handler) HandleJoin(client ClientConn, req JoinRequest) {
	if req.ID == "" {
		return
	}

	room := h.registry.FindByPlayer(req.ID)
	created := false
	if room == nil {
		room, created = h.registry.FindOrCreateRoom(req.ForceNew)
	}

	room.mu.Lock()
	existing := room.findPlayer(req.ID)
	if existing == nil && len(room.Players) >= h.registry.capacity {
		room.mu.Unlock()
		client.Send("room-full", map[string]interface{}{
			"message": fmt.Sprintf("room already has the maximum of %d players", h.registry.capacity),
		})
		return
	}

	if existing != nil {
		existing.Connected = true
		existing.SessionID = client.SessionID()
		if req.Name != "" {
			existing.Name = req.Name
		}
	} else {
		room.Players = append(room.Players, &Player{
			PlayerState: models.PlayerState{
				ID:        req.ID,
				Name:      req.Name,
				Connected: true,
			},
			SessionID: client.SessionID(),
		})
	}
	room.mu.Unlock()

	if created {
		if err := h.engine.records.Save(models.GameRecord{RoomID: room.RoomID, Status: models.GameStatusWaiting}); err != nil {
			log.Printf("handler: failed to persist new room %s: %v", room.RoomID, err)
		}
	}

	h.engine.broadcast.JoinRoom(room.RoomID, client)
	h.engine.emitLobbyUpdate(room)
}

// HandleReady marks a player ready and evaluates the start condition. A
// no-op unless the owning room is still waiting.
func (h *Handler) HandleReady(req ReadyRequest) {
	room := h.registry.FindByPlayer(req.PlayerID)
	if room == nil {
		return
	}

	room.mu.Lock()
	if room.Status != models.GameStatusWaiting {
		room.mu.Unlock()
		return
	}
	p := room.findPlayer(req.PlayerID)
	if p == nil {
		room.mu.Unlock()
		return
	}
	p.Ready = true
	room.mu.Unlock()

	h.engine.emitLobbyUpdate(room)
	h.engine.maybeStart(room)
}

// HandleAnswer scores an answer against the room's current question. Late
// answers (after the deadline broadcast) are dropped; re-answering within the
// open round overwrites the previous answer.
func (h *Handler) HandleAnswer(req AnswerRequest) {
	room := h.registry.Get(req.RoomID)
	if room == nil {
		return
	}

	room.mu.Lock()
	if room.Status != models.GameStatusStarted || !room.answersOpen {
		room.mu.Unlock()
		return
	}
	p := room.findPlayer(req.PlayerID)
	question := room.currentQuestion()
	if p == nil || question == nil {
		room.mu.Unlock()
		return
	}
	// Eliminated in an earlier round: no longer in contention.
	if p.Eliminated && !p.Answered {
		room.mu.Unlock()
		return
	}

	correct := req.Answer == question.CorrectAnswer
	if p.Answered && p.answeredCorrect {
		p.Score--
	}
	p.Answered = true
	p.answeredCorrect = correct
	if correct {
		p.Score++
		p.Eliminated = false
		p.Round = 0
	} else {
		p.Eliminated = true
		p.Round = room.CurrentQuestionIndex + 1
	}

	score := p.Score
	eliminated := p.Eliminated
	round := p.Round
	room.mu.Unlock()

	if err := h.engine.results.UpdateScore(req.RoomID, req.PlayerID, score); err != nil {
		log.Printf("handler: score update failed for %s/%s: %v", req.RoomID, req.PlayerID, err)
	}
	if eliminated {
		if err := h.engine.results.UpdateElimination(req.RoomID, req.PlayerID, true, &round); err != nil {
			log.Printf("handler: elimination update failed for %s/%s: %v", req.RoomID, req.PlayerID, err)
		}
	}

	h.engine.emitResultsUpdate(room)
}

// HandleLeave removes a player explicitly; an emptied room is deleted, not
// reset.
func (h *Handler) HandleLeave(req LeaveRequest) {
	room := h.registry.Get(req.RoomID)
	if room == nil {
		return
	}

	room.mu.Lock()
	removed := h.removePlayerLocked(room, req.ID)
	room.mu.Unlock()
	if !removed {
		return
	}

	h.dropRoomIfEmpty(room)
}

// HandleDisconnect flags the owning player disconnected and arms the grace
// timer. A reconnect within the window rebinds the session id, which defuses
// the pending removal.
func (h *Handler) HandleDisconnect(sessionID string) {
	room := h.registry.FindBySession(sessionID)
	if room == nil {
		return
	}

	room.mu.Lock()
	p := room.findBySession(sessionID)
	if p == nil {
		room.mu.Unlock()
		return
	}
	p.Connected = false
	playerID := p.ID
	room.mu.Unlock()

	h.engine.emitLobbyUpdate(room)

	time.AfterFunc(h.engine.DisconnectGrace, func() {
		room.mu.Lock()
		p := room.findPlayer(playerID)
		if p == nil || p.Connected || p.SessionID != sessionID {
			room.mu.Unlock()
			return
		}
		h.removePlayerLocked(room, playerID)
		room.mu.Unlock()

		h.dropRoomIfEmpty(room)
	})
}

// HandleGetResults answers the requesting socket only, preferring durable
// rows, then live room state, then the persisted snapshot.
func (h *Handler) HandleGetResults(client ClientConn, req ResultsRequest) {
	dbResults, err := h.engine.results.QueryByRoom(req.RoomID)
	if err != nil {
		log.Printf("handler: result query failed for %s: %v", req.RoomID, err)
	}
	if len(dbResults) > 0 {
		client.Send("results-update", map[string]interface{}{
			"players":   dbResults,
			"dbResults": dbResults,
			"winner":    firstSurvivorResult(dbResults),
		})
		return
	}

	if room := h.registry.Get(req.RoomID); room != nil {
		room.mu.Lock()
		players := room.snapshotPlayers()
		winner := room.winner()
		room.mu.Unlock()
		client.Send("results-update", map[string]interface{}{
			"players": players,
			"winner":  winner,
		})
		return
	}

	rec, err := h.engine.records.GetByRoomID(req.RoomID)
	if err != nil {
		return
	}
	client.Send("results-update", map[string]interface{}{
		"players": rec.Players,
		"winner":  firstSurvivorState(rec.Players),
	})
}

// HandleDashboardJoin sends the current full-rooms snapshot to a newly
// connected observer; no history is replayed.
func (h *Handler) HandleDashboardJoin(client ClientConn) {
	client.Send("dashboard-update", map[string]interface{}{
		"rooms": h.registry.Snapshot(),
	})
}

// removePlayerLocked must be called with room.mu held.
func (h *Handler) removePlayerLocked(room *Room, playerID string) bool {
	for i, p := range room.Players {
		if p.ID == playerID {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			return true
		}
	}
	return false
}

func (h *Handler) dropRoomIfEmpty(room *Room) {
	if h.registry.RemoveIfEmpty(room) {
		if err := h.engine.records.Delete(room.RoomID); err != nil {
			log.Printf("handler: failed to delete record for %s: %v", room.RoomID, err)
		}
		h.engine.emitDashboardUpdate()
		return
	}
	h.engine.emitLobbyUpdate(room)
}

func firstSurvivorResult(results []models.PlayerResult) interface{} {
	for i := range results {
		if !results[i].Eliminated {
			return results[i]
		}
	}
	return nil
}

func firstSurvivorState(players []models.PlayerState) interface{} {
	for i := range players {
		if !players[i].Eliminated {
			return players[i]
		}
	}
	return nil
}
