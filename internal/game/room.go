package game

import (
	"sync"
	"time"

	"github.com/bdvbs4e/backtriviapp/internal/models"
)

// Player is one participant's live state. The stable ID is client-supplied
// and survives reconnects; SessionID tracks the current transport session.
type Player struct {
	models.PlayerState
	SessionID string `json:"-"`

	// answeredCorrect remembers whether the player's standing answer for the
	// open round was correct, so a re-answer can overwrite it cleanly.
	answeredCorrect bool
}

// Room is one lobby/game instance. All fields are guarded by mu; the
// generation counter invalidates timers scheduled before a reset or delete.
type Room struct {
	mu sync.Mutex

	RoomID               string
	Status               string
	Players              []*Player
	Questions            []models.Question
	CurrentQuestionIndex int
	StartedAt            *time.Time

	answersOpen bool
	generation  uint64
}

func newRoom(roomID string) *Room {
	return &Room{
		RoomID:  roomID,
		Status:  models.GameStatusWaiting,
		Players: make([]*Player, 0),
	}
}

func (r *Room) findPlayer(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) findBySession(sessionID string) *Player {
	for _, p := range r.Players {
		if p.SessionID == sessionID {
			return p
		}
	}
	return nil
}

func (r *Room) aliveCount() int {
	n := 0
	for _, p := range r.Players {
		if !p.Eliminated {
			n++
		}
	}
	return n
}

// winner returns the first non-eliminated player, or nil after a wipe.
func (r *Room) winner() *models.PlayerState {
	for _, p := range r.Players {
		if !p.Eliminated {
			state := p.PlayerState
			return &state
		}
	}
	return nil
}

// snapshotPlayers copies player state for use outside the room lock.
func (r *Room) snapshotPlayers() []models.PlayerState {
	out := make([]models.PlayerState, len(r.Players))
	for i, p := range r.Players {
		out[i] = p.PlayerState
	}
	return out
}

func (r *Room) currentQuestion() *models.Question {
	if r.CurrentQuestionIndex < 0 || r.CurrentQuestionIndex >= len(r.Questions) {
		return nil
	}
	return &r.Questions[r.CurrentQuestionIndex]
}

// resetInPlace returns a finished room to waiting while keeping the roster,
// so the same players can immediately re-ready for another game. Bumping the
// generation disarms any timer still pending from the finished game.
func (r *Room) resetInPlace() {
	r.Status = models.GameStatusWaiting
	for _, p := range r.Players {
		p.Ready = false
		p.Eliminated = false
		p.Round = 0
		p.Score = 0
		p.Answered = false
		p.answeredCorrect = false
	}
	r.Questions = nil
	r.CurrentQuestionIndex = 0
	r.StartedAt = nil
	r.answersOpen = false
	r.generation++
}

// RoomSnapshot is the dashboard view of one room.
type RoomSnapshot struct {
	RoomID               string                `json:"roomId"`
	Status               string                `json:"status"`
	Players              []models.PlayerState  `json:"players"`
	CurrentQuestionIndex int                   `json:"currentQuestionIndex"`
	CurrentQuestion      *models.Question      `json:"currentQuestion"`
}

func (r *Room) snapshot() RoomSnapshot {
	return RoomSnapshot{
		RoomID:               r.RoomID,
		Status:               r.Status,
		Players:              r.snapshotPlayers(),
		CurrentQuestionIndex: r.CurrentQuestionIndex,
		CurrentQuestion:      r.currentQuestion(),
	}
}

func (r *Room) record() models.GameRecord {
	rec := models.GameRecord{
		RoomID:               r.RoomID,
		Status:               r.Status,
		Players:              r.snapshotPlayers(),
		QuestionsLog:         r.Questions,
		CurrentQuestionIndex: r.CurrentQuestionIndex,
		StartedAt:            r.StartedAt,
	}
	return rec
}
