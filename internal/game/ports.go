package game

import "github.com/bdvbs4e/backtriviapp/internal/models"

// QuestionSource supplies the random question batch for a game and keeps
// best-effort usage counters.
type QuestionSource interface {
	SampleRandom(n int) ([]models.Question, error)
	RecordOutcome(questionID uint, correctAnswers int)
}

// ResultStore holds the durable per-player-per-room projection. All writes
// are idempotent upserts keyed by (roomId, playerId); the engine never reads
// them back as its own state.
type ResultStore interface {
	Upsert(roomID string, result models.PlayerResult) error
	QueryByRoom(roomID string) ([]models.PlayerResult, error)
	UpdateScore(roomID, playerID string, score int) error
	UpdateElimination(roomID, playerID string, eliminated bool, round *int) error
	UpdateGameStatus(roomID, status string) error
}

// RecordStore persists room snapshots, one per roomId.
type RecordStore interface {
	Save(record models.GameRecord) error
	Delete(roomID string) error
	GetByRoomID(roomID string) (*models.GameRecord, error)
}

// StatsRecorder folds a finished game into the cross-game aggregates.
type StatsRecorder interface {
	RecordFinishedGame(roomID string, players []models.PlayerState, questions []models.Question, durationSeconds int) error
}

// ClientConn is one connected transport session.
type ClientConn interface {
	SessionID() string
	Send(event string, data interface{}) error
	Close()
}

// Broadcaster fans room-scoped and dashboard events out to connected clients.
type Broadcaster interface {
	JoinRoom(roomID string, c ClientConn)
	LeaveRoom(roomID string, c ClientConn)
	ToRoom(roomID string, event string, data interface{})
	ToDashboard(event string, data interface{})
}
