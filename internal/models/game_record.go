package models

import "time"

// PlayerState is the serializable per-player game state, embedded in live
// rooms and persisted inside GameRecord snapshots.
type PlayerState struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Ready      bool   `json:"ready"`
	Connected  bool   `json:"connected"`
	Eliminated bool   `json:"eliminated"`
	Round      int    `json:"round,omitempty"`
	Score      int    `json:"score"`
	Answered   bool   `json:"answered"`
}

// GameRecord is the durable snapshot of a room, one row per roomId.
type GameRecord struct {
	ID                   uint          `gorm:"primaryKey" json:"id"`
	RoomID               string        `gorm:"size:64;uniqueIndex;not null" json:"roomId"`
	Status               string        `gorm:"size:20;not null;default:'waiting'" json:"status"`
	Players              []PlayerState `gorm:"serializer:json;type:jsonb" json:"players"`
	QuestionsLog         []Question    `gorm:"serializer:json;type:jsonb" json:"questionsLog,omitempty"`
	CurrentQuestionIndex int           `gorm:"not null;default:0" json:"currentQuestionIndex"`
	CreatedAt            time.Time     `json:"created_at"`
	StartedAt            *time.Time    `json:"startedAt,omitempty"`
	FinishedAt           *time.Time    `json:"finishedAt,omitempty"`
}

const (
	GameStatusWaiting  = "waiting"
	GameStatusStarted  = "started"
	GameStatusFinished = "finished"
)
