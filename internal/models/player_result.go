package models

import "time"

// PlayerResult is the durable per-player-per-room projection of live game
// state, keyed by (roomId, playerId) and reconciled after every mutation.
type PlayerResult struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	RoomID          string    `gorm:"size:64;not null;uniqueIndex:idx_room_player;index" json:"roomId"`
	PlayerID        string    `gorm:"size:64;not null;uniqueIndex:idx_room_player" json:"playerId"`
	PlayerName      string    `gorm:"size:100;not null" json:"playerName"`
	Score           int       `gorm:"not null;default:0" json:"score"`
	Eliminated      bool      `gorm:"not null;default:false" json:"eliminated"`
	EliminatedRound *int      `json:"eliminatedRound,omitempty"`
	Connected       bool      `gorm:"not null;default:true" json:"connected"`
	Ready           bool      `gorm:"not null;default:false" json:"ready"`
	GameStatus      string    `gorm:"size:20;not null;default:'waiting'" json:"gameStatus"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
