package services

import (
	"errors"

	"github.com/bdvbs4e/backtriviapp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlayerResultService struct {
	db *gorm.DB
}

func NewPlayerResultService(db *gorm.DB) *PlayerResultService {
	return &PlayerResultService{db: db}
}

// Upsert writes one (roomId, playerId) row, inserting or overwriting in
// place. Writes are idempotent so the engine can reconcile at-least-once.
func (s *PlayerResultService) Upsert(roomID string, result models.PlayerResult) error {
	result.RoomID = roomID
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "room_id"}, {Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"player_name", "score", "eliminated", "eliminated_round",
			"connected", "ready", "game_status", "updated_at",
		}),
	}).Create(&result).Error
}

func (s *PlayerResultService) QueryByRoom(roomID string) ([]models.PlayerResult, error) {
	var results []models.PlayerResult
	if err := s.db.Where("room_id = ?", roomID).
		Order("score DESC, eliminated_round ASC NULLS FIRST").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *PlayerResultService) UpdateElimination(roomID, playerID string, eliminated bool, round *int) error {
	return s.db.Model(&models.PlayerResult{}).
		Where("room_id = ? AND player_id = ?", roomID, playerID).
		Updates(map[string]interface{}{
			"eliminated":       eliminated,
			"eliminated_round": round,
		}).Error
}

func (s *PlayerResultService) UpdateScore(roomID, playerID string, score int) error {
	return s.db.Model(&models.PlayerResult{}).
		Where("room_id = ? AND player_id = ?", roomID, playerID).
		Update("score", score).Error
}

// UpdateGameStatus stamps the room-wide game status on every row of a room.
func (s *PlayerResultService) UpdateGameStatus(roomID, status string) error {
	return s.db.Model(&models.PlayerResult{}).
		Where("room_id = ?", roomID).
		Update("game_status", status).Error
}

func (s *PlayerResultService) DeleteByRoom(roomID string) error {
	return s.db.Where("room_id = ?", roomID).Delete(&models.PlayerResult{}).Error
}

type PlayerStats struct {
	PlayerID     string  `json:"playerId"`
	TotalGames   int64   `json:"totalGames"`
	TotalWins    int64   `json:"totalWins"`
	TotalScore   int64   `json:"totalScore"`
	AverageScore float64 `json:"averageScore"`
}

func (s *PlayerResultService) GetPlayerStats(playerID string) (*PlayerStats, error) {
	var stats PlayerStats
	err := s.db.Model(&models.PlayerResult{}).
		Select(`player_id,
			COUNT(*) AS total_games,
			COUNT(*) FILTER (WHERE eliminated = false) AS total_wins,
			COALESCE(SUM(score), 0) AS total_score,
			COALESCE(AVG(score), 0) AS average_score`).
		Where("player_id = ?", playerID).
		Group("player_id").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	if stats.PlayerID == "" {
		return nil, errors.New("no results for player")
	}
	return &stats, nil
}
