package services

import (
	"errors"

	"github.com/bdvbs4e/backtriviapp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GameRecordService struct {
	db *gorm.DB
}

func NewGameRecordService(db *gorm.DB) *GameRecordService {
	return &GameRecordService{db: db}
}

// Save upserts the durable snapshot of a room, keyed by roomId.
func (s *GameRecordService) Save(record models.GameRecord) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "room_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "players", "questions_log", "current_question_index",
			"started_at", "finished_at",
		}),
	}).Create(&record).Error
}

func (s *GameRecordService) Delete(roomID string) error {
	return s.db.Where("room_id = ?", roomID).Delete(&models.GameRecord{}).Error
}

func (s *GameRecordService) GetByRoomID(roomID string) (*models.GameRecord, error) {
	var record models.GameRecord
	if err := s.db.Where("room_id = ?", roomID).First(&record).Error; err != nil {
		return nil, errors.New("game not found")
	}
	return &record, nil
}

func (s *GameRecordService) ListAll() ([]models.GameRecord, error) {
	var records []models.GameRecord
	if err := s.db.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListActive returns records for rooms that are still waiting or mid-game,
// used to restore the in-memory registry on startup.
func (s *GameRecordService) ListActive() ([]models.GameRecord, error) {
	var records []models.GameRecord
	if err := s.db.Where("status IN ?", []string{models.GameStatusWaiting, models.GameStatusStarted}).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

type WinnerCount struct {
	Name string `json:"name"`
	Wins int64  `json:"wins"`
}

type CategoryAccuracy struct {
	Category     string  `json:"category"`
	TimesAsked   int     `json:"timesAsked"`
	TimesCorrect int     `json:"timesCorrect"`
	Accuracy     float64 `json:"accuracy"`
}

type GlobalGameStats struct {
	TotalGames    int64              `json:"totalGames"`
	Winners       []WinnerCount      `json:"winners"`
	TopCategories []CategoryAccuracy `json:"topCategories"`
}

// GetStats summarizes finished games: top winners by name and the most
// accurate question categories.
func (s *GameRecordService) GetStats() (*GlobalGameStats, error) {
	stats := &GlobalGameStats{}

	if err := s.db.Model(&models.GameRecord{}).
		Where("status = ?", models.GameStatusFinished).
		Count(&stats.TotalGames).Error; err != nil {
		return nil, err
	}

	err := s.db.Model(&models.GameRecord{}).
		Select(`p.value->>'name' AS name, COUNT(*) AS wins`).
		Joins(`CROSS JOIN LATERAL jsonb_array_elements(players) AS p`).
		Where("status = ? AND (p.value->>'eliminated')::boolean = false", models.GameStatusFinished).
		Group("p.value->>'name'").
		Order("wins DESC").
		Limit(5).
		Scan(&stats.Winners).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&models.Question{}).
		Select(`category,
			SUM(times_asked) AS times_asked,
			SUM(times_correct) AS times_correct,
			CASE WHEN SUM(times_asked) = 0 THEN 0
			     ELSE SUM(times_correct)::float / SUM(times_asked) END AS accuracy`).
		Group("category").
		Order("accuracy DESC, times_asked DESC").
		Limit(5).
		Scan(&stats.TopCategories).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
