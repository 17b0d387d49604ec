package services

import (
	"time"

	"github.com/bdvbs4e/backtriviapp/internal/models"

	"gorm.io/gorm"
)

const (
	maxTopWinners    = 10
	maxTopCategories = 10
	dailyStatsWindow = 30 * 24 * time.Hour
)

type GameStatsService struct {
	db *gorm.DB
}

func NewGameStatsService(db *gorm.DB) *GameStatsService {
	return &GameStatsService{db: db}
}

func (s *GameStatsService) getOrCreateStats(tx *gorm.DB) (*models.GameStats, error) {
	var stats models.GameStats
	err := tx.Preload("TopWinners").Preload("TopCategories").Preload("DailyStats").
		Order("last_updated DESC").First(&stats).Error
	if err == nil {
		return &stats, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	stats = models.GameStats{LastUpdated: time.Now()}
	if err := tx.Create(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// RecordFinishedGame folds one finished game into the aggregate counters,
// top-winner and category leaderboards, and the daily window. Called exactly
// once per finished game.
func (s *GameStatsService) RecordFinishedGame(roomID string, players []models.PlayerState, questions []models.Question, durationSeconds int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		stats, err := s.getOrCreateStats(tx)
		if err != nil {
			return err
		}

		stats.TotalGamesPlayed++
		stats.TotalPlayers += len(players)
		for _, p := range players {
			stats.TotalQuestionsAnswered += p.Score
			stats.TotalCorrectAnswers += p.Score
		}
		stats.LastUpdated = time.Now()

		if err := tx.Model(&models.GameStats{}).Where("id = ?", stats.ID).
			Updates(map[string]interface{}{
				"total_games_played":       stats.TotalGamesPlayed,
				"total_players":            stats.TotalPlayers,
				"total_questions_answered": stats.TotalQuestionsAnswered,
				"total_correct_answers":    stats.TotalCorrectAnswers,
				"last_updated":             stats.LastUpdated,
			}).Error; err != nil {
			return err
		}

		if err := updateTopWinners(tx, stats, players); err != nil {
			return err
		}
		if err := updateTopCategories(tx, stats, questions); err != nil {
			return err
		}
		return updateDailyStats(tx, stats, durationSeconds)
	})
}

func updateTopWinners(tx *gorm.DB, stats *models.GameStats, players []models.PlayerState) error {
	var winner *models.PlayerState
	for i := range players {
		if !players[i].Eliminated {
			winner = &players[i]
			break
		}
	}
	if winner == nil {
		return nil
	}

	var entry models.TopWinner
	err := tx.Where("stats_id = ? AND player_id = ?", stats.ID, winner.ID).First(&entry).Error
	switch err {
	case nil:
		entry.Wins++
		entry.TotalScore += winner.Score
		entry.GamesPlayed++
		entry.WinRate = float64(entry.Wins) / float64(entry.GamesPlayed)
		if err := tx.Save(&entry).Error; err != nil {
			return err
		}
	case gorm.ErrRecordNotFound:
		entry = models.TopWinner{
			StatsID:     stats.ID,
			PlayerID:    winner.ID,
			PlayerName:  winner.Name,
			Wins:        1,
			TotalScore:  winner.Score,
			GamesPlayed: 1,
			WinRate:     1,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
	default:
		return err
	}

	// Trim to the top entries by wins.
	return tx.Where(`stats_id = ? AND id NOT IN (
		SELECT id FROM top_winners WHERE stats_id = ? ORDER BY wins DESC, id ASC LIMIT ?
	)`, stats.ID, stats.ID, maxTopWinners).Delete(&models.TopWinner{}).Error
}

func updateTopCategories(tx *gorm.DB, stats *models.GameStats, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	asked := make(map[string]int)
	for _, q := range questions {
		asked[q.Category]++
	}

	for category, times := range asked {
		var entry models.CategoryStat
		err := tx.Where("stats_id = ? AND category = ?", stats.ID, category).First(&entry).Error
		switch err {
		case nil:
			entry.TimesAsked += times
			if entry.TimesAsked > 0 {
				entry.Accuracy = float64(entry.TimesCorrect) / float64(entry.TimesAsked)
			}
			if err := tx.Save(&entry).Error; err != nil {
				return err
			}
		case gorm.ErrRecordNotFound:
			entry = models.CategoryStat{StatsID: stats.ID, Category: category, TimesAsked: times}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		default:
			return err
		}
	}

	return tx.Where(`stats_id = ? AND id NOT IN (
		SELECT id FROM category_stats WHERE stats_id = ? ORDER BY accuracy DESC, times_asked DESC, id ASC LIMIT ?
	)`, stats.ID, stats.ID, maxTopCategories).Delete(&models.CategoryStat{}).Error
}

func updateDailyStats(tx *gorm.DB, stats *models.GameStats, durationSeconds int) error {
	today := time.Now().Truncate(24 * time.Hour)

	var entry models.DailyStat
	err := tx.Where("stats_id = ? AND date = ?", stats.ID, today).First(&entry).Error
	switch err {
	case nil:
		total := float64(entry.GamesPlayed + 1)
		entry.AverageGameDuration = (entry.AverageGameDuration*float64(entry.GamesPlayed) + float64(durationSeconds)) / total
		entry.GamesPlayed++
		if err := tx.Save(&entry).Error; err != nil {
			return err
		}
	case gorm.ErrRecordNotFound:
		entry = models.DailyStat{
			StatsID:             stats.ID,
			Date:                today,
			GamesPlayed:         1,
			AverageGameDuration: float64(durationSeconds),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
	default:
		return err
	}

	cutoff := time.Now().Add(-dailyStatsWindow)
	return tx.Where("stats_id = ? AND date < ?", stats.ID, cutoff).Delete(&models.DailyStat{}).Error
}

type DashboardStats struct {
	TotalGames          int                   `json:"totalGames"`
	TotalPlayers        int                   `json:"totalPlayers"`
	TotalQuestions      int                   `json:"totalQuestions"`
	TotalCorrectAnswers int                   `json:"totalCorrectAnswers"`
	Accuracy            float64               `json:"accuracy"`
	TopWinners          []models.TopWinner    `json:"topWinners"`
	TopCategories       []models.CategoryStat `json:"topCategories"`
	LastUpdated         time.Time             `json:"lastUpdated"`
}

// GetDashboardStats returns the aggregate projection shown on the dashboard.
func (s *GameStatsService) GetDashboardStats() (*DashboardStats, error) {
	stats, err := s.getOrCreateStats(s.db)
	if err != nil {
		return nil, err
	}

	out := &DashboardStats{
		TotalGames:          stats.TotalGamesPlayed,
		TotalPlayers:        stats.TotalPlayers,
		TotalQuestions:      stats.TotalQuestionsAnswered,
		TotalCorrectAnswers: stats.TotalCorrectAnswers,
		TopWinners:          stats.TopWinners,
		TopCategories:       stats.TopCategories,
		LastUpdated:         stats.LastUpdated,
	}
	if out.TotalQuestions > 0 {
		out.Accuracy = float64(out.TotalCorrectAnswers) / float64(out.TotalQuestions) * 100
	}
	if len(out.TopWinners) > 5 {
		out.TopWinners = out.TopWinners[:5]
	}
	if len(out.TopCategories) > 5 {
		out.TopCategories = out.TopCategories[:5]
	}
	return out, nil
}
