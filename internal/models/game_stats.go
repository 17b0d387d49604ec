package models

import "time"

// GameStats is the single cross-game aggregate row, updated once per
// finished game.
type GameStats struct {
	ID                     uint           `gorm:"primaryKey" json:"id"`
	TotalGamesPlayed       int            `gorm:"not null;default:0" json:"totalGamesPlayed"`
	TotalPlayers           int            `gorm:"not null;default:0" json:"totalPlayers"`
	TotalQuestionsAnswered int            `gorm:"not null;default:0" json:"totalQuestionsAnswered"`
	TotalCorrectAnswers    int            `gorm:"not null;default:0" json:"totalCorrectAnswers"`
	TopWinners             []TopWinner    `gorm:"foreignKey:StatsID;constraint:OnDelete:CASCADE" json:"topWinners,omitempty"`
	TopCategories          []CategoryStat `gorm:"foreignKey:StatsID;constraint:OnDelete:CASCADE" json:"topCategories,omitempty"`
	DailyStats             []DailyStat    `gorm:"foreignKey:StatsID;constraint:OnDelete:CASCADE" json:"dailyStats,omitempty"`
	LastUpdated            time.Time      `json:"lastUpdated"`
}

type TopWinner struct {
	ID          uint    `gorm:"primaryKey" json:"-"`
	StatsID     uint    `gorm:"not null;index" json:"-"`
	PlayerID    string  `gorm:"size:64;not null" json:"playerId"`
	PlayerName  string  `gorm:"size:100;not null" json:"playerName"`
	Wins        int     `gorm:"not null;default:0" json:"wins"`
	TotalScore  int     `gorm:"not null;default:0" json:"totalScore"`
	GamesPlayed int     `gorm:"not null;default:0" json:"gamesPlayed"`
	WinRate     float64 `gorm:"not null;default:0" json:"winRate"`
}

type CategoryStat struct {
	ID           uint    `gorm:"primaryKey" json:"-"`
	StatsID      uint    `gorm:"not null;index" json:"-"`
	Category     string  `gorm:"size:100;not null" json:"category"`
	TimesAsked   int     `gorm:"not null;default:0" json:"timesAsked"`
	TimesCorrect int     `gorm:"not null;default:0" json:"timesCorrect"`
	Accuracy     float64 `gorm:"not null;default:0" json:"accuracy"`
}

type DailyStat struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	StatsID             uint      `gorm:"not null;index" json:"-"`
	Date                time.Time `gorm:"not null;index" json:"date"`
	GamesPlayed         int       `gorm:"not null;default:0" json:"gamesPlayed"`
	AverageGameDuration float64   `gorm:"not null;default:0" json:"averageGameDuration"`
}
