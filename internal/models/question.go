package models

import "time"

type Question struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Category      string    `gorm:"size:100;not null;index" json:"category"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	Options       []string  `gorm:"serializer:json;type:jsonb;not null" json:"options"`
	CorrectAnswer string    `gorm:"size:255;not null" json:"correctAnswer"`
	TimesAsked    int       `gorm:"not null;default:0" json:"timesAsked"`
	TimesCorrect  int       `gorm:"not null;default:0" json:"timesCorrect"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
