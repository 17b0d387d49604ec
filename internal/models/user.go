package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:20;not null;default:'player'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	RolePlayer = "player"
	RoleAdmin  = "admin"
)
