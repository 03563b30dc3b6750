package models

import "time"

type Session struct {
	Token     string    `gorm:"primaryKey"`
	AccountID uint      `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
}
