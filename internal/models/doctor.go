package models

import "time"

type Doctor struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash   string    `gorm:"not null" json:"-"`
	Name           string    `gorm:"not null" json:"name"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Qualification  string    `json:"qualification"`
	Position       string    `json:"position"`
	ProfilePicture []byte    `json:"-"`
	CreatedAt      time.Time `gorm:"not null" json:"-"`
}

func (doctor Doctor) HasProfilePicture() bool {
	return len(doctor.ProfilePicture) > 0
}
