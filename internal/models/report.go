package models

import "time"

const (
	PredictionPositive = "Positive"
	PredictionNegative = "Negative"
)

// PatientReport records a final report generated on the clinician side.
type PatientReport struct {
	ID             uint      `gorm:"primaryKey"`
	DoctorID       uint      `gorm:"not null;index"`
	NotificationID uint      `gorm:"not null"`
	PatientName    string    `gorm:"not null"`
	ReportFilename string    `gorm:"not null"`
	Prediction     string    `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

// ReportDelivery records one successful hand-off to the patient service.
type ReportDelivery struct {
	ID              uint      `gorm:"primaryKey"`
	DoctorID        uint      `gorm:"not null;index"`
	PatientUsername string    `gorm:"not null"`
	ReportFilename  string    `gorm:"not null"`
	DeliveredAt     time.Time `gorm:"not null"`
}

type FinalReport struct {
	ID             uint      `gorm:"primaryKey"`
	PatientID      uint      `gorm:"not null;index"`
	ReportFilename string    `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
}
