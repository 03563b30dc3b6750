package models

import "time"

// ClinicianNotification is an inbound patient report waiting for review.
type ClinicianNotification struct {
	ID          uint      `gorm:"primaryKey"`
	DoctorID    uint      `gorm:"not null;index"`
	PatientName string    `gorm:"not null"`
	Date        time.Time `gorm:"not null"`
	Report      []byte
	CreatedAt   time.Time `gorm:"not null"`
}

func (ClinicianNotification) TableName() string {
	return "notifications"
}

// PatientNotification tells a patient that a finalized report arrived.
// Report holds the delivered file name, not the file bytes.
type PatientNotification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DoctorID    *uint     `json:"doctor_id"`
	PatientID   uint      `gorm:"not null;index" json:"patient_id"`
	PatientName string    `gorm:"not null" json:"patient_name"`
	Date        time.Time `gorm:"not null" json:"date"`
	Report      []byte    `json:"-"`
}

func (PatientNotification) TableName() string {
	return "notifications"
}

func (notification PatientNotification) ReportFilename() string {
	return string(notification.Report)
}
