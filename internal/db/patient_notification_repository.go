package db

import (
	"github.com/terraincognita07/vocalis/internal/models"
	"gorm.io/gorm"
)

type PatientNotificationRepository struct {
	database *gorm.DB
}

func NewPatientNotificationRepository(database *gorm.DB) *PatientNotificationRepository {
	return &PatientNotificationRepository{database: database}
}

func (repo *PatientNotificationRepository) ListByPatient(patientID uint) ([]models.PatientNotification, error) {
	notifications := make([]models.PatientNotification, 0)
	if err := repo.database.
		Where("patient_id = ?", patientID).
		Order("date DESC, id DESC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}
