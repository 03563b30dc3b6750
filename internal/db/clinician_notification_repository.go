package db

import (
	"github.com/terraincognita07/vocalis/internal/models"
	"gorm.io/gorm"
)

type ClinicianNotificationRepository struct {
	database *gorm.DB
}

func NewClinicianNotificationRepository(database *gorm.DB) *ClinicianNotificationRepository {
	return &ClinicianNotificationRepository{database: database}
}

func (repo *ClinicianNotificationRepository) Create(notification *models.ClinicianNotification) error {
	return repo.database.Create(notification).Error
}

func (repo *ClinicianNotificationRepository) FindByID(notificationID uint) (models.ClinicianNotification, error) {
	var notification models.ClinicianNotification
	if err := repo.database.First(&notification, notificationID).Error; err != nil {
		return models.ClinicianNotification{}, translateError(err)
	}
	return notification, nil
}

// ListByDoctor omits the report bytes; callers download them separately.
func (repo *ClinicianNotificationRepository) ListByDoctor(doctorID uint) ([]models.ClinicianNotification, error) {
	notifications := make([]models.ClinicianNotification, 0)
	if err := repo.database.
		Omit("report").
		Where("doctor_id = ?", doctorID).
		Order("date DESC, id DESC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (repo *ClinicianNotificationRepository) Delete(notificationID uint) error {
	result := repo.database.Delete(&models.ClinicianNotification{}, notificationID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
