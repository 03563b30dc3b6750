package db

import (
	"github.com/terraincognita07/vocalis/internal/models"
	"gorm.io/gorm"
)

type ReportDeliveryRepository struct {
	database *gorm.DB
}

func NewReportDeliveryRepository(database *gorm.DB) *ReportDeliveryRepository {
	return &ReportDeliveryRepository{database: database}
}

func (repo *ReportDeliveryRepository) Create(delivery *models.ReportDelivery) error {
	return repo.database.Create(delivery).Error
}

func (repo *ReportDeliveryRepository) ListByDoctor(doctorID uint) ([]models.ReportDelivery, error) {
	deliveries := make([]models.ReportDelivery, 0)
	if err := repo.database.
		Where("doctor_id = ?", doctorID).
		Order("delivered_at DESC, id DESC").
		Find(&deliveries).Error; err != nil {
		return nil, err
	}
	return deliveries, nil
}
