package db

import (
	"github.com/terraincognita07/vocalis/internal/models"
	"gorm.io/gorm"
)

type FinalReportRepository struct {
	database *gorm.DB
}

func NewFinalReportRepository(database *gorm.DB) *FinalReportRepository {
	return &FinalReportRepository{database: database}
}

// CreateReceipt stores the final report and its notification, then runs commit
// before the transaction is committed. Any failure leaves neither row behind.
func (repo *FinalReportRepository) CreateReceipt(report *models.FinalReport, notification *models.PatientNotification, commit func() error) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		if err := tx.Create(notification).Error; err != nil {
			return err
		}
		return commit()
	})
}

func (repo *FinalReportRepository) FindForPatient(reportID uint, patientID uint) (models.FinalReport, error) {
	var report models.FinalReport
	if err := repo.database.
		Where("id = ? AND patient_id = ?", reportID, patientID).
		First(&report).Error; err != nil {
		return models.FinalReport{}, translateError(err)
	}
	return report, nil
}

func (repo *FinalReportRepository) ListByPatient(patientID uint) ([]models.FinalReport, error) {
	reports := make([]models.FinalReport, 0)
	if err := repo.database.
		Where("patient_id = ?", patientID).
		Order("created_at DESC, id DESC").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
