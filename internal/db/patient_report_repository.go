package db

import (
	"github.com/terraincognita07/vocalis/internal/models"
	"gorm.io/gorm"
)

type PatientReportRepository struct {
	database *gorm.DB
}

func NewPatientReportRepository(database *gorm.DB) *PatientReportRepository {
	return &PatientReportRepository{database: database}
}

// CreateWithCommit inserts report and runs commit inside the same transaction.
// A commit failure rolls the row back.
func (repo *PatientReportRepository) CreateWithCommit(report *models.PatientReport, commit func() error) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		return commit()
	})
}

func (repo *PatientReportRepository) ListByDoctor(doctorID uint) ([]models.PatientReport, error) {
	reports := make([]models.PatientReport, 0)
	if err := repo.database.
		Where("doctor_id = ?", doctorID).
		Order("created_at DESC, id DESC").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (repo *PatientReportRepository) ExistsForDoctor(doctorID uint, filename string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.PatientReport{}).
		Where("doctor_id = ? AND report_filename = ?", doctorID, filename).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}
