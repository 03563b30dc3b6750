package db

import (
	"github.com/terraincognita07/vocalis/internal/models"
	"gorm.io/gorm"
)

type PatientRepository struct {
	database *gorm.DB
}

func NewPatientRepository(database *gorm.DB) *PatientRepository {
	return &PatientRepository{database: database}
}

func (repo *PatientRepository) ExistsByUsernameOrEmail(username string, email string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.Patient{}).
		Where("username = ? OR lower(email) = lower(?)", username, email).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *PatientRepository) Create(patient *models.Patient) error {
	return translateError(repo.database.Create(patient).Error)
}

func (repo *PatientRepository) FindByID(patientID uint) (models.Patient, error) {
	var patient models.Patient
	if err := repo.database.First(&patient, patientID).Error; err != nil {
		return models.Patient{}, translateError(err)
	}
	return patient, nil
}

func (repo *PatientRepository) FindByUsername(username string) (models.Patient, error) {
	var patient models.Patient
	if err := repo.database.Where("username = ?", username).First(&patient).Error; err != nil {
		return models.Patient{}, translateError(err)
	}
	return patient, nil
}

func (repo *PatientRepository) UpdatePassword(patientID uint, passwordHash string) error {
	result := repo.database.Model(&models.Patient{}).Where("id = ?", patientID).Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
