package db

import (
	"github.com/terraincognita07/vocalis/internal/models"
	"gorm.io/gorm"
)

type DoctorRepository struct {
	database *gorm.DB
}

func NewDoctorRepository(database *gorm.DB) *DoctorRepository {
	return &DoctorRepository{database: database}
}

func (repo *DoctorRepository) ExistsByUsernameOrEmail(username string, email string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.Doctor{}).
		Where("username = ? OR lower(email) = lower(?)", username, email).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *DoctorRepository) Create(doctor *models.Doctor) error {
	return translateError(repo.database.Create(doctor).Error)
}

func (repo *DoctorRepository) FindByID(doctorID uint) (models.Doctor, error) {
	var doctor models.Doctor
	if err := repo.database.First(&doctor, doctorID).Error; err != nil {
		return models.Doctor{}, translateError(err)
	}
	return doctor, nil
}

func (repo *DoctorRepository) FindByUsername(username string) (models.Doctor, error) {
	var doctor models.Doctor
	if err := repo.database.Where("username = ?", username).First(&doctor).Error; err != nil {
		return models.Doctor{}, translateError(err)
	}
	return doctor, nil
}

// List returns every doctor without the profile picture blob.
func (repo *DoctorRepository) List() ([]models.Doctor, error) {
	doctors := make([]models.Doctor, 0)
	if err := repo.database.
		Omit("profile_picture").
		Order("name ASC, id ASC").
		Find(&doctors).Error; err != nil {
		return nil, err
	}
	return doctors, nil
}

func (repo *DoctorRepository) UpdatePassword(doctorID uint, passwordHash string) error {
	result := repo.database.Model(&models.Doctor{}).Where("id = ?", doctorID).Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
