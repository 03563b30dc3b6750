package db

import (
	"time"

	"github.com/terraincognita07/vocalis/internal/models"
	"gorm.io/gorm"
)

type SessionRepository struct {
	database *gorm.DB
}

func NewSessionRepository(database *gorm.DB) *SessionRepository {
	return &SessionRepository{database: database}
}

func (repo *SessionRepository) Create(session *models.Session) error {
	return translateError(repo.database.Create(session).Error)
}

// FindActive returns the session only while it has not expired at now.
func (repo *SessionRepository) FindActive(token string, now time.Time) (models.Session, error) {
	var session models.Session
	if err := repo.database.
		Where("token = ? AND expires_at > ?", token, now).
		First(&session).Error; err != nil {
		return models.Session{}, translateError(err)
	}
	return session, nil
}

func (repo *SessionRepository) Delete(token string) error {
	return repo.database.Where("token = ?", token).Delete(&models.Session{}).Error
}

func (repo *SessionRepository) DeleteByAccount(accountID uint) error {
	return repo.database.Where("account_id = ?", accountID).Delete(&models.Session{}).Error
}

func (repo *SessionRepository) DeleteExpired(now time.Time) (int64, error) {
	result := repo.database.Where("expires_at <= ?", now).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}
