package services

import (
	"errors"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/terraincognita07/vocalis/internal/db"
	"github.com/terraincognita07/vocalis/internal/models"
)

const errDuplicateAccount = "username or email already exists"

type DoctorRepository interface {
	ExistsByUsernameOrEmail(username string, email string) (bool, error)
	Create(doctor *models.Doctor) error
	FindByID(doctorID uint) (models.Doctor, error)
	FindByUsername(username string) (models.Doctor, error)
	List() ([]models.Doctor, error)
	UpdatePassword(doctorID uint, passwordHash string) error
}

type PatientRepository interface {
	ExistsByUsernameOrEmail(username string, email string) (bool, error)
	Create(patient *models.Patient) error
	FindByID(patientID uint) (models.Patient, error)
	FindByUsername(username string) (models.Patient, error)
	UpdatePassword(patientID uint, passwordHash string) error
}

type DoctorSignup struct {
	Username       string
	Password       string
	Name           string
	Email          string
	Qualification  string
	Position       string
	ProfilePicture []byte
}

type PatientSignup struct {
	Username string
	Password string
	Email    string
}

func NormalizeEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ""
	}
	return email
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func passwordMatches(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validateCredentials checks the fields shared by both signup forms and returns
// the normalized email.
func validateCredentials(username string, password string, rawEmail string) (string, error) {
	if username == "" || password == "" || strings.TrimSpace(rawEmail) == "" {
		return "", invalid("username, email and password are required")
	}
	email := NormalizeEmail(rawEmail)
	if email == "" {
		return "", invalid("email address is invalid")
	}
	return email, nil
}

func accountLookupError(err error, message string) error {
	if errors.Is(err, db.ErrNotFound) {
		return notFound(message)
	}
	return err
}

type DoctorAccountService struct {
	doctors DoctorRepository
}

func NewDoctorAccountService(doctors DoctorRepository) *DoctorAccountService {
	return &DoctorAccountService{doctors: doctors}
}

func (service *DoctorAccountService) Signup(input DoctorSignup) (models.Doctor, error) {
	username := strings.TrimSpace(input.Username)
	name := strings.TrimSpace(input.Name)
	email, err := validateCredentials(username, input.Password, input.Email)
	if err != nil {
		return models.Doctor{}, err
	}
	if name == "" {
		return models.Doctor{}, invalid("name is required")
	}

	exists, err := service.doctors.ExistsByUsernameOrEmail(username, email)
	if err != nil {
		return models.Doctor{}, err
	}
	if exists {
		return models.Doctor{}, conflict(errDuplicateAccount)
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return models.Doctor{}, err
	}
	doctor := models.Doctor{
		Username:       username,
		PasswordHash:   hash,
		Name:           name,
		Email:          email,
		Qualification:  strings.TrimSpace(input.Qualification),
		Position:       strings.TrimSpace(input.Position),
		ProfilePicture: input.ProfilePicture,
	}
	if err := service.doctors.Create(&doctor); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return models.Doctor{}, conflict(errDuplicateAccount)
		}
		return models.Doctor{}, err
	}
	return doctor, nil
}

func (service *DoctorAccountService) Authenticate(username string, password string) (models.Doctor, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Doctor{}, ErrInvalidCredentials
	}
	doctor, err := service.doctors.FindByUsername(username)
	if errors.Is(err, db.ErrNotFound) {
		return models.Doctor{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Doctor{}, err
	}
	if !passwordMatches(doctor.PasswordHash, password) {
		return models.Doctor{}, ErrInvalidCredentials
	}
	return doctor, nil
}

func (service *DoctorAccountService) FindByID(doctorID uint) (models.Doctor, error) {
	doctor, err := service.doctors.FindByID(doctorID)
	if err != nil {
		return models.Doctor{}, accountLookupError(err, "doctor not found")
	}
	return doctor, nil
}

// Directory lists every doctor without credentials or pictures.
func (service *DoctorAccountService) Directory() ([]models.Doctor, error) {
	return service.doctors.List()
}

// ResetPassword replaces the password of the named account and returns its id.
func (service *DoctorAccountService) ResetPassword(username string, password string) (uint, error) {
	if password == "" {
		return 0, invalid("password is required")
	}
	doctor, err := service.doctors.FindByUsername(strings.TrimSpace(username))
	if err != nil {
		return 0, accountLookupError(err, "doctor not found")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return 0, err
	}
	if err := service.doctors.UpdatePassword(doctor.ID, hash); err != nil {
		return 0, err
	}
	return doctor.ID, nil
}

type PatientAccountService struct {
	patients PatientRepository
}

func NewPatientAccountService(patients PatientRepository) *PatientAccountService {
	return &PatientAccountService{patients: patients}
}

func (service *PatientAccountService) Signup(input PatientSignup) (models.Patient, error) {
	username := strings.TrimSpace(input.Username)
	email, err := validateCredentials(username, input.Password, input.Email)
	if err != nil {
		return models.Patient{}, err
	}

	exists, err := service.patients.ExistsByUsernameOrEmail(username, email)
	if err != nil {
		return models.Patient{}, err
	}
	if exists {
		return models.Patient{}, conflict(errDuplicateAccount)
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return models.Patient{}, err
	}
	patient := models.Patient{Username: username, PasswordHash: hash, Email: email}
	if err := service.patients.Create(&patient); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return models.Patient{}, conflict(errDuplicateAccount)
		}
		return models.Patient{}, err
	}
	return patient, nil
}

func (service *PatientAccountService) Authenticate(username string, password string) (models.Patient, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Patient{}, ErrInvalidCredentials
	}
	patient, err := service.patients.FindByUsername(username)
	if errors.Is(err, db.ErrNotFound) {
		return models.Patient{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Patient{}, err
	}
	if !passwordMatches(patient.PasswordHash, password) {
		return models.Patient{}, ErrInvalidCredentials
	}
	return patient, nil
}

func (service *PatientAccountService) FindByID(patientID uint) (models.Patient, error) {
	patient, err := service.patients.FindByID(patientID)
	if err != nil {
		return models.Patient{}, accountLookupError(err, "patient not found")
	}
	return patient, nil
}

// ResetPassword replaces the password of the named account and returns its id.
func (service *PatientAccountService) ResetPassword(username string, password string) (uint, error) {
	if password == "" {
		return 0, invalid("password is required")
	}
	patient, err := service.patients.FindByUsername(strings.TrimSpace(username))
	if err != nil {
		return 0, accountLookupError(err, "patient not found")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return 0, err
	}
	if err := service.patients.UpdatePassword(patient.ID, hash); err != nil {
		return 0, err
	}
	return patient.ID, nil
}
