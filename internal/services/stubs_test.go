package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/vocalis/internal/db"
	"github.com/terraincognita07/vocalis/internal/events"
	"github.com/terraincognita07/vocalis/internal/features"
	"github.com/terraincognita07/vocalis/internal/models"
	"github.com/terraincognita07/vocalis/internal/peer"
)

type stubDoctorRepo struct {
	doctors   []models.Doctor
	createErr error
}

func (repo *stubDoctorRepo) ExistsByUsernameOrEmail(username string, email string) (bool, error) {
	for _, doctor := range repo.doctors {
		if doctor.Username == username || strings.EqualFold(doctor.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (repo *stubDoctorRepo) Create(doctor *models.Doctor) error {
	if repo.createErr != nil {
		return repo.createErr
	}
	doctor.ID = uint(len(repo.doctors) + 1)
	repo.doctors = append(repo.doctors, *doctor)
	return nil
}

func (repo *stubDoctorRepo) FindByID(doctorID uint) (models.Doctor, error) {
	for _, doctor := range repo.doctors {
		if doctor.ID == doctorID {
			return doctor, nil
		}
	}
	return models.Doctor{}, db.ErrNotFound
}

func (repo *stubDoctorRepo) FindByUsername(username string) (models.Doctor, error) {
	for _, doctor := range repo.doctors {
		if doctor.Username == username {
			return doctor, nil
		}
	}
	return models.Doctor{}, db.ErrNotFound
}

func (repo *stubDoctorRepo) List() ([]models.Doctor, error) {
	return repo.doctors, nil
}

func (repo *stubDoctorRepo) UpdatePassword(doctorID uint, passwordHash string) error {
	for index := range repo.doctors {
		if repo.doctors[index].ID == doctorID {
			repo.doctors[index].PasswordHash = passwordHash
			return nil
		}
	}
	return db.ErrNotFound
}

type stubPatientRepo struct {
	patients  []models.Patient
	createErr error
}

func (repo *stubPatientRepo) ExistsByUsernameOrEmail(username string, email string) (bool, error) {
	for _, patient := range repo.patients {
		if patient.Username == username || strings.EqualFold(patient.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (repo *stubPatientRepo) Create(patient *models.Patient) error {
	if repo.createErr != nil {
		return repo.createErr
	}
	patient.ID = uint(len(repo.patients) + 1)
	repo.patients = append(repo.patients, *patient)
	return nil
}

func (repo *stubPatientRepo) FindByID(patientID uint) (models.Patient, error) {
	for _, patient := range repo.patients {
		if patient.ID == patientID {
			return patient, nil
		}
	}
	return models.Patient{}, db.ErrNotFound
}

func (repo *stubPatientRepo) FindByUsername(username string) (models.Patient, error) {
	for _, patient := range repo.patients {
		if patient.Username == username {
			return patient, nil
		}
	}
	return models.Patient{}, db.ErrNotFound
}

func (repo *stubPatientRepo) UpdatePassword(patientID uint, passwordHash string) error {
	for index := range repo.patients {
		if repo.patients[index].ID == patientID {
			repo.patients[index].PasswordHash = passwordHash
			return nil
		}
	}
	return db.ErrNotFound
}

type stubNotificationRepo struct {
	notifications []models.ClinicianNotification
}

func (repo *stubNotificationRepo) Create(notification *models.ClinicianNotification) error {
	notification.ID = uint(len(repo.notifications) + 1)
	repo.notifications = append(repo.notifications, *notification)
	return nil
}

func (repo *stubNotificationRepo) FindByID(notificationID uint) (models.ClinicianNotification, error) {
	for _, notification := range repo.notifications {
		if notification.ID == notificationID {
			return notification, nil
		}
	}
	return models.ClinicianNotification{}, db.ErrNotFound
}

func (repo *stubNotificationRepo) ListByDoctor(doctorID uint) ([]models.ClinicianNotification, error) {
	result := make([]models.ClinicianNotification, 0)
	for _, notification := range repo.notifications {
		if notification.DoctorID == doctorID {
			result = append(result, notification)
		}
	}
	return result, nil
}

func (repo *stubNotificationRepo) Delete(notificationID uint) error {
	for index, notification := range repo.notifications {
		if notification.ID == notificationID {
			repo.notifications = append(repo.notifications[:index], repo.notifications[index+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

type stubPatientReportRepo struct {
	reports []models.PatientReport
	failErr error
}

func (repo *stubPatientReportRepo) CreateWithCommit(report *models.PatientReport, commit func() error) error {
	if repo.failErr != nil {
		return repo.failErr
	}
	if err := commit(); err != nil {
		return err
	}
	report.ID = uint(len(repo.reports) + 1)
	repo.reports = append(repo.reports, *report)
	return nil
}

func (repo *stubPatientReportRepo) ListByDoctor(doctorID uint) ([]models.PatientReport, error) {
	result := make([]models.PatientReport, 0)
	for _, report := range repo.reports {
		if report.DoctorID == doctorID {
			result = append(result, report)
		}
	}
	return result, nil
}

func (repo *stubPatientReportRepo) ExistsForDoctor(doctorID uint, filename string) (bool, error) {
	for _, report := range repo.reports {
		if report.DoctorID == doctorID && report.ReportFilename == filename {
			return true, nil
		}
	}
	return false, nil
}

type stubDeliveryRepo struct {
	deliveries []models.ReportDelivery
}

func (repo *stubDeliveryRepo) Create(delivery *models.ReportDelivery) error {
	delivery.ID = uint(len(repo.deliveries) + 1)
	repo.deliveries = append(repo.deliveries, *delivery)
	return nil
}

func (repo *stubDeliveryRepo) ListByDoctor(doctorID uint) ([]models.ReportDelivery, error) {
	return repo.deliveries, nil
}

type stubFinalReportRepo struct {
	reports       []models.FinalReport
	notifications []models.PatientNotification
	failErr       error
}

func (repo *stubFinalReportRepo) CreateReceipt(report *models.FinalReport, notification *models.PatientNotification, commit func() error) error {
	if repo.failErr != nil {
		return repo.failErr
	}
	if err := commit(); err != nil {
		return err
	}
	report.ID = uint(len(repo.reports) + 1)
	notification.ID = uint(len(repo.notifications) + 1)
	repo.reports = append(repo.reports, *report)
	repo.notifications = append(repo.notifications, *notification)
	return nil
}

func (repo *stubFinalReportRepo) FindForPatient(reportID uint, patientID uint) (models.FinalReport, error) {
	for _, report := range repo.reports {
		if report.ID == reportID && report.PatientID == patientID {
			return report, nil
		}
	}
	return models.FinalReport{}, db.ErrNotFound
}

func (repo *stubFinalReportRepo) ListByPatient(patientID uint) ([]models.FinalReport, error) {
	result := make([]models.FinalReport, 0)
	for _, report := range repo.reports {
		if report.PatientID == patientID {
			result = append(result, report)
		}
	}
	return result, nil
}

func (repo *stubFinalReportRepo) ListNotifications(patientID uint) ([]models.PatientNotification, error) {
	result := make([]models.PatientNotification, 0)
	for _, notification := range repo.notifications {
		if notification.PatientID == patientID {
			result = append(result, notification)
		}
	}
	return result, nil
}

type patientNotificationsFromReceipts struct {
	receipts *stubFinalReportRepo
}

func (repo patientNotificationsFromReceipts) ListByPatient(patientID uint) ([]models.PatientNotification, error) {
	return repo.receipts.ListNotifications(patientID)
}

type stubSessionRecords struct {
	sessions map[string]models.Session
}

func newStubSessionRecords() *stubSessionRecords {
	return &stubSessionRecords{sessions: map[string]models.Session{}}
}

func (repo *stubSessionRecords) Create(session *models.Session) error {
	repo.sessions[session.Token] = *session
	return nil
}

func (repo *stubSessionRecords) FindActive(token string, now time.Time) (models.Session, error) {
	session, ok := repo.sessions[token]
	if !ok || !session.ExpiresAt.After(now) {
		return models.Session{}, db.ErrNotFound
	}
	return session, nil
}

func (repo *stubSessionRecords) Delete(token string) error {
	delete(repo.sessions, token)
	return nil
}

func (repo *stubSessionRecords) DeleteExpired(now time.Time) (int64, error) {
	var removed int64
	for token, session := range repo.sessions {
		if !session.ExpiresAt.After(now) {
			delete(repo.sessions, token)
			removed++
		}
	}
	return removed, nil
}

type stubClassifier struct {
	label int
	err   error
}

func (classifier stubClassifier) Predict(context.Context, features.Vector) (int, error) {
	return classifier.label, classifier.err
}

type stubExtractor struct {
	text string
	err  error
}

func (extractor stubExtractor) ExtractText(context.Context, []byte) (string, error) {
	return extractor.text, extractor.err
}

type recordingPublisher struct {
	events []events.Event
}

func (publisher *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	publisher.events = append(publisher.events, event)
	return nil
}

func (publisher *recordingPublisher) Close() error {
	return nil
}

type stubPatientDeliverer struct {
	deliveries []peer.Delivery
	err        error
}

func (deliverer *stubPatientDeliverer) DeliverReport(_ context.Context, delivery peer.Delivery) error {
	if deliverer.err != nil {
		return deliverer.err
	}
	deliverer.deliveries = append(deliverer.deliveries, delivery)
	return nil
}

type stubClinicianGateway struct {
	doctors     []peer.Doctor
	listErr     error
	submitErr   error
	submissions []peer.Submission
}

func (gateway *stubClinicianGateway) ListDoctors(context.Context) ([]peer.Doctor, error) {
	return gateway.doctors, gateway.listErr
}

func (gateway *stubClinicianGateway) SubmitReport(_ context.Context, submission peer.Submission) error {
	if gateway.submitErr != nil {
		return gateway.submitErr
	}
	gateway.submissions = append(gateway.submissions, submission)
	return nil
}

var errStubFailure = errors.New("stub failure")
