package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/terraincognita07/vocalis/internal/db"
	"github.com/terraincognita07/vocalis/internal/events"
	"github.com/terraincognita07/vocalis/internal/models"
)

const serviceClinician = "clinician"

type DoctorLookup interface {
	FindByID(doctorID uint) (models.Doctor, error)
}

type ClinicianNotificationRepository interface {
	Create(notification *models.ClinicianNotification) error
	FindByID(notificationID uint) (models.ClinicianNotification, error)
	ListByDoctor(doctorID uint) ([]models.ClinicianNotification, error)
	Delete(notificationID uint) error
}

// IncomingReport is a raw report submission as received from the patient service.
type IncomingReport struct {
	DoctorID    string
	PatientName string
	Date        string
	Report      []byte
}

var reportDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseReportDate accepts RFC 3339 timestamps, zone-less ISO-8601 timestamps
// and bare dates. Zone-less values are read as UTC.
func ParseReportDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range reportDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, invalid("date must be an ISO-8601 timestamp")
}

func ParseID(raw string, field string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || value == 0 {
		return 0, invalid(field + " must be a positive integer")
	}
	return uint(value), nil
}

type IntakeService struct {
	doctors       DoctorLookup
	notifications ClinicianNotificationRepository
	publisher     events.Publisher
}

func NewIntakeService(doctors DoctorLookup, notifications ClinicianNotificationRepository, publisher events.Publisher) *IntakeService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &IntakeService{doctors: doctors, notifications: notifications, publisher: publisher}
}

// Receive stores an inbound report for the addressed doctor. Every call creates
// a new notification, including repeated submissions of the same file.
func (service *IntakeService) Receive(ctx context.Context, input IncomingReport) (models.ClinicianNotification, error) {
	if strings.TrimSpace(input.DoctorID) == "" || strings.TrimSpace(input.PatientName) == "" || strings.TrimSpace(input.Date) == "" {
		return models.ClinicianNotification{}, invalid("doctor_id, patient_name and date are required")
	}
	if len(input.Report) == 0 {
		return models.ClinicianNotification{}, invalid("report file is required")
	}
	doctorID, err := ParseID(input.DoctorID, "doctor_id")
	if err != nil {
		return models.ClinicianNotification{}, err
	}
	date, err := ParseReportDate(input.Date)
	if err != nil {
		return models.ClinicianNotification{}, err
	}

	if _, err := service.doctors.FindByID(doctorID); err != nil {
		return models.ClinicianNotification{}, accountLookupError(err, "doctor not found")
	}

	notification := models.ClinicianNotification{
		DoctorID:    doctorID,
		PatientName: strings.TrimSpace(input.PatientName),
		Date:        date,
		Report:      input.Report,
	}
	if err := service.notifications.Create(&notification); err != nil {
		return models.ClinicianNotification{}, err
	}

	publish(ctx, service.publisher, events.Event{
		Type:        events.TypeReportReceived,
		Service:     serviceClinician,
		AccountID:   doctorID,
		PatientName: notification.PatientName,
		Reference:   strconv.FormatUint(uint64(notification.ID), 10),
	})
	return notification, nil
}

func (service *IntakeService) ListForDoctor(doctorID uint) ([]models.ClinicianNotification, error) {
	return service.notifications.ListByDoctor(doctorID)
}

// Find returns a notification only to the doctor it is addressed to.
func (service *IntakeService) Find(doctorID uint, notificationID uint) (models.ClinicianNotification, error) {
	notification, err := service.notifications.FindByID(notificationID)
	if errors.Is(err, db.ErrNotFound) || (err == nil && notification.DoctorID != doctorID) {
		return models.ClinicianNotification{}, notFound("notification not found")
	}
	if err != nil {
		return models.ClinicianNotification{}, err
	}
	return notification, nil
}

func (service *IntakeService) Delete(doctorID uint, notificationID uint) error {
	if _, err := service.Find(doctorID, notificationID); err != nil {
		return err
	}
	if err := service.notifications.Delete(notificationID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return notFound("notification not found")
		}
		return err
	}
	return nil
}

func publish(ctx context.Context, publisher events.Publisher, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("event", event.Type).Msg("publish event failed")
	}
}
