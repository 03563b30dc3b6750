package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/vocalis/internal/db"
	"github.com/terraincognita07/vocalis/internal/events"
	"github.com/terraincognita07/vocalis/internal/models"
	"github.com/terraincognita07/vocalis/internal/storage"
)

const servicePatient = "patient"

type PatientLookup interface {
	FindByUsername(username string) (models.Patient, error)
}

type FinalReportRepository interface {
	CreateReceipt(report *models.FinalReport, notification *models.PatientNotification, commit func() error) error
	FindForPatient(reportID uint, patientID uint) (models.FinalReport, error)
	ListByPatient(patientID uint) ([]models.FinalReport, error)
}

type PatientNotificationRepository interface {
	ListByPatient(patientID uint) ([]models.PatientNotification, error)
}

// IncomingFinalReport is a finalized report pushed by the clinician service.
// ReportFilename wins over the upload's own file name when both are set.
type IncomingFinalReport struct {
	PatientUsername string
	ReportFilename  string
	UploadFilename  string
	Content         []byte
}

type ReceiptService struct {
	patients      PatientLookup
	finalReports  FinalReportRepository
	notifications PatientNotificationRepository
	store         storage.Store
	publisher     events.Publisher
	now           func() time.Time
}

func NewReceiptService(
	patients PatientLookup,
	finalReports FinalReportRepository,
	notifications PatientNotificationRepository,
	store storage.Store,
	publisher events.Publisher,
) *ReceiptService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &ReceiptService{
		patients:      patients,
		finalReports:  finalReports,
		notifications: notifications,
		store:         store,
		publisher:     publisher,
		now:           time.Now,
	}
}

func (service *ReceiptService) findPatient(username string) (models.Patient, error) {
	patient, err := service.patients.FindByUsername(strings.TrimSpace(username))
	if err != nil {
		return models.Patient{}, accountLookupError(err, "patient not found")
	}
	return patient, nil
}

// Receive stores the file and records the final report and its notification
// atomically: either the file, the report row and the notification row all
// exist afterwards, or none of them changed.
func (service *ReceiptService) Receive(ctx context.Context, input IncomingFinalReport) (models.FinalReport, error) {
	if strings.TrimSpace(input.PatientUsername) == "" {
		return models.FinalReport{}, invalid("patient_username is required")
	}
	if len(input.Content) == 0 {
		return models.FinalReport{}, invalid("report file is required")
	}
	name := input.ReportFilename
	if strings.TrimSpace(name) == "" {
		name = input.UploadFilename
	}
	filename, err := storage.SafeName(name)
	if err != nil {
		return models.FinalReport{}, invalid("report filename is invalid")
	}

	patient, err := service.findPatient(input.PatientUsername)
	if err != nil {
		return models.FinalReport{}, err
	}

	staged, err := service.store.Stage(ctx, filename, input.Content)
	if err != nil {
		return models.FinalReport{}, fmt.Errorf("stage report: %w", err)
	}
	now := service.now().UTC()
	report := models.FinalReport{PatientID: patient.ID, ReportFilename: filename, CreatedAt: now}
	notification := models.PatientNotification{
		PatientID:   patient.ID,
		PatientName: patient.Username,
		Date:        now,
		Report:      []byte(filename),
	}
	if err := service.finalReports.CreateReceipt(&report, &notification, staged.Commit); err != nil {
		_ = staged.Discard()
		return models.FinalReport{}, fmt.Errorf("save receipt: %w", err)
	}

	publish(ctx, service.publisher, events.Event{
		Type:        events.TypeReportReceived,
		Service:     servicePatient,
		AccountID:   patient.ID,
		PatientName: patient.Username,
		Reference:   filename + "#" + strconv.FormatUint(uint64(report.ID), 10),
	})
	return report, nil
}

func (service *ReceiptService) NotificationsFor(username string) ([]models.PatientNotification, error) {
	patient, err := service.findPatient(username)
	if err != nil {
		return nil, err
	}
	return service.notifications.ListByPatient(patient.ID)
}

func (service *ReceiptService) ListReports(patientID uint) ([]models.FinalReport, error) {
	return service.finalReports.ListByPatient(patientID)
}

// Download returns a received report and its bytes to the patient who owns it.
func (service *ReceiptService) Download(ctx context.Context, patientID uint, reportID uint) (models.FinalReport, []byte, error) {
	report, err := service.finalReports.FindForPatient(reportID, patientID)
	if errors.Is(err, db.ErrNotFound) {
		return models.FinalReport{}, nil, notFound("report not found")
	}
	if err != nil {
		return models.FinalReport{}, nil, err
	}
	content, err := service.store.Get(ctx, report.ReportFilename)
	if errors.Is(err, storage.ErrNotFound) {
		return models.FinalReport{}, nil, notFound("report file not found")
	}
	if err != nil {
		return models.FinalReport{}, nil, err
	}
	return report, content, nil
}
