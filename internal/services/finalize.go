package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/terraincognita07/vocalis/internal/classifier"
	"github.com/terraincognita07/vocalis/internal/events"
	"github.com/terraincognita07/vocalis/internal/features"
	"github.com/terraincognita07/vocalis/internal/models"
	"github.com/terraincognita07/vocalis/internal/reports"
	"github.com/terraincognita07/vocalis/internal/storage"
)

type PatientReportRepository interface {
	CreateWithCommit(report *models.PatientReport, commit func() error) error
	ListByDoctor(doctorID uint) ([]models.PatientReport, error)
	ExistsForDoctor(doctorID uint, filename string) (bool, error)
}

// PredictionLabel maps a classifier label to its report wording.
func PredictionLabel(label int) string {
	if label == 1 {
		return models.PredictionPositive
	}
	return models.PredictionNegative
}

type FinalizeService struct {
	doctors    DoctorLookup
	intake     *IntakeService
	reports    PatientReportRepository
	store      storage.Store
	classifier classifier.Classifier
	publisher  events.Publisher
	now        func() time.Time
}

func NewFinalizeService(
	doctors DoctorLookup,
	intake *IntakeService,
	reportRecords PatientReportRepository,
	store storage.Store,
	model classifier.Classifier,
	publisher events.Publisher,
) *FinalizeService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &FinalizeService{
		doctors:    doctors,
		intake:     intake,
		reports:    reportRecords,
		store:      store,
		classifier: model,
		publisher:  publisher,
		now:        time.Now,
	}
}

// Finalize classifies the confirmed features, renders the report PDF and stores
// it together with its record. A report for the same patient name replaces the
// earlier file.
func (service *FinalizeService) Finalize(ctx context.Context, doctorID uint, notificationID uint, vector features.Vector) (models.PatientReport, error) {
	notification, err := service.intake.Find(doctorID, notificationID)
	if err != nil {
		return models.PatientReport{}, err
	}
	doctor, err := service.doctors.FindByID(doctorID)
	if err != nil {
		return models.PatientReport{}, accountLookupError(err, "doctor not found")
	}

	label, err := service.classifier.Predict(ctx, vector)
	if err != nil {
		return models.PatientReport{}, fmt.Errorf("predict: %w", err)
	}
	prediction := PredictionLabel(label)

	document, err := reports.Render(reports.Report{
		PatientName: notification.PatientName,
		Prediction:  prediction,
		DoctorName:  doctor.Name,
		Features:    vector,
	})
	if err != nil {
		return models.PatientReport{}, err
	}

	filename := reports.Filename(notification.PatientName)
	staged, err := service.store.Stage(ctx, filename, document)
	if err != nil {
		return models.PatientReport{}, fmt.Errorf("stage report: %w", err)
	}
	record := models.PatientReport{
		DoctorID:       doctorID,
		NotificationID: notification.ID,
		PatientName:    notification.PatientName,
		ReportFilename: filename,
		Prediction:     prediction,
		CreatedAt:      service.now().UTC(),
	}
	if err := service.reports.CreateWithCommit(&record, staged.Commit); err != nil {
		_ = staged.Discard()
		return models.PatientReport{}, fmt.Errorf("save report: %w", err)
	}

	publish(ctx, service.publisher, events.Event{
		Type:        events.TypeReportFinalized,
		Service:     serviceClinician,
		AccountID:   doctorID,
		PatientName: record.PatientName,
		Reference:   filename + "#" + strconv.FormatUint(uint64(record.ID), 10),
	})
	return record, nil
}

func (service *FinalizeService) ListReports(doctorID uint) ([]models.PatientReport, error) {
	return service.reports.ListByDoctor(doctorID)
}
