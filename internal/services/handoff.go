package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/vocalis/internal/events"
	"github.com/terraincognita07/vocalis/internal/models"
	"github.com/terraincognita07/vocalis/internal/peer"
	"github.com/terraincognita07/vocalis/internal/storage"
)

const errMissingReportFile = "the selected report file does not exist"

type PatientDeliverer interface {
	DeliverReport(ctx context.Context, delivery peer.Delivery) error
}

type ReportDeliveryRepository interface {
	Create(delivery *models.ReportDelivery) error
	ListByDoctor(doctorID uint) ([]models.ReportDelivery, error)
}

type HandoffService struct {
	reports    PatientReportRepository
	deliveries ReportDeliveryRepository
	store      storage.Store
	patients   PatientDeliverer
	publisher  events.Publisher
	now        func() time.Time
}

func NewHandoffService(
	reportRecords PatientReportRepository,
	deliveries ReportDeliveryRepository,
	store storage.Store,
	patients PatientDeliverer,
	publisher events.Publisher,
) *HandoffService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &HandoffService{
		reports:    reportRecords,
		deliveries: deliveries,
		store:      store,
		patients:   patients,
		publisher:  publisher,
		now:        time.Now,
	}
}

// Send forwards one generated report to a patient account. It makes a single
// attempt; each successful call records a delivery, so repeated calls deliver
// repeatedly.
func (service *HandoffService) Send(ctx context.Context, doctorID uint, patientUsername string, reportName string) (models.ReportDelivery, error) {
	patientUsername = strings.TrimSpace(patientUsername)
	if patientUsername == "" || strings.TrimSpace(reportName) == "" {
		return models.ReportDelivery{}, invalid("patient username and report are required")
	}
	filename, err := storage.SafeName(reportName)
	if err != nil {
		return models.ReportDelivery{}, notFound(errMissingReportFile)
	}

	owned, err := service.reports.ExistsForDoctor(doctorID, filename)
	if err != nil {
		return models.ReportDelivery{}, err
	}
	if !owned {
		return models.ReportDelivery{}, notFound(errMissingReportFile)
	}
	content, err := service.store.Get(ctx, filename)
	if errors.Is(err, storage.ErrNotFound) {
		return models.ReportDelivery{}, notFound(errMissingReportFile)
	}
	if err != nil {
		return models.ReportDelivery{}, err
	}

	if err := service.patients.DeliverReport(ctx, peer.Delivery{
		PatientUsername: patientUsername,
		Filename:        filename,
		Content:         content,
	}); err != nil {
		return models.ReportDelivery{}, upstream("failed to send the report to the patient", err)
	}

	delivery := models.ReportDelivery{
		DoctorID:        doctorID,
		PatientUsername: patientUsername,
		ReportFilename:  filename,
		DeliveredAt:     service.now().UTC(),
	}
	if err := service.deliveries.Create(&delivery); err != nil {
		return models.ReportDelivery{}, err
	}

	publish(ctx, service.publisher, events.Event{
		Type:        events.TypeReportDelivered,
		Service:     serviceClinician,
		AccountID:   doctorID,
		PatientName: patientUsername,
		Reference:   filename,
	})
	return delivery, nil
}

func (service *HandoffService) ListDeliveries(doctorID uint) ([]models.ReportDelivery, error) {
	return service.deliveries.ListByDoctor(doctorID)
}
