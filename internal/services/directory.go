package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/terraincognita07/vocalis/internal/models"
	"github.com/terraincognita07/vocalis/internal/peer"
)

type ClinicianGateway interface {
	ListDoctors(ctx context.Context) ([]peer.Doctor, error)
	SubmitReport(ctx context.Context, submission peer.Submission) error
}

type DirectoryService struct {
	clinicians ClinicianGateway
	now        func() time.Time
}

func NewDirectoryService(clinicians ClinicianGateway) *DirectoryService {
	return &DirectoryService{clinicians: clinicians, now: time.Now}
}

// Doctors returns the clinician directory, or an empty list when the clinician
// service cannot be reached.
func (service *DirectoryService) Doctors(ctx context.Context) []peer.Doctor {
	doctors, err := service.clinicians.ListDoctors(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("clinician directory unavailable")
		return []peer.Doctor{}
	}
	return doctors
}

// UploadToDoctor sends the patient's own report to a clinician, named after the
// patient's username and stamped with the current time.
func (service *DirectoryService) UploadToDoctor(ctx context.Context, patient models.Patient, rawDoctorID string, filename string, content []byte) error {
	if strings.TrimSpace(rawDoctorID) == "" {
		return invalid("doctor_id is required")
	}
	doctorID, err := ParseID(rawDoctorID, "doctor_id")
	if err != nil {
		return err
	}
	if len(content) == 0 {
		return invalid("report file is required")
	}

	err = service.clinicians.SubmitReport(ctx, peer.Submission{
		DoctorID:    doctorID,
		PatientName: patient.Username,
		Date:        service.now().UTC(),
		Filename:    filename,
		Content:     content,
	})
	if err != nil {
		return upstream("failed to send the report to the doctor", err)
	}
	return nil
}
