package peer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Doctor is the public directory entry served by the clinician service.
type Doctor struct {
	ID            uint   `json:"id"`
	Username      string `json:"username"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Qualification string `json:"qualification"`
	Position      string `json:"position"`
}

type Submission struct {
	DoctorID    uint
	PatientName string
	Date        time.Time
	Filename    string
	Content     []byte
}

// ClinicianClient is used by the patient service.
type ClinicianClient struct {
	client
}

func NewClinicianClient(baseURL string, timeout time.Duration) *ClinicianClient {
	return &ClinicianClient{client: newClient(baseURL, timeout)}
}

func (c *ClinicianClient) ListDoctors(ctx context.Context) ([]Doctor, error) {
	body, err := c.get(ctx, "/doctors")
	if err != nil {
		return nil, err
	}
	doctors := make([]Doctor, 0)
	if err := json.Unmarshal(body, &doctors); err != nil {
		return nil, fmt.Errorf("%w: decode doctors: %v", ErrUnavailable, err)
	}
	return doctors, nil
}

func (c *ClinicianClient) SubmitReport(ctx context.Context, submission Submission) error {
	filename := submission.Filename
	if filename == "" {
		filename = "report.pdf"
	}
	_, err := c.postMultipart(ctx, "/receive-report", upload{
		fields: map[string]string{
			"doctor_id":    strconv.FormatUint(uint64(submission.DoctorID), 10),
			"patient_name": submission.PatientName,
			"date":         submission.Date.Format(time.RFC3339),
		},
		field:    "report",
		filename: filename,
		content:  submission.Content,
	})
	return err
}
