package peer

import (
	"context"
	"time"
)

type Delivery struct {
	PatientUsername string
	Filename        string
	Content         []byte
}

// PatientClient is used by the clinician service to hand off final reports.
type PatientClient struct {
	client
}

func NewPatientClient(baseURL string, timeout time.Duration) *PatientClient {
	return &PatientClient{client: newClient(baseURL, timeout)}
}

func (c *PatientClient) DeliverReport(ctx context.Context, delivery Delivery) error {
	_, err := c.postMultipart(ctx, "/patient/receive_report", upload{
		fields: map[string]string{
			"patient_username": delivery.PatientUsername,
			"report_filename":  delivery.Filename,
		},
		field:    "report",
		filename: delivery.Filename,
		content:  delivery.Content,
	})
	return err
}
