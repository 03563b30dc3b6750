package patient

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/terraincognita07/vocalis/internal/models"
	"github.com/terraincognita07/vocalis/internal/services"
	"github.com/terraincognita07/vocalis/internal/web"
)

// ReceiveReport stores a final report the clinician service pushes to a patient.
func (handler *Handler) ReceiveReport(c *fiber.Ctx) error {
	content, header, err := web.ReadFormFile(c, "report")
	if err != nil {
		if errors.Is(err, web.ErrMissingFile) {
			return web.APIError(c, fiber.StatusBadRequest, "report file is required")
		}
		return web.APIError(c, fiber.StatusBadRequest, err.Error())
	}

	_, err = handler.receipt.Receive(c.UserContext(), services.IncomingFinalReport{
		PatientUsername: c.FormValue("patient_username"),
		ReportFilename:  c.FormValue("report_filename"),
		UploadFilename:  header.Filename,
		Content:         content,
	})
	if err != nil {
		return web.RespondError(c, err, "failed to save the report")
	}
	return c.JSON(fiber.Map{"message": "Report received and saved successfully"})
}

type notificationPayload struct {
	ID          uint      `json:"id"`
	DoctorID    *uint     `json:"doctor_id"`
	PatientID   uint      `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	Date        time.Time `json:"date"`
	Report      string    `json:"report"`
}

func toNotificationPayload(notification models.PatientNotification, _ int) notificationPayload {
	return notificationPayload{
		ID:          notification.ID,
		DoctorID:    notification.DoctorID,
		PatientID:   notification.PatientID,
		PatientName: notification.PatientName,
		Date:        notification.Date,
		Report:      notification.ReportFilename(),
	}
}

func (handler *Handler) Notifications(c *fiber.Ctx) error {
	notifications, err := handler.receipt.NotificationsFor(c.Query("patient_username"))
	if err != nil {
		return web.RespondError(c, err, "failed to load notifications")
	}
	return c.JSON(lo.Map(notifications, toNotificationPayload))
}
