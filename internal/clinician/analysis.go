package clinician

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/vocalis/internal/features"
	"github.com/terraincognita07/vocalis/internal/services"
	"github.com/terraincognita07/vocalis/internal/web"
)

// DetectText prefills the feature form from a PDF uploaded by the doctor.
func (handler *Handler) DetectText(c *fiber.Ctx) error {
	doctor := currentDoctor(c)
	notificationID, err := services.ParseID(c.FormValue("notification_id"), "notification_id")
	if err != nil {
		return web.RespondError(c, err, "invalid notification")
	}
	notification, err := handler.intake.Find(doctor.ID, notificationID)
	if err != nil {
		return web.RespondError(c, err, "failed to load the notification")
	}

	document, header, err := web.ReadFormFile(c, "pdf_file")
	if err != nil {
		if errors.Is(err, web.ErrMissingFile) {
			return web.APIError(c, fiber.StatusBadRequest, "pdf_file is required")
		}
		return web.APIError(c, fiber.StatusBadRequest, err.Error())
	}

	detected, err := handler.extraction.DetectUpload(c.UserContext(), header.Header.Get(fiber.HeaderContentType), document)
	if err != nil {
		return web.RespondError(c, err, services.ErrExtractionFailed.Error())
	}
	return handler.renderAnalysis(c, notification.ID, notification.PatientName, detected)
}

// AnalyzeReport runs the same extraction over the report the patient sent.
func (handler *Handler) AnalyzeReport(c *fiber.Ctx) error {
	doctor := currentDoctor(c)
	notificationID, err := services.ParseID(c.FormValue("notification_id"), "notification_id")
	if err != nil {
		return web.RespondError(c, err, "invalid notification")
	}
	notification, err := handler.intake.Find(doctor.ID, notificationID)
	if err != nil {
		return web.RespondError(c, err, "failed to load the notification")
	}

	detected, err := handler.extraction.DetectStored(c.UserContext(), doctor.ID, notification.ID)
	if err != nil {
		return web.RespondError(c, err, services.ErrExtractionFailed.Error())
	}
	return handler.renderAnalysis(c, notification.ID, notification.PatientName, detected)
}

func (handler *Handler) renderAnalysis(c *fiber.Ctx, notificationID uint, patientName string, detected features.Detected) error {
	return handler.renderer.Render(c, "analyze_report", fiber.Map{
		"Title":          "Analyze report",
		"NotificationID": notificationID,
		"PatientName":    patientName,
		"Features":       detected.Prefill(),
	})
}
