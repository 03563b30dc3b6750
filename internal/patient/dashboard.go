package patient

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/vocalis/internal/services"
	"github.com/terraincognita07/vocalis/internal/web"
)

// ShowDashboard lists doctors, notifications and received reports. The doctor
// list is empty while the clinician service is unreachable.
func (handler *Handler) ShowDashboard(c *fiber.Ctx) error {
	patient := currentPatient(c)

	notifications, err := handler.receipt.NotificationsFor(patient.Username)
	if err != nil {
		return web.RespondError(c, err, "failed to load notifications")
	}
	received, err := handler.receipt.ListReports(patient.ID)
	if err != nil {
		return web.RespondError(c, err, "failed to load reports")
	}

	return handler.renderer.Render(c, "dashboard", fiber.Map{
		"Title":         "Dashboard",
		"Patient":       patient,
		"Doctors":       handler.directory.Doctors(c.UserContext()),
		"Notifications": notifications,
		"Reports":       received,
	})
}

func (handler *Handler) ShowProfile(c *fiber.Ctx) error {
	return handler.renderer.Render(c, "profile", fiber.Map{
		"Title":   "Profile",
		"Patient": currentPatient(c),
	})
}

func (handler *Handler) DownloadReport(c *fiber.Ctx) error {
	reportID, err := services.ParseID(c.Params("id"), "id")
	if err != nil {
		return web.RespondError(c, err, "invalid report")
	}
	report, content, err := handler.receipt.Download(c.UserContext(), currentPatient(c).ID, reportID)
	if err != nil {
		return web.RespondError(c, err, "failed to load the report")
	}

	c.Attachment(report.ReportFilename)
	c.Set(fiber.HeaderContentType, services.PDFContentType)
	c.Set(fiber.HeaderContentLength, strconv.Itoa(len(content)))
	return c.Send(content)
}
