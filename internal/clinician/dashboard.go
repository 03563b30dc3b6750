package clinician

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/terraincognita07/vocalis/internal/models"
	"github.com/terraincognita07/vocalis/internal/services"
	"github.com/terraincognita07/vocalis/internal/web"
)

// notificationRow keeps report bytes out of the template data.
type notificationRow struct {
	ID          uint
	PatientName string
	Date        time.Time
}

func toNotificationRow(notification models.ClinicianNotification, _ int) notificationRow {
	return notificationRow{ID: notification.ID, PatientName: notification.PatientName, Date: notification.Date}
}

func (handler *Handler) ShowDashboard(c *fiber.Ctx) error {
	doctor := currentDoctor(c)

	notifications, err := handler.intake.ListForDoctor(doctor.ID)
	if err != nil {
		return web.RespondError(c, err, "failed to load notifications")
	}
	generated, err := handler.finalize.ListReports(doctor.ID)
	if err != nil {
		return web.RespondError(c, err, "failed to load reports")
	}

	return handler.renderer.Render(c, "dashboard", fiber.Map{
		"Title":         "Dashboard",
		"Notifications": lo.Map(notifications, toNotificationRow),
		"Reports":       generated,
	})
}

func (handler *Handler) DownloadReport(c *fiber.Ctx) error {
	notificationID, err := services.ParseID(c.Query("notification_id"), "notification_id")
	if err != nil {
		return web.RespondError(c, err, "invalid notification")
	}
	notification, err := handler.intake.Find(currentDoctor(c).ID, notificationID)
	if err != nil {
		return web.RespondError(c, err, "failed to load the report")
	}

	c.Attachment(fmt.Sprintf("report_%d.pdf", notification.ID))
	c.Set(fiber.HeaderContentType, services.PDFContentType)
	return c.Send(notification.Report)
}

func (handler *Handler) DeleteNotification(c *fiber.Ctx) error {
	notificationID, err := services.ParseID(c.FormValue("notification_id"), "notification_id")
	if err != nil {
		return web.RespondError(c, err, "invalid notification")
	}
	if err := handler.intake.Delete(currentDoctor(c).ID, notificationID); err != nil {
		return web.RespondError(c, err, "failed to delete the notification")
	}

	handler.cookies.SetFlash(c, web.Flash{Success: "Notification deleted."})
	return web.RedirectOrJSON(c, "/dashboard")
}
