package clinician

import (
	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/vocalis/internal/features"
	"github.com/terraincognita07/vocalis/internal/services"
	"github.com/terraincognita07/vocalis/internal/web"
)

func (handler *Handler) FinalReport(c *fiber.Ctx) error {
	doctor := currentDoctor(c)
	notificationID, err := services.ParseID(c.FormValue("notification_id"), "notification_id")
	if err != nil {
		return web.RespondError(c, err, "invalid notification")
	}
	vector, err := features.ParseVector(func(field string) string {
		return c.FormValue(field)
	})
	if err != nil {
		return web.APIError(c, fiber.StatusBadRequest, err.Error())
	}

	record, err := handler.finalize.Finalize(c.UserContext(), doctor.ID, notificationID, vector)
	if err != nil {
		return web.RespondError(c, err, "failed to generate the final report")
	}
	return handler.renderFinalReports(c, &web.Flash{
		Success: "Report " + record.ReportFilename + " generated: " + record.Prediction + ".",
	})
}

func (handler *Handler) ShowFinalReports(c *fiber.Ctx) error {
	return handler.renderFinalReports(c, nil)
}

// renderFinalReports shows the cookie flash unless flash overrides it.
func (handler *Handler) renderFinalReports(c *fiber.Ctx, flash *web.Flash) error {
	doctor := currentDoctor(c)
	generated, err := handler.finalize.ListReports(doctor.ID)
	if err != nil {
		return web.RespondError(c, err, "failed to load reports")
	}
	deliveries, err := handler.handoff.ListDeliveries(doctor.ID)
	if err != nil {
		return web.RespondError(c, err, "failed to load deliveries")
	}

	data := fiber.Map{
		"Title":      "Final reports",
		"Reports":    generated,
		"Deliveries": deliveries,
	}
	if flash != nil {
		data["Flash"] = *flash
	}
	return handler.renderer.Render(c, "final_report", data)
}

// SendToPatient hands one generated report to the patient service and always
// comes back to the report list with the outcome as a flash message.
func (handler *Handler) SendToPatient(c *fiber.Ctx) error {
	doctor := currentDoctor(c)
	delivery, err := handler.handoff.Send(
		c.UserContext(),
		doctor.ID,
		c.FormValue("patient_username"),
		c.FormValue("report"),
	)
	if err != nil {
		if web.StatusFor(err) == fiber.StatusInternalServerError {
			web.Logger(c).Error().Err(err).Msg("send report to patient failed")
		}
		handler.cookies.SetFlash(c, web.Flash{Error: services.Message(err, "failed to send the report to the patient")})
		return c.Redirect("/final-report", fiber.StatusSeeOther)
	}

	handler.cookies.SetFlash(c, web.Flash{
		Success: "Report " + delivery.ReportFilename + " sent to " + delivery.PatientUsername + ".",
	})
	return c.Redirect("/final-report", fiber.StatusSeeOther)
}
